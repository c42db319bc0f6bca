package infrastructure

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"solitaire/internal/service/catalog/domain"
)

// CELFilterCompiler 把后台传入的 CEL 表达式编译为商品过滤器。
// 可用变量: design, metal, shape (string), carat (double), id (int)。
type CELFilterCompiler struct {
	env *cel.Env
}

// NewCELFilterCompiler 创建 CEL 环境
func NewCELFilterCompiler() (*CELFilterCompiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("design", cel.StringType),
		cel.Variable("metal", cel.StringType),
		cel.Variable("shape", cel.StringType),
		cel.Variable("carat", cel.DoubleType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cel env")
	}
	return &CELFilterCompiler{env: env}, nil
}

// Compile 编译表达式，表达式结果必须是 bool
func (c *CELFilterCompiler) Compile(expr string) (domain.ProductPredicate, error) {
	ast, iss := c.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrap(domain.ErrInvalidFilter, iss.Err().Error())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Wrapf(domain.ErrInvalidFilter, "expression must be boolean, got %s", ast.OutputType())
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidFilter, err.Error())
	}

	return func(p *domain.Product) (bool, error) {
		carat, _ := p.Carat.Float64()
		out, _, err := prg.Eval(map[string]any{
			"id":     p.ID,
			"design": string(p.Design),
			"metal":  string(p.Metal),
			"shape":  string(p.Shape),
			"carat":  carat,
		})
		if err != nil {
			return false, errors.Wrap(domain.ErrInvalidFilter, err.Error())
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return false, errors.Wrap(domain.ErrInvalidFilter, "expression did not evaluate to bool")
		}
		return matched, nil
	}, nil
}
