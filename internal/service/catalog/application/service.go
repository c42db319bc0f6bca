package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	ring "solitaire/domain"
	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/catalog/domain"
	promotion "solitaire/internal/service/promotion/domain"
)

// Deps 汇总了目录服务依赖的端口
type Deps struct {
	Products  domain.ProductRepository
	Prices    domain.PriceRepository
	Discounts domain.DiscountSource
	Store     domain.ObjectStore
	Locker    domain.Locker
	Filters   domain.FilterCompiler
	Tracer    trace.Tracer
	// MaxUploadSize 为 0 时不限制
	MaxUploadSize int64
}

// CatalogService 定义了目录、定价与定制器的业务用例
type CatalogService struct {
	Deps
	now func() time.Time
	loc *time.Location
}

// NewCatalogService 创建一个新的目录服务实例
func NewCatalogService(deps Deps) *CatalogService {
	return &CatalogService{Deps: deps, now: time.Now, loc: time.UTC}
}

// WithLocation 设置门店时区
func (s *CatalogService) WithLocation(loc *time.Location) *CatalogService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// clock 返回门店时区下的当前时刻
func (s *CatalogService) clock() time.Time {
	return s.now().In(s.loc)
}

// WithClock 替换服务时钟 (测试用)
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	s.now = now
	return s
}

// snapshot 是一次并发加载的商品、价格与折扣
type snapshot struct {
	products []domain.Product
	book     domain.PriceBook
	rules    []domain.DiscountRule
}

// load 并发加载商品、价格表与折扣规则。折扣服务不可用时降级为无折扣。
func (s *CatalogService) load(ctx context.Context, withProducts bool) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	if withProducts {
		g.Go(func() error {
			products, err := s.Products.List(gctx)
			snap.products = products
			return err
		})
	}
	g.Go(func() error {
		tables, err := s.Prices.List(gctx)
		snap.book = domain.NewPriceBook(tables)
		return err
	})
	g.Go(func() error {
		rules, err := s.Discounts.ListActiveRules(gctx)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("discount rules unavailable, pricing without discounts")
			return nil
		}
		snap.rules = rules
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *CatalogService) view(p *domain.Product, snap *snapshot, at time.Time) ProductView {
	v := ProductView{
		ID:        p.ID,
		Title:     p.Item().Title(),
		Design:    p.Design,
		Metal:     p.Metal,
		Shape:     p.Shape,
		Carat:     p.Carat,
		ImagePath: p.ImagePath,
		ImageURL:  p.PublicURL,
		CreatedAt: p.CreatedAt,
	}
	if v.ImageURL == "" && p.ImagePath != "" {
		v.ImageURL = s.Store.PublicURL(p.ImagePath)
	}
	base, ok := snap.book.BasePrice(p.Design, p.Carat)
	if !ok {
		return v
	}
	res := promotion.Apply(p.Item(), base, at, snap.rules)
	v.BasePrice = &res.BasePrice
	v.FinalPrice = &res.FinalPrice
	v.Discount = toDiscountView(res.Rule)
	v.Purchasable = true
	return v
}

// ListProducts 返回过滤后的商品列表，每一行都经过折扣解析
func (s *CatalogService) ListProducts(ctx context.Context, q ListQuery) ([]ProductView, error) {
	ctx, span := s.Tracer.Start(ctx, "service.ListProducts")
	defer span.End()

	snap, err := s.load(ctx, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	at := s.clock()
	out := make([]ProductView, 0, len(snap.products))
	for i := range snap.products {
		p := &snap.products[i]
		if !q.Filter.Match(p) {
			continue
		}
		v := s.view(p, snap, at)
		if q.DiscountedOnly && v.Discount == nil {
			continue
		}
		out = append(out, v)
	}
	span.SetAttributes(attribute.Int("products.total", len(snap.products)), attribute.Int("products.returned", len(out)))
	return out, nil
}

// GetProduct 返回单个商品
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductView, error) {
	ctx, span := s.Tracer.Start(ctx, "service.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	var (
		product *domain.Product
		snap    *snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = s.Products.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		snap, err = s.load(gctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	v := s.view(product, snap, s.clock())
	return &v, nil
}

// Quote 为订单服务定价。目录行使用价格表，定制行使用定制器公式，两者都经过折扣解析。
func (s *CatalogService) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	ctx, span := s.Tracer.Start(ctx, "service.Quote")
	defer span.End()
	span.SetAttributes(attribute.Int("lines.count", len(req.Lines)))

	at := s.clock()
	if req.At != nil {
		at = req.At.In(s.loc)
	}

	// 先校验全部行，再启动并发加载
	for i, line := range req.Lines {
		if err := validateQuoteLine(line); err != nil {
			span.RecordError(err)
			return nil, errors.Wrapf(err, "line %d", i)
		}
	}

	// 目录行的商品与价格、折扣并发加载
	products := make([]*domain.Product, len(req.Lines))
	var snap *snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.load(gctx, false)
		return err
	})
	for i, line := range req.Lines {
		if line.ProductID == nil {
			continue
		}
		g.Go(func() error {
			p, err := s.Products.Get(gctx, *line.ProductID)
			if err != nil {
				return errors.Wrapf(err, "line %d", i)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := &QuoteResponse{At: at, Lines: make([]QuotedLine, len(req.Lines))}
	for i, line := range req.Lines {
		var (
			item ring.CatalogItem
			base decimal.Decimal
			ql   QuotedLine
		)
		if p := products[i]; p != nil {
			price, ok := snap.book.BasePrice(p.Design, p.Carat)
			if !ok {
				err := errors.Wrapf(domain.ErrPriceNotFound, "line %d: %s", i, p.Design)
				span.RecordError(err)
				return nil, err
			}
			item, base = p.Item(), price
			ql = QuotedLine{ProductID: &p.ID, ImageURL: p.PublicURL}
			if ql.ImageURL == "" {
				ql.ImageURL = s.Store.PublicURL(p.ImagePath)
			}
		} else {
			item, _ = line.Custom.Item()
			base = domain.CustomPrice(*line.Custom)
			ql = QuotedLine{Custom: true, ImageURL: s.Store.PublicURL(domain.ImagePathFor(ring.Combination{
				Design: item.Design, Metal: item.Metal, Shape: item.Shape,
			}))}
		}
		res := promotion.Apply(item, base, at, snap.rules)
		ql.Item = item
		ql.Title = item.Title()
		ql.BasePrice = res.BasePrice
		ql.UnitPrice = res.FinalPrice
		ql.Discount = toDiscountView(res.Rule)
		resp.Lines[i] = ql
	}
	return resp, nil
}

// QuoteCustomizer 按当前选择实时报价，选择完整时同时解析折扣并匹配目录商品
func (s *CatalogService) QuoteCustomizer(ctx context.Context, sel domain.Selection) (*CustomizerQuote, error) {
	ctx, span := s.Tracer.Start(ctx, "service.QuoteCustomizer")
	defer span.End()

	if err := sel.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	base := domain.CustomPrice(sel)
	out := &CustomizerQuote{Selection: sel, Complete: sel.Complete(), BasePrice: base, FinalPrice: base}
	item, ok := sel.Item()
	if !ok {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var rules []domain.DiscountRule
	g.Go(func() error {
		var err error
		rules, err = s.Discounts.ListActiveRules(gctx)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("discount rules unavailable, quoting without discounts")
		}
		return nil
	})
	g.Go(func() error {
		p, err := s.Products.FindByItem(gctx, item)
		switch {
		case err == nil:
			out.ProductID = &p.ID
		case errors.Is(err, domain.ErrProductNotFound):
		default:
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	res := promotion.Apply(item, base, s.clock(), rules)
	out.FinalPrice = res.FinalPrice
	out.Discount = toDiscountView(res.Rule)
	return out, nil
}

// Preview 为定制器挑选预览图。只选了款式和金属时按 round, oval, princess, emerald 的顺序自动选择有图的形状。
func (s *CatalogService) Preview(ctx context.Context, sel domain.Selection) (*Preview, error) {
	ctx, span := s.Tracer.Start(ctx, "service.Preview")
	defer span.End()

	if err := sel.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if sel.Design != "" && sel.Metal != "" && sel.Shape == "" {
		shapes := domain.ShapeProbeOrder()
		paths := make([]string, len(shapes))
		for i, sh := range shapes {
			paths[i] = domain.ImagePathFor(ring.Combination{Design: sel.Design, Metal: sel.Metal, Shape: sh})
		}
		idx, err := s.firstExisting(ctx, paths)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if idx >= 0 {
			sel.Shape = shapes[idx]
		}
	}

	out := &Preview{Selection: sel, ImageURL: domain.PlaceholderImage, Placeholder: true}
	candidates := domain.ImageCandidates(sel)
	idx, err := s.firstExisting(ctx, candidates)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if idx >= 0 {
		out.ImagePath = candidates[idx]
		out.ImageURL = s.Store.PublicURL(candidates[idx])
		out.Placeholder = false
	}
	span.SetAttributes(attribute.Bool("preview.placeholder", out.Placeholder))
	return out, nil
}

// firstExisting 并发检查候选路径，返回按顺序第一个存在的下标，都不存在时返回 -1
func (s *CatalogService) firstExisting(ctx context.Context, paths []string) (int, error) {
	found := make([]bool, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			ok, err := s.Store.Exists(gctx, p)
			found[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return -1, err
	}
	for i, ok := range found {
		if ok {
			return i, nil
		}
	}
	return -1, nil
}

// UploadProduct 上传组合主图并登记商品。同一组合 (忽略克拉) 只允许一张图，检查与写入在分布式锁内完成。
func (s *CatalogService) UploadProduct(ctx context.Context, in UploadInput) (*ProductView, error) {
	ctx, span := s.Tracer.Start(ctx, "service.UploadProduct")
	defer span.End()

	combo, err := parseCombination(in.Design, in.Metal, in.Shape)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, errors.Wrapf(domain.ErrInvalidUpload, "content type %q is not an image", in.ContentType)
	}
	if s.MaxUploadSize > 0 && in.Size > s.MaxUploadSize {
		return nil, errors.Wrapf(domain.ErrInvalidUpload, "file is %d bytes, limit is %d", in.Size, s.MaxUploadSize)
	}
	span.SetAttributes(
		attribute.String("ring.design", string(combo.Design)),
		attribute.String("ring.metal", string(combo.Metal)),
		attribute.String("ring.shape", string(combo.Shape)),
	)

	var product domain.Product
	lockID := fmt.Sprintf("ring-image.%s.%s.%s", combo.Design, combo.Metal, combo.Shape)
	err = s.Locker.WithLock(ctx, lockID, func(ctx context.Context) error {
		exists, err := s.Products.ExistsCombination(ctx, combo)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateProduct
		}

		path := domain.ImagePathFor(combo)
		if err := s.Store.Put(ctx, path, in.ContentType, in.Body); err != nil {
			return err
		}
		product = domain.Product{
			Design:    combo.Design,
			Metal:     combo.Metal,
			Shape:     combo.Shape,
			Carat:     decimal.RequireFromString("1.0"),
			ImagePath: path,
			PublicURL: s.Store.PublicURL(path),
		}
		if err := s.Products.Create(ctx, &product); err != nil {
			// 补偿：登记失败时删除刚上传的对象
			if delErr := s.Store.Delete(ctx, path); delErr != nil {
				logger.Ctx(ctx).Error().Err(delErr).Str("path", path).Msg("failed to remove orphaned image")
			}
			return err
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("product_id", product.ID).Str("path", product.ImagePath).Msg("ring image uploaded")
	snap, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	v := s.view(&product, snap, s.clock())
	return &v, nil
}

// DeleteProduct 先删除存储对象，再删除商品行
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.Tracer.Start(ctx, "service.DeleteProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	p, err := s.Products.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if p.ImagePath != "" {
		if err := s.Store.Delete(ctx, p.ImagePath); err != nil {
			span.RecordError(err)
			return err
		}
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().Int64("product_id", id).Str("path", p.ImagePath).Msg("ring image deleted")
	return nil
}

// AdminListProducts 返回全部商品，where 为可选的 CEL 过滤表达式
func (s *CatalogService) AdminListProducts(ctx context.Context, where string) ([]ProductView, error) {
	ctx, span := s.Tracer.Start(ctx, "service.AdminListProducts")
	defer span.End()

	var pred domain.ProductPredicate
	if strings.TrimSpace(where) != "" {
		var err error
		if pred, err = s.Filters.Compile(where); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	snap, err := s.load(ctx, true)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	at := s.clock()
	out := make([]ProductView, 0, len(snap.products))
	for i := range snap.products {
		p := &snap.products[i]
		if pred != nil {
			ok, err := pred(p)
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, s.view(p, snap, at))
	}
	return out, nil
}

// MissingCombinations 列出还没有图片的 款式×金属×形状 组合
func (s *CatalogService) MissingCombinations(ctx context.Context) ([]ring.Combination, error) {
	ctx, span := s.Tracer.Start(ctx, "service.MissingCombinations")
	defer span.End()

	products, err := s.Products.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	have := make(map[ring.Combination]struct{}, len(products))
	for i := range products {
		have[products[i].Combination()] = struct{}{}
	}
	missing := make([]ring.Combination, 0)
	for _, c := range ring.AllCombinations() {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	span.SetAttributes(attribute.Int("combinations.missing", len(missing)))
	return missing, nil
}

// ListPricing 返回全部价格表
func (s *CatalogService) ListPricing(ctx context.Context) ([]domain.PriceTable, error) {
	ctx, span := s.Tracer.Start(ctx, "service.ListPricing")
	defer span.End()

	tables, err := s.Prices.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return tables, nil
}

// UpsertPricing 插入或覆盖某个款式的价格表
func (s *CatalogService) UpsertPricing(ctx context.Context, design string, in PriceInput) (*domain.PriceTable, error) {
	ctx, span := s.Tracer.Start(ctx, "service.UpsertPricing")
	defer span.End()

	d, err := ring.ParseDesign(design)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	table := &domain.PriceTable{Design: d, Price10: in.Price10, Price15: in.Price15, Price20: in.Price20, Price25: in.Price25}
	if err := table.Validate(); err != nil {
		return nil, errors.Wrap(err, "prices must not be negative")
	}
	if err := s.Prices.Upsert(ctx, table); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("design", string(d)).Msg("pricing updated")
	return table, nil
}

func parseCombination(design, metal, shape string) (ring.Combination, error) {
	d, err := ring.ParseDesign(design)
	if err != nil {
		return ring.Combination{}, err
	}
	m, err := ring.ParseMetal(metal)
	if err != nil {
		return ring.Combination{}, err
	}
	sh, err := ring.ParseShape(shape)
	if err != nil {
		return ring.Combination{}, err
	}
	return ring.Combination{Design: d, Metal: m, Shape: sh}, nil
}

// validateQuoteLine 检查报价行：目录行只需商品 id，定制行必须完整且合法
func validateQuoteLine(line QuoteLine) error {
	switch {
	case line.ProductID != nil:
		return nil
	case line.Custom != nil:
		if err := line.Custom.Validate(); err != nil {
			return err
		}
		if !line.Custom.Complete() {
			return errors.Wrap(ring.ErrInvalidAttribute, "custom ring is not fully configured")
		}
		return nil
	default:
		return errors.Wrap(ring.ErrInvalidAttribute, "product_id or custom is required")
	}
}
