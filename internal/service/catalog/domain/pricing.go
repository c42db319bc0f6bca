// internal/service/catalog/domain/pricing.go
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

// PriceTable 是某个款式在四个克拉规格下的基础价格
type PriceTable struct {
	Design    ring.Design     `json:"design"`
	Price10   decimal.Decimal `json:"price_1_0ct"`
	Price15   decimal.Decimal `json:"price_1_5ct"`
	Price20   decimal.Decimal `json:"price_2_0ct"`
	Price25   decimal.Decimal `json:"price_2_5ct"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PriceFor 返回指定克拉的价格，非标准克拉按 1.0ct 计价
func (t *PriceTable) PriceFor(carat decimal.Decimal) decimal.Decimal {
	switch ring.FormatCarat(carat) {
	case "1.5":
		return t.Price15
	case "2.0":
		return t.Price20
	case "2.5":
		return t.Price25
	default:
		return t.Price10
	}
}

// Validate 价格不能为负
func (t *PriceTable) Validate() error {
	if !t.Design.Valid() {
		return ring.ErrInvalidAttribute
	}
	for _, p := range []decimal.Decimal{t.Price10, t.Price15, t.Price20, t.Price25} {
		if p.IsNegative() {
			return ring.ErrInvalidAttribute
		}
	}
	return nil
}

// DefaultPriceTable 是初始化时写入的默认价格
func DefaultPriceTable(d ring.Design) PriceTable {
	return PriceTable{
		Design:  d,
		Price10: decimal.NewFromInt(5000),
		Price15: decimal.NewFromInt(7500),
		Price20: decimal.NewFromInt(10000),
		Price25: decimal.NewFromInt(12500),
	}
}

// PriceBook 是按款式索引的价格表集合
type PriceBook map[ring.Design]PriceTable

// NewPriceBook 由价格表列表构建索引
func NewPriceBook(tables []PriceTable) PriceBook {
	book := make(PriceBook, len(tables))
	for _, t := range tables {
		book[t.Design] = t
	}
	return book
}

// BasePrice 查找 (款式, 克拉) 的基础价，款式没有价格时 ok 为 false
func (b PriceBook) BasePrice(d ring.Design, carat decimal.Decimal) (decimal.Decimal, bool) {
	t, ok := b[d]
	if !ok {
		return decimal.Zero, false
	}
	return t.PriceFor(carat), true
}

// PriceRepository 定义了价格表的持久化接口
type PriceRepository interface {
	List(ctx context.Context) ([]PriceTable, error)
	Get(ctx context.Context, d ring.Design) (*PriceTable, error)
	Upsert(ctx context.Context, t *PriceTable) error
}
