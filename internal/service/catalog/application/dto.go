package application

import (
	"io"
	"time"

	"github.com/shopspring/decimal"

	ring "solitaire/domain"
	"solitaire/internal/service/catalog/domain"
)

// DiscountView 是商品上展示的折扣角标
type DiscountView struct {
	RuleID     int64           `json:"rule_id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Scope      string          `json:"scope"`
}

// ProductView 是带价格与折扣的商品
type ProductView struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Design      ring.Design      `json:"design"`
	Metal       ring.Metal       `json:"metal"`
	Shape       ring.Shape       `json:"shape"`
	Carat       decimal.Decimal  `json:"carat"`
	ImagePath   string           `json:"image_path"`
	ImageURL    string           `json:"image_url"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty"`
	FinalPrice  *decimal.Decimal `json:"final_price,omitempty"`
	Discount    *DiscountView    `json:"discount,omitempty"`
	Purchasable bool             `json:"purchasable"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ListQuery 是前台列表的查询条件
type ListQuery struct {
	Filter         domain.ProductFilter
	DiscountedOnly bool
}

// QuoteLine 是一条待定价的行：ProductID 指向目录商品，否则使用 Custom 的完整定制配置
type QuoteLine struct {
	ProductID *int64            `json:"product_id,omitempty"`
	Custom    *domain.Selection `json:"custom,omitempty"`
}

type QuoteRequest struct {
	At    *time.Time  `json:"at,omitempty"`
	Lines []QuoteLine `json:"lines"`
}

// QuotedLine 是定价结果，价格均为单价
type QuotedLine struct {
	ProductID *int64           `json:"product_id,omitempty"`
	Item      ring.CatalogItem `json:"item"`
	Title     string           `json:"title"`
	ImageURL  string           `json:"image_url"`
	Custom    bool             `json:"custom"`
	BasePrice decimal.Decimal  `json:"base_price"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Discount  *DiscountView    `json:"discount,omitempty"`
}

type QuoteResponse struct {
	At    time.Time    `json:"at"`
	Lines []QuotedLine `json:"lines"`
}

// CustomizerQuote 是定制器的实时报价
type CustomizerQuote struct {
	Selection  domain.Selection `json:"selection"`
	Complete   bool             `json:"complete"`
	BasePrice  decimal.Decimal  `json:"base_price"`
	FinalPrice decimal.Decimal  `json:"final_price"`
	Discount   *DiscountView    `json:"discount,omitempty"`
	ProductID  *int64           `json:"product_id,omitempty"` // 完整选择恰好对应目录商品时给出
}

// Preview 是定制器的预览图
type Preview struct {
	Selection   domain.Selection `json:"selection"`
	ImagePath   string           `json:"image_path,omitempty"`
	ImageURL    string           `json:"image_url"`
	Placeholder bool             `json:"placeholder"`
}

// UploadInput 是后台上传的一张图片
type UploadInput struct {
	Design      string
	Metal       string
	Shape       string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PriceInput 是后台修改价格表的请求体
type PriceInput struct {
	Price10 decimal.Decimal `json:"price_1_0ct"`
	Price15 decimal.Decimal `json:"price_1_5ct"`
	Price20 decimal.Decimal `json:"price_2_0ct"`
	Price25 decimal.Decimal `json:"price_2_5ct"`
}

func toDiscountView(r *domain.DiscountRule) *DiscountView {
	if r == nil {
		return nil
	}
	return &DiscountView{RuleID: r.ID, Name: r.Name, Percentage: r.Percentage, Scope: r.Scope()}
}
