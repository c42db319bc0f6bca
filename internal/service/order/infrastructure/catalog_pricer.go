package infrastructure

import (
	"context"
	"time"

	"solitaire/internal/pkg/httpclient"
	catalog "solitaire/internal/service/catalog/application"
	catalogdomain "solitaire/internal/service/catalog/domain"
	"solitaire/internal/service/order/domain"
)

const catalogService = "catalog-service"

// CatalogPricer 通过目录服务的 /quote 接口定价，折扣在目录服务中解析
type CatalogPricer struct {
	client *httpclient.Client
}

// NewCatalogPricer 创建一个新的定价适配器
func NewCatalogPricer(client *httpclient.Client) *CatalogPricer {
	return &CatalogPricer{client: client}
}

// Quote 实现了 domain.Pricer 接口
func (p *CatalogPricer) Quote(ctx context.Context, lines []domain.LineRef, at *time.Time) ([]domain.PricedLine, error) {
	req := catalog.QuoteRequest{At: at, Lines: make([]catalog.QuoteLine, len(lines))}
	for i, l := range lines {
		if l.Custom != nil {
			carat := l.Custom.Carat
			req.Lines[i].Custom = &catalogdomain.Selection{
				Design: l.Custom.Design, Metal: l.Custom.Metal, Shape: l.Custom.Shape, Carat: &carat,
			}
			continue
		}
		req.Lines[i].ProductID = l.ProductID
	}

	var resp catalog.QuoteResponse
	if err := p.client.PostJSON(ctx, catalogService, "/quote", &req, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.PricedLine, len(resp.Lines))
	for i, l := range resp.Lines {
		out[i] = domain.PricedLine{
			ProductID: l.ProductID,
			Item:      l.Item,
			Title:     l.Title,
			ImageURL:  l.ImageURL,
			Custom:    l.Custom,
			BasePrice: l.BasePrice,
			UnitPrice: l.UnitPrice,
		}
		if l.Discount != nil {
			id := l.Discount.RuleID
			out[i].DiscountID = &id
			out[i].Discount = l.Discount.Name
		}
	}
	return out, nil
}
