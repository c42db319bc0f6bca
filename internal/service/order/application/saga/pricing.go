package saga

import (
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/order/domain"
)

// PricingHandler 通过目录服务重新为每一行定价，折扣在下单时刻重新解析
type PricingHandler struct {
	NextHandler
}

func (h *PricingHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.Pricing")
	defer span.End()

	logger.Ctx(ctx).Debug().Str("order", orderCtx.OrderID).Msg("saga step 2: re-price cart lines")

	refs := make([]domain.LineRef, len(orderCtx.CartItems))
	for i := range orderCtx.CartItems {
		refs[i] = orderCtx.CartItems[i].Ref()
	}
	at := orderCtx.Now
	priced, err := orderCtx.Pricer.Quote(ctx, refs, &at)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "downstream pricing failed")
		return errors.Wrap(err, "re-price cart")
	}
	if len(priced) != len(refs) {
		err := errors.Errorf("pricing returned %d lines for %d requested", len(priced), len(refs))
		span.RecordError(err)
		return err
	}

	items := make([]domain.OrderItem, len(priced))
	discounted := 0
	for i, p := range priced {
		items[i] = domain.OrderItem{
			ProductID:  p.ProductID,
			Item:       p.Item,
			Title:      p.Title,
			ImageURL:   p.ImageURL,
			Custom:     p.Custom,
			Quantity:   orderCtx.CartItems[i].Quantity,
			BasePrice:  p.BasePrice,
			UnitPrice:  p.UnitPrice,
			DiscountID: p.DiscountID,
			Discount:   p.Discount,
		}
		if p.DiscountID != nil {
			discounted++
		}
	}
	orderCtx.Items = items
	span.SetAttributes(attribute.Int("lines.discounted", discounted))

	return h.executeNext(orderCtx)
}
