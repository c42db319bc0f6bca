package infrastructure

import (
	ring "solitaire/domain"
	"solitaire/internal/service/order/domain"
)

func toDomainOrder(m *OrderModel) domain.Order {
	return domain.Order{
		ID:     m.ID,
		UserID: m.UserID,
		Items:  m.Items,
		Totals: domain.Totals{
			ItemCount: m.ItemCount,
			Subtotal:  m.Subtotal,
			Shipping:  m.Shipping,
			Tax:       m.Tax,
			Total:     m.Total,
		},
		Status:    domain.Status(m.Status),
		Shipping:  m.ShippingAddress,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainOrder(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		ItemCount:       o.Totals.ItemCount,
		Subtotal:        o.Totals.Subtotal,
		Shipping:        o.Totals.Shipping,
		Tax:             o.Totals.Tax,
		Total:           o.Totals.Total,
		Status:          string(o.Status),
		ShippingAddress: o.Shipping,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toDomainCartItem(m *CartItemModel) domain.CartItem {
	return domain.CartItem{
		ID:        m.ID,
		UserID:    m.UserID,
		ProductID: m.ProductID,
		Item: ring.CatalogItem{
			Design: ring.Design(m.Design),
			Metal:  ring.Metal(m.Metal),
			Shape:  ring.Shape(m.Shape),
			Carat:  m.Carat,
		},
		Custom:    m.Custom,
		Title:     m.Title,
		ImageURL:  m.ImageURL,
		Price:     m.Price,
		Quantity:  m.Qty,
		CreatedAt: m.CreatedAt,
	}
}

func fromDomainCartItem(c *domain.CartItem) *CartItemModel {
	return &CartItemModel{
		ID:        c.ID,
		UserID:    c.UserID,
		ProductID: c.ProductID,
		Design:    string(c.Item.Design),
		Metal:     string(c.Item.Metal),
		Shape:     string(c.Item.Shape),
		Carat:     c.Item.Carat.Round(1),
		Custom:    c.Custom,
		Title:     c.Title,
		ImageURL:  c.ImageURL,
		Price:     c.Price.Round(2),
		Qty:       c.Quantity,
		CreatedAt: c.CreatedAt,
	}
}
