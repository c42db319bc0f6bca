package infrastructure

import (
	ring "solitaire/domain"
	"solitaire/internal/service/catalog/domain"
)

func toDomainProduct(m *RingImageModel) domain.Product {
	return domain.Product{
		ID:        m.ID,
		Design:    ring.Design(m.Design),
		Metal:     ring.Metal(m.Metal),
		Shape:     ring.Shape(m.DiamondShape),
		Carat:     m.Carat,
		ImagePath: m.ImageURL,
		PublicURL: m.PublicURL,
		CreatedAt: m.CreatedAt,
	}
}

func fromDomainProduct(p *domain.Product) *RingImageModel {
	return &RingImageModel{
		ID:           p.ID,
		Design:       string(p.Design),
		Metal:        string(p.Metal),
		DiamondShape: string(p.Shape),
		Carat:        p.Carat,
		ImageURL:     p.ImagePath,
		PublicURL:    p.PublicURL,
		CreatedAt:    p.CreatedAt,
	}
}

func toDomainPriceTable(m *RingPricingModel) domain.PriceTable {
	return domain.PriceTable{
		Design:    ring.Design(m.Design),
		Price10:   m.Price10,
		Price15:   m.Price15,
		Price20:   m.Price20,
		Price25:   m.Price25,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainPriceTable(t *domain.PriceTable) *RingPricingModel {
	return &RingPricingModel{
		Design:    string(t.Design),
		Price10:   t.Price10,
		Price15:   t.Price15,
		Price20:   t.Price20,
		Price25:   t.Price25,
		UpdatedAt: t.UpdatedAt,
	}
}
