package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	ring "solitaire/domain"
	"solitaire/internal/service/order/domain"
)

type memCartRepo struct {
	mu    sync.Mutex
	items map[string]domain.CartItem
	lists int
}

func newMemCartRepo() *memCartRepo { return &memCartRepo{items: map[string]domain.CartItem{}} }

func (m *memCartRepo) ListByUser(_ context.Context, userID string) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	var out []domain.CartItem
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memCartRepo) Create(_ context.Context, item *domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memCartRepo) UpdateQuantity(_ context.Context, userID, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return domain.ErrCartItemNotFound
	}
	it.Quantity = qty
	m.items[id] = it
	return nil
}

func (m *memCartRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return domain.ErrCartItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memCartRepo) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.items {
		if it.UserID == userID {
			delete(m.items, id)
		}
	}
	return nil
}

type memCartCache struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
	err   error
}

func newMemCartCache() *memCartCache { return &memCartCache{carts: map[string]domain.Cart{}} }

func (c *memCartCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	cart, ok := c.carts[userID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &cart, nil
}

func (c *memCartCache) Set(_ context.Context, cart *domain.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[cart.UserID] = *cart
	return nil
}

func (c *memCartCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, userID)
	return nil
}

// stubPricer 按商品 ID 查表定价，定制戒指统一 9000，可选打折
type stubPricer struct {
	prices map[int64]decimal.Decimal
	items  map[int64]ring.CatalogItem
	err    error
	calls  int
	lastAt *time.Time
}

func (p *stubPricer) Quote(_ context.Context, lines []domain.LineRef, at *time.Time) ([]domain.PricedLine, error) {
	p.calls++
	p.lastAt = at
	if p.err != nil {
		return nil, p.err
	}
	out := make([]domain.PricedLine, len(lines))
	for i, l := range lines {
		if l.Custom != nil {
			out[i] = domain.PricedLine{Item: *l.Custom, Title: l.Custom.Title(), Custom: true,
				BasePrice: decimal.NewFromInt(9000), UnitPrice: decimal.NewFromInt(9000)}
			continue
		}
		price, ok := p.prices[*l.ProductID]
		if !ok {
			return nil, errors.New("product not found")
		}
		id := *l.ProductID
		out[i] = domain.PricedLine{ProductID: &id, Item: p.items[id], Title: p.items[id].Title(),
			BasePrice: price, UnitPrice: price}
	}
	return out, nil
}

type memOrders struct {
	mu       sync.Mutex
	orders   map[string]domain.Order
	failSave bool
}

func newMemOrders() *memOrders { return &memOrders{orders: map[string]domain.Order{}} }

func (m *memOrders) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("deadlock found when trying to get lock")
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (m *memOrders) list(keep func(*domain.Order) bool) []domain.Order {
	var out []domain.Order
	for _, o := range m.orders {
		if keep(&o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (m *memOrders) ListAll(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(*domain.Order) bool { return true }), nil
}

func (m *memOrders) UpdateStatus(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	stored.Status = o.Status
	stored.UpdatedAt = o.UpdatedAt
	m.orders[o.ID] = stored
	return nil
}

func (m *memOrders) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

type recPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (p *recPublisher) Publish(_ context.Context, e *domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *e)
	return nil
}

type recProfiles struct {
	mu    sync.Mutex
	saved map[string]domain.ShippingDetails
	err   error
}

func (p *recProfiles) SaveShipping(_ context.Context, userID string, s domain.ShippingDetails) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.saved == nil {
		p.saved = map[string]domain.ShippingDetails{}
	}
	p.saved[userID] = s
	return nil
}
