// internal/service/order/application/cart_service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ring "solitaire/domain"
	"solitaire/internal/pkg/logger"
	"solitaire/internal/pkg/metrics"
	"solitaire/internal/service/order/domain"
)

// CartService 管理购物车。读走 Redis 读穿缓存，写先落库再删除缓存。
type CartService struct {
	repo   domain.CartRepository
	cache  domain.CartCache
	pricer domain.Pricer
	tracer trace.Tracer
	now    func() time.Time
}

// NewCartService 创建一个新的购物车服务实例
func NewCartService(repo domain.CartRepository, cache domain.CartCache, pricer domain.Pricer, tracer trace.Tracer) *CartService {
	return &CartService{repo: repo, cache: cache, pricer: pricer, tracer: tracer, now: time.Now}
}

// load 先查缓存，未命中时读库并回填
func (s *CartService) load(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.cache.Get(ctx, userID)
	switch {
	case err == nil:
		metrics.CartCacheLookups.WithLabelValues("hit").Inc()
		return cart, nil
	case errors.Is(err, domain.ErrCacheMiss):
		metrics.CartCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CartCacheLookups.WithLabelValues("error").Inc()
		logger.Ctx(ctx).Warn().Err(err).Str("user", userID).Msg("cart cache read failed, falling back to database")
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart = &domain.Cart{UserID: userID, Items: items}
	if err := s.cache.Set(ctx, cart); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("user", userID).Msg("failed to populate cart cache")
	}
	return cart, nil
}

// invalidate 删除缓存，失败时只记录日志，缓存会在 TTL 后过期
func (s *CartService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user", userID).Msg("failed to invalidate cart cache")
	}
}

// GetCart 返回购物车及金额汇总
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCart")
	defer span.End()

	cart, err := s.load(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("cart.lines", len(cart.Items)))
	return toCartView(cart), nil
}

// Items 实现了结账流程的购物车端口
func (s *CartService) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// AddItem 加入购物车。先向目录服务询价，已有相同的行时数量加 1。
func (s *CartService) AddItem(ctx context.Context, userID string, req *AddItemRequest) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.AddCartItem")
	defer span.End()

	var ref domain.LineRef
	switch {
	case req.ProductID != nil && req.Custom == nil:
		ref.ProductID = req.ProductID
	case req.Custom != nil && req.ProductID == nil:
		item, err := req.Custom.item()
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		ref.Custom = &item
	default:
		return nil, errors.Wrap(ring.ErrInvalidAttribute, "exactly one of product_id or custom is required")
	}

	priced, err := s.pricer.Quote(ctx, []domain.LineRef{ref}, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, err
	}
	if len(priced) != 1 {
		return nil, errors.Errorf("pricing returned %d lines", len(priced))
	}
	p := priced[0]
	candidate := &domain.CartItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: p.ProductID,
		Item:      p.Item,
		Custom:    p.Custom,
		Title:     p.Title,
		ImageURL:  p.ImageURL,
		Price:     p.UnitPrice,
		Quantity:  1,
		CreatedAt: s.now(),
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	cart := &domain.Cart{UserID: userID, Items: items}
	if existing := cart.Find(candidate); existing != nil {
		err = s.repo.UpdateQuantity(ctx, userID, existing.ID, existing.Quantity+1)
		span.SetAttributes(attribute.Bool("cart.merged", true))
	} else {
		err = s.repo.Create(ctx, candidate)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidate(ctx, userID)

	return s.GetCart(ctx, userID)
}

// UpdateQuantity 修改某一行的数量，qty <= 0 时删除该行
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, qty int) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateCartQuantity")
	defer span.End()

	var err error
	if qty <= 0 {
		err = s.repo.Delete(ctx, userID, itemID)
	} else {
		err = s.repo.UpdateQuantity(ctx, userID, itemID, qty)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidate(ctx, userID)
	return s.GetCart(ctx, userID)
}

// RemoveItem 删除一行
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "service.RemoveCartItem")
	defer span.End()

	if err := s.repo.Delete(ctx, userID, itemID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidate(ctx, userID)
	return s.GetCart(ctx, userID)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "service.ClearCart")
	defer span.End()

	if err := s.repo.Clear(ctx, userID); err != nil {
		span.RecordError(err)
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}
