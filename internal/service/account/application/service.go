// internal/service/account/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/account/domain"
)

// AccountService 管理用户资料、心愿单和联系消息
type AccountService struct {
	profiles domain.ProfileRepository
	wishlist domain.WishlistRepository
	messages domain.MessageRepository
	products domain.ProductChecker
	tracer   trace.Tracer
	now      func() time.Time
}

// NewAccountService 创建一个新的账户服务实例
func NewAccountService(profiles domain.ProfileRepository, wishlist domain.WishlistRepository, messages domain.MessageRepository,
	products domain.ProductChecker, tracer trace.Tracer) *AccountService {
	return &AccountService{
		profiles: profiles,
		wishlist: wishlist,
		messages: messages,
		products: products,
		tracer:   tracer,
		now:      time.Now,
	}
}

// WithClock 替换时钟 (测试用)
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

// GetProfile 返回用户资料，不存在时创建空资料
func (s *AccountService) GetProfile(ctx context.Context, userID, email string) (*domain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetProfile")
	defer span.End()

	p, err := s.profiles.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fail(span, err, "load profile failed")
	}

	p = domain.NewProfile(userID, email, s.now())
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, fail(span, err, "create profile failed")
	}
	logger.Ctx(ctx).Info().Str("user_id", userID).Msg("profile created on first read")
	// 并发首读时以库中的记录为准
	return s.profiles.Get(ctx, userID)
}

// UpdateProfile 修改姓名、地址和电话
func (s *AccountService) UpdateProfile(ctx context.Context, userID, email string, req *ProfileRequest) (*domain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateProfile")
	defer span.End()

	p, err := s.GetProfile(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.Name, req.Address, req.Phone, s.now()); err != nil {
		return nil, fail(span, err, "invalid profile")
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fail(span, err, "save profile failed")
	}
	return p, nil
}

// ListWishlist 返回心愿单，最早加入的在前
func (s *AccountService) ListWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListWishlist")
	defer span.End()

	items, err := s.wishlist.List(ctx, userID)
	if err != nil {
		return nil, fail(span, err, "list wishlist failed")
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}
	return items, nil
}

// AddToWishlist 幂等地加入商品，返回更新后的心愿单
func (s *AccountService) AddToWishlist(ctx context.Context, userID string, productID int64) ([]domain.WishlistItem, error) {
	ctx, span := s.tracer.Start(ctx, "service.AddToWishlist", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, fail(span, err, "product lookup failed")
	}
	if !ok {
		return nil, errors.Wrapf(domain.ErrProductNotFound, "product %d", productID)
	}

	added, err := s.wishlist.Add(ctx, &domain.WishlistItem{UserID: userID, ProductID: productID, CreatedAt: s.now()})
	if err != nil {
		return nil, fail(span, err, "add wishlist item failed")
	}
	span.SetAttributes(attribute.Bool("wishlist.added", added))
	return s.ListWishlist(ctx, userID)
}

// RemoveFromWishlist 移除商品，不在心愿单中时不报错
func (s *AccountService) RemoveFromWishlist(ctx context.Context, userID string, productID int64) ([]domain.WishlistItem, error) {
	ctx, span := s.tracer.Start(ctx, "service.RemoveFromWishlist", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	if err := s.wishlist.Remove(ctx, userID, productID); err != nil {
		return nil, fail(span, err, "remove wishlist item failed")
	}
	return s.ListWishlist(ctx, userID)
}

// SubmitMessage 保存联系表单，无需登录
func (s *AccountService) SubmitMessage(ctx context.Context, req *ContactRequest) (*domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "service.SubmitMessage")
	defer span.End()

	m, err := domain.NewMessage(req.Name, req.Email, req.Message, s.now())
	if err != nil {
		return nil, fail(span, err, "invalid message")
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fail(span, err, "save message failed")
	}
	logger.Ctx(ctx).Info().Int64("message_id", m.ID).Msg("contact message received")
	return m, nil
}

// ListMessages 返回全部联系消息，最新的在前
func (s *AccountService) ListMessages(ctx context.Context) ([]domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListMessages")
	defer span.End()

	msgs, err := s.messages.List(ctx)
	if err != nil {
		return nil, fail(span, err, "list messages failed")
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// SetMessageStatus 修改消息状态
func (s *AccountService) SetMessageStatus(ctx context.Context, id int64, status string) (*domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "service.SetMessageStatus", trace.WithAttributes(attribute.Int64("message.id", id)))
	defer span.End()

	st, err := domain.ParseMessageStatus(status)
	if err != nil {
		return nil, fail(span, err, "invalid status")
	}
	m, err := s.messages.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err, "load message failed")
	}
	m.SetStatus(st, s.now())
	if err := s.messages.Update(ctx, m); err != nil {
		return nil, fail(span, err, "save message failed")
	}
	return m, nil
}

// ReplyMessage 记录管理员的回复
func (s *AccountService) ReplyMessage(ctx context.Context, id int64, reply string) (*domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "service.ReplyMessage", trace.WithAttributes(attribute.Int64("message.id", id)))
	defer span.End()

	m, err := s.messages.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err, "load message failed")
	}
	if err := m.Respond(reply, s.now()); err != nil {
		return nil, fail(span, err, "invalid reply")
	}
	if err := s.messages.Update(ctx, m); err != nil {
		return nil, fail(span, err, "save message failed")
	}
	logger.Ctx(ctx).Info().Int64("message_id", id).Msg("contact message answered")
	return m, nil
}

// DeleteMessage 删除消息
func (s *AccountService) DeleteMessage(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "service.DeleteMessage", trace.WithAttributes(attribute.Int64("message.id", id)))
	defer span.End()

	if err := s.messages.Delete(ctx, id); err != nil {
		return fail(span, err, "delete message failed")
	}
	return nil
}
