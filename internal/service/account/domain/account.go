// internal/service/account/domain/account.go
package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidProfile   = errors.New("invalid profile")
	ErrProductNotFound  = errors.New("product not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrInvalidMsgStatus = errors.New("invalid message status")
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

const (
	maxNameLen    = 120
	maxAddressLen = 500
	maxMessageLen = 5000
)

// Profile 是用户资料，首次读取时创建空记录
type Profile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile 创建空资料
func NewProfile(userID, email string, now time.Time) *Profile {
	return &Profile{UserID: userID, Email: email, CreatedAt: now, UpdatedAt: now}
}

// Update 校验并覆盖可编辑字段，电话号码可以为空
func (p *Profile) Update(name, address, phone string, now time.Time) error {
	name, address, phone = strings.TrimSpace(name), strings.TrimSpace(address), strings.TrimSpace(phone)
	if len(name) > maxNameLen {
		return errors.Wrapf(ErrInvalidProfile, "name longer than %d characters", maxNameLen)
	}
	if len(address) > maxAddressLen {
		return errors.Wrapf(ErrInvalidProfile, "address longer than %d characters", maxAddressLen)
	}
	if phone != "" && !phonePattern.MatchString(compact(phone)) {
		return errors.Wrapf(ErrInvalidProfile, "phone %q", phone)
	}
	p.Name, p.Address, p.Phone = name, address, phone
	p.UpdatedAt = now
	return nil
}

// WishlistItem 是心愿单中的一件商品
type WishlistItem struct {
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageStatus 是联系消息的处理状态
type MessageStatus string

const (
	MessageUnread    MessageStatus = "unread"
	MessageRead      MessageStatus = "read"
	MessageResponded MessageStatus = "responded"
)

// ParseMessageStatus 大小写不敏感地解析状态
func ParseMessageStatus(s string) (MessageStatus, error) {
	switch st := MessageStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case MessageUnread, MessageRead, MessageResponded:
		return st, nil
	}
	return "", errors.Wrapf(ErrInvalidMsgStatus, "%q", s)
}

// Message 是访客通过联系表单提交的消息
type Message struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Body      string        `json:"message"`
	Status    MessageStatus `json:"status"`
	Reply     string        `json:"reply,omitempty"`
	RepliedAt *time.Time    `json:"replied_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewMessage 校验联系表单并创建未读消息
func NewMessage(name, email, body string, now time.Time) (*Message, error) {
	name, email, body = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(body)
	switch {
	case name == "":
		return nil, errors.Wrap(ErrInvalidMessage, "name is required")
	case len(name) > maxNameLen:
		return nil, errors.Wrapf(ErrInvalidMessage, "name longer than %d characters", maxNameLen)
	case !emailPattern.MatchString(email):
		return nil, errors.Wrapf(ErrInvalidMessage, "email %q", email)
	case body == "":
		return nil, errors.Wrap(ErrInvalidMessage, "message is required")
	case len(body) > maxMessageLen:
		return nil, errors.Wrapf(ErrInvalidMessage, "message longer than %d characters", maxMessageLen)
	}
	return &Message{Name: name, Email: email, Body: body, Status: MessageUnread, CreatedAt: now, UpdatedAt: now}, nil
}

// SetStatus 修改处理状态
func (m *Message) SetStatus(s MessageStatus, now time.Time) {
	m.Status = s
	m.UpdatedAt = now
}

// Respond 记录回复并把状态置为 responded
func (m *Message) Respond(reply string, now time.Time) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return errors.Wrap(ErrInvalidMessage, "reply is required")
	}
	m.Reply = reply
	at := now
	m.RepliedAt = &at
	m.Status = MessageResponded
	m.UpdatedAt = now
	return nil
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// ProfileRepository 持久化用户资料
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	// Create 在记录已存在时不报错
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
}

// WishlistRepository 持久化心愿单
type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]WishlistItem, error)
	// Add 在商品已在心愿单中时返回 false
	Add(ctx context.Context, item *WishlistItem) (bool, error)
	Remove(ctx context.Context, userID string, productID int64) error
}

// MessageRepository 持久化联系消息
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	Get(ctx context.Context, id int64) (*Message, error)
	List(ctx context.Context) ([]Message, error)
	Update(ctx context.Context, m *Message) error
	Delete(ctx context.Context, id int64) error
}

// ProductChecker 确认商品存在于目录中
type ProductChecker interface {
	Exists(ctx context.Context, productID int64) (bool, error)
}
