package infrastructure

import (
	"time"

	"solitaire/internal/service/account/domain"
)

// ProfileModel 对应 profiles 表
type ProfileModel struct {
	UserID    string `gorm:"primaryKey;size:128"`
	Email     string `gorm:"size:255"`
	Name      string `gorm:"size:120"`
	Address   string `gorm:"size:500"`
	Phone     string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProfileModel) TableName() string { return "profiles" }

// WishlistItemModel 对应 wishlist_items 表，(user_id, product_id) 唯一
type WishlistItemModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"size:128;not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID int64  `gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	CreatedAt time.Time
}

func (WishlistItemModel) TableName() string { return "wishlist_items" }

// MessageModel 对应 messages 表
type MessageModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:120;not null"`
	Email     string `gorm:"size:255;not null"`
	Message   string `gorm:"type:text;not null"`
	Status    string `gorm:"size:16;not null;index"`
	Reply     string `gorm:"type:text"`
	RepliedAt *time.Time
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (MessageModel) TableName() string { return "messages" }

// Models 返回本服务的全部表模型，供迁移使用
func Models() []any {
	return []any{&ProfileModel{}, &WishlistItemModel{}, &MessageModel{}}
}

func toDomainProfile(m *ProfileModel) *domain.Profile {
	return &domain.Profile{
		UserID:    m.UserID,
		Email:     m.Email,
		Name:      m.Name,
		Address:   m.Address,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainProfile(p *domain.Profile) *ProfileModel {
	return &ProfileModel{
		UserID:    p.UserID,
		Email:     p.Email,
		Name:      p.Name,
		Address:   p.Address,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toDomainMessage(m *MessageModel) domain.Message {
	return domain.Message{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Body:      m.Message,
		Status:    domain.MessageStatus(m.Status),
		Reply:     m.Reply,
		RepliedAt: m.RepliedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainMessage(m *domain.Message) *MessageModel {
	return &MessageModel{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Body,
		Status:    string(m.Status),
		Reply:     m.Reply,
		RepliedAt: m.RepliedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
