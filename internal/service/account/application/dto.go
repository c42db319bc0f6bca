package application

// ProfileRequest 是 PUT /profile 的请求体
type ProfileRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// ShippingProfileRequest 是订单服务结账后回写资料的请求体
type ShippingProfileRequest struct {
	ProfileRequest
	Email string `json:"email"`
}

// WishlistRequest 是 POST /wishlist 的请求体
type WishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

// ContactRequest 是联系表单
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// MessageStatusRequest 修改消息状态
type MessageStatusRequest struct {
	Status string `json:"status"`
}

// ReplyRequest 回复消息
type ReplyRequest struct {
	Reply string `json:"reply"`
}

// SessionRequest 用 ID token 换取会话 cookie
type SessionRequest struct {
	IDToken string `json:"id_token"`
}
