package infrastructure

import (
	"context"
	"net/url"

	"solitaire/internal/pkg/httpclient"
	account "solitaire/internal/service/account/application"
	"solitaire/internal/service/order/domain"
)

const accountService = "account-service"

// AccountProfileSaver 通过账户服务的内部接口回写收货信息
type AccountProfileSaver struct {
	client *httpclient.Client
}

func NewAccountProfileSaver(client *httpclient.Client) *AccountProfileSaver {
	return &AccountProfileSaver{client: client}
}

// SaveShipping 实现了 domain.ProfileSaver 接口
func (a *AccountProfileSaver) SaveShipping(ctx context.Context, userID string, s domain.ShippingDetails) error {
	req := account.ShippingProfileRequest{
		ProfileRequest: account.ProfileRequest{Name: s.FullName(), Address: s.Address, Phone: s.Phone},
		Email:          s.Email,
	}
	return a.client.PostJSON(ctx, accountService, "/internal/profiles/"+url.PathEscape(userID), &req, nil)
}
