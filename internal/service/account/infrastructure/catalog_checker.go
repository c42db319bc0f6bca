package infrastructure

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"solitaire/internal/pkg/httpclient"
)

const catalogService = "catalog-service"

// CatalogProductChecker 通过目录服务确认商品存在
type CatalogProductChecker struct {
	client *httpclient.Client
}

func NewCatalogProductChecker(client *httpclient.Client) *CatalogProductChecker {
	return &CatalogProductChecker{client: client}
}

// Exists 实现了 domain.ProductChecker 接口
func (c *CatalogProductChecker) Exists(ctx context.Context, productID int64) (bool, error) {
	err := c.client.GetJSON(ctx, catalogService, "/products/"+strconv.FormatInt(productID, 10), nil)
	var se *httpclient.StatusError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &se) && se.Status == http.StatusNotFound:
		return false, nil
	default:
		return false, err
	}
}
