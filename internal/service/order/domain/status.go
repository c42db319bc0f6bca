// internal/service/order/domain/status.go
package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// Status 定义了订单的生命周期状态
type Status string

const (
	StatusPending    Status = "pending"    // 已下单，等待处理
	StatusProcessing Status = "processing" // 制作中
	StatusShipped    Status = "shipped"    // 已发货
	StatusDelivered  Status = "delivered"  // 已签收
	StatusCancelled  Status = "cancelled"  // 已取消 (用户主动或后台)
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus 解析后台传入的状态，大小写不敏感
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.Wrapf(ErrInvalidStatus, "%q", s)
	}
	return st, nil
}
