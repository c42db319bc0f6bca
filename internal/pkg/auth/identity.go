// internal/pkg/auth/identity.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Identity 是已通过托管身份服务校验的调用者
type Identity struct {
	UID   string
	Email string
	Admin bool
}

// Authenticator 从请求中识别调用者，无凭证时返回 ErrUnauthenticated
type Authenticator interface {
	Authenticate(r *http.Request) (*Identity, error)
}

// SessionIssuer 用身份服务签发的 ID token 换取会话 cookie
type SessionIssuer interface {
	IssueSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
}

type ctxKey struct{}

// WithIdentity 把身份写入 context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext 读取 context 中的身份
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
