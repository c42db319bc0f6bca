// internal/pkg/auth/firebase.go
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
)

// SessionCookieName 是会话 cookie 的名称
const SessionCookieName = "session"

// TokenVerifier 是 Firebase auth.Client 中用到的方法
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*fbauth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
}

// FirebaseAuthenticator 校验 Bearer ID token 或 session cookie。
// 管理员身份来自自定义 claim "admin" 或配置的 UID 白名单。
type FirebaseAuthenticator struct {
	client    TokenVerifier
	adminUIDs map[string]struct{}
}

// NewFirebaseAuthenticator 创建基于 Firebase Admin SDK 的认证器
func NewFirebaseAuthenticator(client TokenVerifier, adminUIDs []string) *FirebaseAuthenticator {
	admins := make(map[string]struct{}, len(adminUIDs))
	for _, uid := range adminUIDs {
		admins[uid] = struct{}{}
	}
	return &FirebaseAuthenticator{client: client, adminUIDs: admins}
}

func (f *FirebaseAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	ctx := r.Context()
	var (
		token *fbauth.Token
		err   error
	)
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && bearer != "" {
		token, err = f.client.VerifyIDToken(ctx, bearer)
	} else if c, cerr := r.Cookie(SessionCookieName); cerr == nil && c.Value != "" {
		token, err = f.client.VerifySessionCookie(ctx, c.Value)
	} else {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnauthenticated, err.Error())
	}
	return f.identity(token), nil
}

// IssueSession 用 ID token 换取会话 cookie
func (f *FirebaseAuthenticator) IssueSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	cookie, err := f.client.SessionCookie(ctx, idToken, expiresIn)
	if err != nil {
		return "", errors.Wrap(ErrUnauthenticated, err.Error())
	}
	return cookie, nil
}

func (f *FirebaseAuthenticator) identity(token *fbauth.Token) *Identity {
	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if admin, ok := token.Claims["admin"].(bool); ok && admin {
		id.Admin = true
	}
	if _, ok := f.adminUIDs[token.UID]; ok {
		id.Admin = true
	}
	return id
}
