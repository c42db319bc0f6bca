package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("invalid token")
}

func (f *fakeVerifier) VerifySessionCookie(ctx context.Context, cookie string) (*fbauth.Token, error) {
	return f.VerifyIDToken(ctx, cookie)
}

func (f *fakeVerifier) SessionCookie(_ context.Context, idToken string, _ time.Duration) (string, error) {
	return "cookie-" + idToken, nil
}

func TestFirebaseAuthenticator(t *testing.T) {
	v := &fakeVerifier{tokens: map[string]*fbauth.Token{
		"user":  {UID: "u1", Claims: map[string]interface{}{"email": "a@b.c"}},
		"admin": {UID: "u2", Claims: map[string]interface{}{"admin": true}},
		"boss":  {UID: "u3"},
	}}
	a := NewFirebaseAuthenticator(v, []string{"u3"})

	cases := []struct {
		name    string
		setup   func(r *http.Request)
		wantUID string
		admin   bool
		wantErr bool
	}{
		{name: "no credentials", setup: func(r *http.Request) {}, wantErr: true},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer user") }, wantUID: "u1"},
		{name: "admin claim", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin") }, wantUID: "u2", admin: true},
		{name: "admin allowlist", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer boss") }, wantUID: "u3", admin: true},
		{name: "session cookie", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "user"})
		}, wantUID: "u1"},
		{name: "bad token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(r)
			id, err := a.Authenticate(r)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnauthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantUID, id.UID)
			assert.Equal(t, tc.admin, id.Admin)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(HeaderAuthenticator{}, func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(id.UID))
	})

	anon := httptest.NewRecorder()
	h(anon, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	customer := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(HeaderUserID, "u1")
	h(customer, req)
	assert.Equal(t, http.StatusForbidden, customer.Code)

	admin := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(HeaderUserID, "root")
	req.Header.Set(HeaderUserRole, "admin")
	h(admin, req)
	assert.Equal(t, http.StatusOK, admin.Code)
	assert.Equal(t, "root", admin.Body.String())
}
