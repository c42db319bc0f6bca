// internal/pkg/auth/factory.go
package auth

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"solitaire/internal/pkg/firebase"
)

// New 按模式创建认证器: "firebase" 或 "header"
func New(ctx context.Context, mode, projectID, credentialsFile string, adminUIDs []string) (Authenticator, error) {
	switch mode {
	case "", "header":
		return HeaderAuthenticator{}, nil
	case "firebase":
		app, err := firebase.NewApp(ctx, projectID, "", credentialsFile)
		if err != nil {
			return nil, err
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "init firebase auth client")
		}
		return NewFirebaseAuthenticator(client, adminUIDs), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}
