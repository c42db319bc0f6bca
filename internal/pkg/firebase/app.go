// internal/pkg/firebase/app.go
package firebase

import (
	"context"

	fb "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// NewApp 使用服务账号文件初始化 Firebase Admin SDK。
// credentialsFile 为空时走 Application Default Credentials。
func NewApp(ctx context.Context, projectID, bucket, credentialsFile string) (*fb.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	cfg := &fb.Config{ProjectID: projectID, StorageBucket: bucket}
	app, err := fb.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "init firebase app")
	}
	return app, nil
}
