package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"

	"solitaire/internal/service/catalog/domain"
)

// GCSObjectStore 把戒指图片存放在 Firebase / GCS 存储桶中
type GCSObjectStore struct {
	bucket        *storage.BucketHandle
	publicBaseURL string
}

// NewGCSObjectStore 创建对象存储适配器。publicBaseURL 为空时使用 storage.googleapis.com 公网地址。
func NewGCSObjectStore(bucket *storage.BucketHandle, bucketName, publicBaseURL string) *GCSObjectStore {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://storage.googleapis.com/%s", bucketName)
	}
	return &GCSObjectStore{bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *GCSObjectStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.bucket.Object(path).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	default:
		return false, errors.Wrapf(err, "stat object %s", path)
	}
}

// Put 上传对象，只在对象不存在时写入
func (s *GCSObjectStore) Put(ctx context.Context, path, contentType string, r io.Reader) error {
	w := s.bucket.Object(path).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return putError(path, "upload", err)
	}
	if err := w.Close(); err != nil {
		return putError(path, "finalize", err)
	}
	return nil
}

// putError 把 DoesNotExist 前置条件失败 (HTTP 412) 归类为重复图片，不覆盖已有对象
func putError(path, step string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
		return errors.Wrapf(domain.ErrDuplicateProduct, "object %s already exists", path)
	}
	return errors.Wrapf(err, "%s object %s", step, path)
}

func (s *GCSObjectStore) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Wrapf(err, "delete object %s", path)
	}
	return nil
}

func (s *GCSObjectStore) PublicURL(path string) string {
	return s.publicBaseURL + "/" + path
}
