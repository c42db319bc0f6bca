package infrastructure

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"solitaire/internal/service/catalog/domain"
)

func TestPutError(t *testing.T) {
	path := "rings/halo-setting/platinum/oval/1.0ct.png"

	conflict := fmt.Errorf("writer: %w", &googleapi.Error{Code: http.StatusPreconditionFailed, Message: "conditionNotMet"})
	err := putError(path, "finalize", conflict)
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)
	assert.Contains(t, err.Error(), path)

	unavailable := &googleapi.Error{Code: http.StatusServiceUnavailable}
	err = putError(path, "finalize", unavailable)
	assert.NotErrorIs(t, err, domain.ErrDuplicateProduct)
	assert.True(t, errors.Is(err, unavailable))

	err = putError(path, "upload", errors.New("connection reset"))
	assert.NotErrorIs(t, err, domain.ErrDuplicateProduct)
	assert.Contains(t, err.Error(), "upload object")
}

func TestGCSObjectStore_PublicURL(t *testing.T) {
	s := NewGCSObjectStore(nil, "ring-images", "")
	assert.Equal(t, "https://storage.googleapis.com/ring-images/rings/default/band.png", s.PublicURL("rings/default/band.png"))

	s = NewGCSObjectStore(nil, "ring-images", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/rings/default/band.png", s.PublicURL("rings/default/band.png"))
}
