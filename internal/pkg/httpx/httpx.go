// internal/pkg/httpx/httpx.go
package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"solitaire/internal/pkg/logger"
)

const maxBodyBytes = 1 << 20

// ErrBadRequest 表示请求体或参数无法解析
var ErrBadRequest = errors.New("bad request")

// Extract 从请求头恢复上游的 trace 上下文
func Extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

// DecodeJSON 解析 JSON 请求体
func DecodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(ErrBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

// WriteJSON 输出 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Ctx(context.Background()).Error().Err(err).Msg("failed to encode response")
	}
}

// WriteError 输出 {"error": "..."}，5xx 会记录日志
func WriteError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Ctx(ctx).Error().Err(err).Int("status", status).Msg("request failed")
	}
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}

// PathInt64 读取 ServeMux 路径参数中的整数
func PathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrBadRequest, "invalid %s %q", name, r.PathValue(name))
	}
	return v, nil
}
