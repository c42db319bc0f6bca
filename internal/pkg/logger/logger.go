// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init 设置全局日志级别与输出格式，每个服务在启动时调用一次。
// format 为 "console" 时输出人类可读格式，其他值输出 JSON。
func Init(serviceName, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}
	base = zerolog.New(out).With().Timestamp().Str("service", serviceName).Logger()
}

// SetOutput 替换日志输出目标 (测试用)。
func SetOutput(w io.Writer) {
	base = base.Output(w)
}

// Ctx 返回一个携带当前 Span 的 trace_id / span_id 的日志实例。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := base
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			l = l.With().
				Str("trace_id", sc.TraceID().String()).
				Str("span_id", sc.SpanID().String()).
				Logger()
		}
	}
	return &l
}
