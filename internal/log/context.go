// SPDX-License-Identifier: MIT

package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	pathKey   ctxKey = "path"
	sourceKey ctxKey = "source"
)

// ContextWithPath stores the file path an operation works on.
func ContextWithPath(ctx context.Context, path string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, pathKey, path)
}

// ContextWithSource stores a human-readable input source name (e.g. "stdin").
func ContextWithSource(ctx context.Context, source string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sourceKey, source)
}

// PathFromContext extracts the file path from context if present.
func PathFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(pathKey).(string); ok {
		return v
	}
	return ""
}

// SourceFromContext extracts the input source from context if present.
func SourceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sourceKey).(string); ok {
		return v
	}
	return ""
}

// WithContext enriches the supplied logger with fields from context.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	builder := logger.With()
	added := false
	if p := PathFromContext(ctx); p != "" {
		builder = builder.Str(FieldPath, p)
		added = true
	}
	if s := SourceFromContext(ctx); s != "" {
		builder = builder.Str(FieldSource, s)
		added = true
	}
	if !added {
		return logger
	}
	return builder.Logger()
}
