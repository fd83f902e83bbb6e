// internal/utils/request_meta.go
package utils

import (
	"context"
)

type requestMetaKey struct{}

// RequestMeta is the slice of the inbound request that diagnostics record.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
	Path      string
	Method    string
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}

