package middleware

import "context"

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxAccessToken   ctxKey = "access_token"
)

func GetCorrelationID(ctx context.Context) string {
	if v := ctx.Value(ctxCorrelationID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func GetAccessToken(ctx context.Context) string {
	if v := ctx.Value(ctxAccessToken); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithAccessToken returns a copy of ctx carrying token. Outbound backend calls
// made with that context are authenticated with it.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxAccessToken, token)
}

// WithCorrelationID is the non-HTTP entry point used by background callers and tests.
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, ctxCorrelationID, cid)
}
