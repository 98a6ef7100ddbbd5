package auth

import "context"

type ctxKey int

const ctxAccount ctxKey = iota

// WithAccount stores the authenticated account name in context.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, ctxAccount, account)
}

// AccountFrom returns the authenticated account name, if any. Requests
// without identity resolve to the global (public-only) scope.
func AccountFrom(ctx context.Context) (string, bool) {
	if s, ok := ctx.Value(ctxAccount).(string); ok && s != "" {
		return s, true
	}
	return "", false
}
