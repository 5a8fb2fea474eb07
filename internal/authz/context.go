package authz

import (
	"context"
	"net/http"
)

type contextKey string

const (
	accountIDKey contextKey = "account_id"
	emailKey     contextKey = "email"
)

// WithIdentity stores the authenticated account on the context.
func WithIdentity(ctx context.Context, accountID, email string) context.Context {
	if accountID != "" {
		ctx = context.WithValue(ctx, accountIDKey, accountID)
	}
	if email != "" {
		ctx = context.WithValue(ctx, emailKey, email)
	}
	return ctx
}

func AccountIDFromRequest(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(accountIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func EmailFromRequest(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(emailKey).(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}
