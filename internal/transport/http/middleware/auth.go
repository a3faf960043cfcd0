package middleware

import (
	"context"
	"net/http"
	"strings"

	"hcm/internal/domain/identity"
	"hcm/internal/requestctx"
	"hcm/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

type TokenParser interface {
	Parse(token string) (*identity.Claims, error)
}

// Auth attaches the caller to the context when a valid bearer token is
// present. Requests without one pass through unauthenticated.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				requestctx.Logger(r.Context()).Debug("bearer token rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			user := claims.User()
			ctx := WithUser(r.Context(), user)
			ctx = requestctx.WithActor(ctx, user.AccountID)
			ctx = requestctx.WithLogger(ctx, requestctx.Logger(ctx).With("accountId", user.AccountID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that carry no authenticated caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user identity.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (identity.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(identity.UserContext)
	return user, ok
}
