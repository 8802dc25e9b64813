package middleware

import (
	"context"
	"net/http"
	"strings"

	"petrack/internal/platform/logger"
	"petrack/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// DebugUserHeader sólo se acepta cuando no hay verifier (modo dev).
const DebugUserHeader = "X-Debug-User-ID"

// AuthContext:
// - verifier != nil: si viene Bearer token lo verifica y deja las claims.
// - verifier == nil: modo dev, toma el usuario de X-Debug-User-ID.
// Nunca corta el request; cada handler decide si exige usuario.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(DebugUserHeader)); uid != "" {
					r = r.WithContext(WithClaims(r.Context(), auth.Claims{UserID: uid}))
				}
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.FromContext(r.Context(), nil).Debug("token rejected", logger.Fields{"err": err})
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

// CurrentUserID devuelve el usuario autenticado, o "" si no hay.
func CurrentUserID(ctx context.Context) string {
	c, ok := GetClaims(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(c.UserID)
}

func bearerToken(authHeader string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
