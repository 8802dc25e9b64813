package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"petrack/internal/ports/auth"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token == "good" {
		return auth.Claims{UserID: "u-1", Email: "a@b.c"}, nil
	}
	return auth.Claims{}, errors.New("bad token")
}

func captureUser(got *string) http.Handler {
	return http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		*got = CurrentUserID(r.Context())
	})
}

func TestAuthContextDevMode(t *testing.T) {
	var got string
	h := AuthContext(nil)(captureUser(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, " dev-user ")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "dev-user" {
		t.Fatalf("expected dev-user, got %q", got)
	}
}

func TestAuthContextVerifierMode(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer good", "u-1"},
		{"lowercase scheme", "bearer good", "u-1"},
		{"invalid token", "Bearer bad", ""},
		{"no scheme", "good", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			h := AuthContext(stubVerifier{})(captureUser(&got))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tc.header)
			req.Header.Set(DebugUserHeader, "ignored")
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
