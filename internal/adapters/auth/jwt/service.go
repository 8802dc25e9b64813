package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"petrack/internal/domain/users"
	"petrack/internal/ports/auth"
)

type Config struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
}

type tokenClaims struct {
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	gojwt.RegisteredClaims
}

// Service firma y verifica tokens HS256. Implementa users.TokenIssuer y auth.AuthVerifier.
type Service struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("jwt: signing key is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Service{
		key:    []byte(cfg.SigningKey),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

func (s *Service) Issue(u users.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, tokenClaims{
		Email:    u.Email,
		UserType: string(u.Type),
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (s *Service) Verify(_ context.Context, raw string) (auth.Claims, error) {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	var c tokenClaims
	parsed, err := gojwt.ParseWithClaims(raw, &c, func(*gojwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	if c.Subject == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	return auth.Claims{UserID: c.Subject, Email: c.Email, UserType: c.UserType}, nil
}
