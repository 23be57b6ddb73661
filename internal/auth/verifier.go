package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratik-mahalle/mealplanner/internal/config"
)

// Verifier turns a bearer token into the caller's opaque user id
type Verifier interface {
	VerifyBearerToken(ctx context.Context, token string) (string, error)
}

// NewVerifier builds the verifier selected by cfg.Mode
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	switch strings.ToLower(cfg.Mode) {
	case "jwt":
		return NewJWTVerifier(cfg.JWTSecret), nil
	case "oidc":
		return NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCAudience)
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}
