package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orghub/internal/platform/config"
	dErrors "orghub/pkg/domain-errors"
)

// Claims is the fixed claim set for admin session tokens. The claim structure
// is explicitly typed rather than a map so consumers never do stringly-typed
// key lookups.
type Claims struct {
	AdminEmail       string `json:"admin_email"`
	OrganizationName string `json:"organization_name"`
	jwt.RegisteredClaims
}

// Service signs and validates admin session tokens with a single symmetric
// key and algorithm, both fixed per deployment.
type Service struct {
	signingKey []byte
	method     jwt.SigningMethod
	ttl        time.Duration
}

// New constructs the token service. It fails only on misconfiguration
// (empty key or unsupported algorithm), which is a startup-time condition.
func New(cfg config.JWTConfig) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("jwt signing key is required")
	}
	method, err := signingMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		method:     method,
		ttl:        ttl,
	}, nil
}

func signingMethod(algorithm string) (jwt.SigningMethod, error) {
	switch algorithm {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token binding the admin identity to its organization.
func (s *Service) Issue(adminEmail, organizationName string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(s.method, Claims{
		AdminEmail:       adminEmail,
		OrganizationName: organizationName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its typed claims.
// Malformed, tampered, and expired tokens all map to unauthorized errors.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}
