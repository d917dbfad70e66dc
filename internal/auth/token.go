// File: internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
)

const tokenIssuer = "promo-platform"

// Claims is the JWT payload for both principal kinds.
type Claims struct {
	SubjectID uuid.UUID `json:"uid"`
	Kind      string    `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access tokens.
type TokenService interface {
	GenerateToken(subjectID uuid.UUID, kind string) (string, time.Time, error)
	ValidateToken(tokenString, wantKind string) (*Claims, error)
}

// JWTService implements TokenService with HS256-signed tokens.
type JWTService struct {
	cfg    *config.Config
	logger *zap.Logger
}

var _ TokenService = (*JWTService)(nil)

// NewJWTService creates a new JWT token service.
func NewJWTService(cfg *config.Config, logger *zap.Logger) *JWTService {
	return &JWTService{cfg: cfg, logger: logger}
}

// GenerateToken signs a token for the given principal. Kind distinguishes
// user tokens from company tokens; a token never crosses over.
func (s *JWTService) GenerateToken(subjectID uuid.UUID, kind string) (string, time.Time, error) {
	if kind != common.KindUser && kind != common.KindCompany {
		return "", time.Time{}, fmt.Errorf("unknown principal kind %q", kind)
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := &Claims{
		SubjectID: subjectID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   subjectID.String(),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.RandomSecret))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign access token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken parses and verifies a token and checks that it was issued for
// the wanted principal kind.
func (s *JWTService) ValidateToken(tokenString, wantKind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.RandomSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Kind != wantKind {
		return nil, fmt.Errorf("token issued for %q, not %q", claims.Kind, wantKind)
	}
	if claims.SubjectID == uuid.Nil {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
