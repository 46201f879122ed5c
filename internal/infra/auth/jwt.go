// Package auth resolves bearer tokens into analysis principals.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

// Claims yang diharapkan dari token akses
type Claims struct {
	UserID        int64  `json:"user_id"`
	InstitutionID int64  `json:"institution_id"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles token validation (HS256)
type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey, issuer string) *JWTService {
	return &JWTService{signingKey: []byte(signingKey), issuer: issuer}
}

// GenerateAccessToken dipakai command `token` dan test
func (s *JWTService) GenerateAccessToken(p domain.Principal, expiresIn time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:        p.UserID,
		InstitutionID: p.InstitutionID,
		Role:          p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return t.SignedString(s.signingKey)
}

// ValidateToken returns the principal carried by a valid token.
func (s *JWTService) ValidateToken(tokenString string) (*domain.Principal, error) {
	var opts []jwt.ParserOption
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.Unauthorized("token has expired")
		}
		return nil, domain.Unauthorized("invalid token")
	}
	if !parsed.Valid {
		return nil, domain.Unauthorized("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID <= 0 {
		return nil, domain.Unauthorized("invalid token claims")
	}
	return &domain.Principal{
		UserID:        claims.UserID,
		InstitutionID: claims.InstitutionID,
		Role:          claims.Role,
	}, nil
}
