package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "compliance-gateway")
	tok, err := svc.GenerateAccessToken(domain.Principal{UserID: 3, InstitutionID: 7, Role: "operator"}, time.Hour)
	require.NoError(t, err)

	p, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, &domain.Principal{UserID: 3, InstitutionID: 7, Role: "operator"}, p)
	assert.False(t, p.IsSuperAdmin())
}

func TestJWTService_SuperAdmin(t *testing.T) {
	svc := NewJWTService("secret", "")
	tok, err := svc.GenerateAccessToken(domain.Principal{UserID: 1, Role: domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	p, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.True(t, p.IsSuperAdmin())
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "compliance-gateway")

	expired, err := svc.GenerateAccessToken(domain.Principal{UserID: 3, InstitutionID: 7}, -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewJWTService("other", "compliance-gateway").GenerateAccessToken(domain.Principal{UserID: 3}, time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewJWTService("secret", "someone-else").GenerateAccessToken(domain.Principal{UserID: 3}, time.Hour)
	require.NoError(t, err)
	noUser, err := svc.GenerateAccessToken(domain.Principal{InstitutionID: 7}, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 3}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no user":      noUser,
		"alg none":     none,
		"garbage":      "not-a-token",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(tok)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
