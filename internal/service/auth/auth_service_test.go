package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillbridge-api/pkg/logger"
)

const testSecret = "super-secret-signing-key"

func newTestService(t *testing.T, secret string) *Service {
	log, err := logger.New("error", "test")
	require.NoError(t, err)
	return &Service{jwtSecret: secret, logger: log}
}

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(t, testSecret)
	ctx := context.Background()

	validClaims := jwt.MapClaims{
		"sub":   "user-123",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{
			"full_name": "Test User",
			"role":      "admin",
		},
	}

	t.Run("valid token", func(t *testing.T) {
		user, err := svc.ValidateToken(ctx, mintToken(t, testSecret, validClaims))
		require.NoError(t, err)
		assert.Equal(t, "user-123", user.ID)
		assert.Equal(t, "user@example.com", user.Email)
		assert.Equal(t, "admin", user.MetaString("role"))
		assert.Equal(t, "Test User", user.MetaString("full_name"))
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, mintToken(t, "wrong-secret", validClaims))
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.MapClaims{
			"sub": "user-123",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}
		_, err := svc.ValidateToken(ctx, mintToken(t, testSecret, expired))
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		noSub := jwt.MapClaims{
			"email": "user@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		}
		_, err := svc.ValidateToken(ctx, mintToken(t, testSecret, noSub))
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.Error(t, err)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		unconfigured := newTestService(t, "")
		_, err := unconfigured.ValidateToken(ctx, mintToken(t, testSecret, validClaims))
		assert.Error(t, err)
	})
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	svc := newTestService(t, testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), unsigned)
	assert.Error(t, err, "alg=none must never validate")
}
