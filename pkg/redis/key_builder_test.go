package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyBuilderPrefix(t *testing.T) {
	tests := []struct {
		environment string
		wantPrefix  string
	}{
		{"development", "staging"},
		{"staging", "staging"},
		{"test", "staging"},
		{"production", "prod"},
		{"", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			assert.Equal(t, tt.wantPrefix, kb.GetPrefix())
		})
	}
}

func TestKeyPendingProfileLowercasesEmail(t *testing.T) {
	kb := NewKeyBuilder("test")

	key := kb.KeyPendingProfile("Jane.Doe@Example.COM")
	assert.Equal(t, "staging:profile:pending:jane.doe@example.com", key)
}

func TestCacheKeys(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "prod:occupations:trending:6", kb.KeyTrendingOccupations(6))
	assert.Equal(t, "prod:stats:platform", kb.KeyPlatformStats())
	assert.Equal(t, "prod:role:resolution:user-1", kb.KeyRoleResolution("user-1"))
	assert.Equal(t, "prod:profile:pending_email:user-1", kb.KeyPendingEmail("user-1"))
}
