package redis

import (
	"fmt"
	"strings"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Pending profile key builders

func (kb *KeyBuilder) KeyPendingProfile(email string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPendingProfile, strings.ToLower(email)))
}

func (kb *KeyBuilder) KeyPendingEmail(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPendingEmail, userID))
}

// Cache key builders

func (kb *KeyBuilder) KeyTrendingOccupations(limit int) string {
	return kb.BuildKey(fmt.Sprintf(KeyTrendingOccupations, limit))
}

func (kb *KeyBuilder) KeyPlatformStats() string {
	return kb.BuildKey(KeyPlatformStats)
}

func (kb *KeyBuilder) KeyRoleResolution(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRoleResolution, userID))
}
