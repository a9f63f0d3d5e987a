package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/redis"
)

func setupAdminService(t *testing.T, repo *erroringProfileRepo) (*AdminService, *redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	admin := NewAdminService(nil, repo, nil, nil, nil, client, client.KeyBuilder, newTestLogger(t))
	return admin, client, mr
}

func TestAdminSetRoleInvalidatesCachedResolution(t *testing.T) {
	ctx := context.Background()
	repo := &erroringProfileRepo{profile: &domain.Profile{ID: "user-1", Role: domain.RoleAdmin}}
	admin, client, mr := setupAdminService(t, repo)

	key := client.KeyBuilder.KeyRoleResolution("user-1")
	require.NoError(t, client.Set(ctx, key, `{"is_admin":true}`, redis.TTLRoleResolution))

	require.NoError(t, admin.SetRole(ctx, "actor", "user-1", "user"))

	// The demotion must bite on the next request, not after the TTL.
	assert.False(t, mr.Exists(key), "cached role resolution must be invalidated")
}

func TestAdminSetRoleValidation(t *testing.T) {
	ctx := context.Background()
	repo := &erroringProfileRepo{profile: &domain.Profile{ID: "user-1", Role: "user"}}
	admin, _, _ := setupAdminService(t, repo)

	err := admin.SetRole(ctx, "actor", "user-1", "superuser")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	// Admins cannot demote themselves.
	err = admin.SetRole(ctx, "user-1", "user-1", "user")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAdminDeleteUserRejectsSelf(t *testing.T) {
	repo := &erroringProfileRepo{profile: &domain.Profile{ID: "user-1", Role: "user"}}
	admin, _, _ := setupAdminService(t, repo)

	err := admin.DeleteUser(context.Background(), "user-1", "user-1")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
