package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/testutil"
	"github.com/Skotchmaster/admin_dashboard/pkg/hash"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return &GormRepo{DB: testutil.InitTestDB(t)}
}

func TestUserLookups(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	pw, err := hash.HashPassword("secret1")
	require.NoError(t, err)
	created, err := r.CreateUserIfNotExists(ctx, &models.User{
		UserName:     "operator",
		Email:        "Operator@Example.com",
		PasswordHash: pw,
	}, models.RoleAdmin, "Support")
	require.NoError(t, err)
	require.True(t, created)

	u, err := r.FindByEmail(ctx, "operator@example.com")
	require.NoError(t, err)
	assert.Equal(t, "operator", u.UserName)
	assert.True(t, r.VerifyPassword(u, "secret1"))
	assert.False(t, r.VerifyPassword(u, "secret2"))

	u, err = r.FindByName(ctx, "operator")
	require.NoError(t, err)
	roles, err := r.Roles(ctx, u)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleAdmin, "Support"}, roles)

	_, err = r.FindByName(ctx, "Operator@Example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err = r.CreateUserIfNotExists(ctx, &models.User{UserName: "x", Email: "operator@example.com", PasswordHash: pw})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSave_PersistsRefreshSlotAndKeepsRoles(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{UserName: "a", Email: "a@example.com", PasswordHash: "h"}
	_, err := r.CreateUserIfNotExists(ctx, u, models.RoleAdmin)
	require.NoError(t, err)

	token := "opaque"
	exp := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Second)
	u.RefreshToken = &token
	u.RefreshTokenExpiry = &exp
	u.Roles = nil
	require.NoError(t, r.Save(ctx, u))

	got, err := r.FindByName(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "opaque", *got.RefreshToken)
	require.NotNil(t, got.RefreshTokenExpiry)
	assert.WithinDuration(t, exp, *got.RefreshTokenExpiry, time.Second)

	roles, err := r.Roles(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, roles)
}

func TestClientsCRUD(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	c := &models.Client{Name: "John Doe", Email: "john@example.com", Balance: 1000}
	require.NoError(t, r.CreateClient(ctx, c))
	require.NotZero(t, c.ID)

	taken, err := r.ClientFieldTaken(ctx, "email", "john@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = r.ClientFieldTaken(ctx, "email", "john@example.com", c.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	found, err := r.SearchClients(ctx, "JOHN", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	c.Balance = 1200
	require.NoError(t, r.UpdateClient(ctx, c))
	got, err := r.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, got.Balance)

	require.NoError(t, r.DeleteClient(ctx, c.ID))
	_, err = r.GetClient(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteClient(ctx, c.ID), ErrNotFound)
}

func TestSeed_IsIdempotent(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	admin := SeedAdmin{Email: "admin@mirra.dev", Password: "admin123"}

	require.NoError(t, r.Seed(ctx, admin))
	require.NoError(t, r.Seed(ctx, admin))

	u, err := r.FindByEmail(ctx, admin.Email)
	require.NoError(t, err)
	assert.True(t, r.VerifyPassword(u, admin.Password))
	roles, err := r.Roles(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, roles)

	tags, err := r.GetTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3)

	clients, err := r.GetClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Len(t, clients[0].Tags, 2)

	payments, err := r.GetRecentPayments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, payments, 5)
	require.NotNil(t, payments[0].Client)
	for i := 1; i < len(payments); i++ {
		assert.False(t, payments[i].CreatedAt.After(payments[i-1].CreatedAt))
	}

	rate, err := r.GetCurrentRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, rate.Value)
}

func TestCurrentRate_LatestWins(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetCurrentRate(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.CreateRate(ctx, &models.Rate{Value: 10, UpdatedAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, r.CreateRate(ctx, &models.Rate{Value: 12.5}))

	rate, err := r.GetCurrentRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.5, rate.Value)
}
