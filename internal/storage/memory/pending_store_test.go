package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialid/internal/domain"
	"socialid/internal/storage/memory"
)

func TestPendingLoginStore_RoundTrip(t *testing.T) {
	store := memory.NewPendingLoginStore(time.Minute)
	ctx := context.Background()
	login := &domain.SocialLogin{
		Account: domain.SocialAccount{Provider: "google", UID: "g-1"},
		Email:   "jane@example.com",
	}

	key, err := store.Save(ctx, login)
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	login.Email = "changed@example.com"
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "g-1", got.Account.UID)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrPendingLoginNotFound)
}

func TestPendingLoginStore_Expires(t *testing.T) {
	store := memory.NewPendingLoginStore(10 * time.Millisecond)
	ctx := context.Background()

	key, err := store.Save(ctx, &domain.SocialLogin{Email: "jane@example.com"})
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrPendingLoginNotFound)
}

func TestPendingLoginStore_DistinctKeys(t *testing.T) {
	store := memory.NewPendingLoginStore(time.Minute)
	ctx := context.Background()

	k1, err := store.Save(ctx, &domain.SocialLogin{})
	require.NoError(t, err)
	k2, err := store.Save(ctx, &domain.SocialLogin{})
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestPendingLoginStore_IsolatesNestedState(t *testing.T) {
	store := memory.NewPendingLoginStore(time.Minute)
	ctx := context.Background()
	login := &domain.SocialLogin{
		Account: domain.SocialAccount{Provider: "google", ExtraData: []byte(`{"sub":"g-1"}`)},
		State:   map[string]any{"process": "login", "next": map[string]any{"url": "/home"}},
	}

	key, err := store.Save(ctx, login)
	require.NoError(t, err)

	login.State["process"] = "connect"
	login.State["next"].(map[string]any)["url"] = "/evil"
	login.Account.ExtraData[2] = 'X'

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessLogin, got.Process())
	assert.Equal(t, "/home", got.State["next"].(map[string]any)["url"])
	assert.JSONEq(t, `{"sub":"g-1"}`, string(got.Account.ExtraData))

	got.State["process"] = "connect"
	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessLogin, again.Process())
}
