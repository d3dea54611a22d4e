package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/webkit/internal/client/storage"
)

func TestStorage_Tokens(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestAuthStorage(t)
	defer cleanup()

	site := "example.com"
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	newer := &storage.IssuedToken{
		ID: "t-2", Token: "bbb", Username: "alice", CreatedAt: base.Add(time.Minute),
	}
	older := &storage.IssuedToken{
		ID: "t-1", Token: "aaa", Username: "alice", Note: "ci", LocalSite: &site, CreatedAt: base,
	}
	foreign := &storage.IssuedToken{ID: "t-3", Token: "ccc", Username: "bob", CreatedAt: base}

	for _, tok := range []*storage.IssuedToken{newer, older, foreign} {
		require.NoError(t, store.SaveToken(ctx, tok))
	}

	got, err := store.GetToken(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "aaa", got.Token)
	require.NotNil(t, got.LocalSite)
	assert.Equal(t, site, *got.LocalSite)
	assert.True(t, base.Equal(got.CreatedAt))

	list, err := store.ListTokens(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t-1", list[0].ID)
	assert.Equal(t, "t-2", list[1].ID)

	empty, err := store.ListTokens(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, store.DeleteToken(ctx, "t-1"))
	_, err = store.GetToken(ctx, "t-1")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	assert.ErrorIs(t, store.DeleteToken(ctx, "t-1"), storage.ErrTokenNotFound)
}

func TestStorage_SaveToken_EmptyID(t *testing.T) {
	store, cleanup := createTestAuthStorage(t)
	defer cleanup()

	err := store.SaveToken(context.Background(), &storage.IssuedToken{Token: "aaa"})
	assert.Error(t, err)
}

func TestStorage_Tokens_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestAuthStorage(t)
	defer cleanup()

	require.NoError(t, store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketTokens)
	}))

	_, err := store.ListTokens(ctx, "alice")
	assert.ErrorContains(t, err, "tokens bucket not found")

	_, err = store.GetToken(ctx, "t-1")
	assert.ErrorContains(t, err, "tokens bucket not found")

	err = store.SaveToken(ctx, &storage.IssuedToken{ID: "t-1"})
	assert.ErrorContains(t, err, "tokens bucket not found")

	err = store.DeleteToken(ctx, "t-1")
	assert.ErrorContains(t, err, "tokens bucket not found")
}
