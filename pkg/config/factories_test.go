package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateObjectStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		store, err := CreateObjectStore(ctx, &ObjectStoreConfig{Type: "memory"}, nil)
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := CreateObjectStore(ctx, &ObjectStoreConfig{Type: "tape"}, nil)
		require.ErrorContains(t, err, "unknown object store type")
	})

	t.Run("S3RequiresBucket", func(t *testing.T) {
		_, err := CreateObjectStore(ctx, &ObjectStoreConfig{
			Type: "s3",
			S3:   map[string]any{"region": "eu-west-1"},
		}, nil)
		require.ErrorContains(t, err, "bucket is required")
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := CreateObjectStore(cancelled, &ObjectStoreConfig{Type: "memory"}, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCreateDocumentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		store, err := CreateDocumentStore(ctx, &DocumentStoreConfig{Type: "memory"})
		require.NoError(t, err)
		require.NotNil(t, store)
		require.NoError(t, store.Close())
	})

	t.Run("BadgerInMemory", func(t *testing.T) {
		store, err := CreateDocumentStore(ctx, &DocumentStoreConfig{
			Type:   "badger",
			Badger: map[string]any{"in_memory": true},
		})
		require.NoError(t, err)
		require.NoError(t, store.Close())
	})

	t.Run("BadgerRequiresPath", func(t *testing.T) {
		_, err := CreateDocumentStore(ctx, &DocumentStoreConfig{
			Type:   "badger",
			Badger: map[string]any{},
		})
		require.ErrorContains(t, err, "db_path is required")
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := CreateDocumentStore(ctx, &DocumentStoreConfig{Type: "mongo"})
		require.ErrorContains(t, err, "unknown document store type")
	})
}

func TestCreateIdentityProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		provider, err := CreateIdentityProvider(ctx, &IdentityConfig{Type: "memory"})
		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := CreateIdentityProvider(ctx, &IdentityConfig{Type: "ldap"})
		require.ErrorContains(t, err, "unknown identity provider type")
	})
}
