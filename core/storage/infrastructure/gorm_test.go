package infrastructure

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AzielCF/az-cube/core/config"
	"github.com/AzielCF/az-cube/core/database"
	"github.com/AzielCF/az-cube/core/storage/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGormStorage(t *testing.T) *StorageGormRepository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Name: filepath.Join(t.TempDir(), "storage.db")}, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repo := NewStorageGormRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))
	return repo
}

func TestStorageImplementations(t *testing.T) {
	impls := map[string]func(t *testing.T) domain.IStorage{
		"gorm":   func(t *testing.T) domain.IStorage { return newTestGormStorage(t) },
		"memory": func(t *testing.T) domain.IStorage { return NewMemoryStorage() },
	}

	for name, build := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := build(t)

			_, ok, err := s.Get(ctx, domain.KeySettings)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, domain.KeySettings, `{"sound":true}`))
			require.NoError(t, s.Set(ctx, domain.KeySettings, `{"sound":false}`))

			v, ok, err := s.Get(ctx, domain.KeySettings)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"sound":false}`, v)

			require.NoError(t, s.Delete(ctx, domain.KeySettings))
			_, ok, err = s.Get(ctx, domain.KeySettings)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
