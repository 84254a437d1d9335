package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lughati/lughati/internal/config"
)

func TestBuildLibsqlDSN(t *testing.T) {
	t.Run("MemoryPassesThrough", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: ":memory:"})
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})

	t.Run("FileSchemePassesThrough", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: "file:/tmp/usage.db"})
		require.NoError(t, err)
		require.Equal(t, "file:/tmp/usage.db", dsn)
	})

	t.Run("PlainPathGetsFilePrefix", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "usage.db")
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: path})
		require.NoError(t, err)
		require.Equal(t, "file:"+path, dsn)
	})

	t.Run("EmptyPathRejected", func(t *testing.T) {
		_, err := buildLibsqlDSN(config.StoreConfig{Path: "  "})
		require.Error(t, err)
	})
}
