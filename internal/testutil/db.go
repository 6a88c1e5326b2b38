// Package testutil opens migrated in-memory databases for tests.
package testutil

import (
	"testing"

	"anoa.com/catalog/internal/bootstrap"
	"anoa.com/catalog/pkg/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const SeedPassword = "SampleEx4mF0rT3st!ñ"

// NewDB returns an empty, migrated sqlite database.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, bootstrap.Migrate(db.Gorm))
	return db
}

// NewSeededDB returns a migrated database holding the sample users and catalog.
func NewSeededDB(t testing.TB) *database.DB {
	t.Helper()

	db := NewDB(t)
	require.NoError(t, bootstrap.SeedUsers(db.Gorm, SeedPassword, zap.NewNop()))
	require.NoError(t, bootstrap.SeedCatalog(db.Gorm, zap.NewNop()))
	return db
}
