package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTestDSN(t *testing.T) {
	for driver, target := range databases {
		t.Run(driver, func(t *testing.T) {
			t.Setenv(target.envVar, "")
			assert.Equal(t, target.defaultDSN, GetTestDSN(driver))

			t.Setenv(target.envVar, "override")
			assert.Equal(t, "override", GetTestDSN(driver))
		})
	}
}

func TestFindMigrations(t *testing.T) {
	for _, schemaDir := range []string{"postgresql", "mysql"} {
		t.Run(schemaDir, func(t *testing.T) {
			dir, err := findMigrations(schemaDir)
			require.NoError(t, err)
			assert.Equal(t, schemaDir, filepath.Base(dir))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.NotEmpty(t, entries)
		})
	}

	t.Run("FromNestedDirectory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		nested := filepath.Join(wd, "testdata", "nested")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		t.Cleanup(func() { _ = os.RemoveAll(filepath.Join(wd, "testdata")) })
		t.Chdir(nested)

		dir, err := findMigrations("postgresql")
		require.NoError(t, err)
		assert.Equal(t, "postgresql", filepath.Base(dir))
	})

	t.Run("Missing", func(t *testing.T) {
		dir, err := findMigrations("sqlite")
		assert.Error(t, err)
		assert.Empty(t, dir)
	})
}

func TestTeardownDB_Nil(t *testing.T) {
	assert.NotPanics(t, func() { TeardownDB(t, nil) })
}

func TestSetupDB(t *testing.T) {
	for driver, target := range databases {
		t.Run(driver, func(t *testing.T) {
			SkipIfNoDB(t, driver)

			db := SetupDB(t, driver)
			insertAccount(t, db, target)
			assert.Equal(t, 1, countRows(t, db, "accounts"))

			CleanupDB(t, driver, db)
			assert.Equal(t, 0, countRows(t, db, "accounts"))
			assert.Equal(t, 0, countRows(t, db, "transaction_records"))

			TeardownDB(t, db)
			assert.Error(t, db.Ping())
		})
	}
}

func insertAccount(t *testing.T, db *sql.DB, target testDatabase) {
	t.Helper()
	address := make([]byte, 32)
	address[31] = 7
	query := fmt.Sprintf(
		"INSERT INTO accounts (address, owner, lamports, data) VALUES (%s, %s, %s, %s)",
		target.placeholder(1), target.placeholder(2), target.placeholder(3), target.placeholder(4),
	)
	_, err := db.Exec(query, address, make([]byte, 32), 10, []byte{})
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}
