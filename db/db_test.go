package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/habedi/photofeed/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitDB sets up a temporary directory, initializes the database and
// checks that the file and its parent directory are created.
func TestInitDB(t *testing.T) {
	tempDir := t.TempDir()
	db.Path = filepath.Join(tempDir, ".photofeed", "photofeed.db")
	err := db.InitDB()
	require.NoError(t, err, "InitDB should not return an error")

	info, statErr := os.Stat(filepath.Dir(db.Path))
	require.NoError(t, statErr)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	_, statErr = os.Stat(db.Path)
	assert.NoError(t, statErr, "Database file should exist")
	assert.NotNil(t, db.GetDB())
	assert.True(t, db.GetDB().Migrator().HasTable(&db.Secret{}))

	assert.NoError(t, db.CloseDB(), "CloseDB should not return an error")
}

func TestCloseDB(t *testing.T) {
	err := db.CloseDB()
	assert.NoError(t, err, "CloseDB should not return an error")
}

func TestOpenInMemory_IsPrivate(t *testing.T) {
	first, err := db.OpenInMemory()
	require.NoError(t, err)
	second, err := db.OpenInMemory()
	require.NoError(t, err)

	require.NoError(t, first.Create(&db.Secret{Name: "k", Value: "v"}).Error)

	var count int64
	require.NoError(t, second.Model(&db.Secret{}).Count(&count).Error)
	assert.Zero(t, count)
}
