package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/group-study-api/internal/config"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/utils"
)

func TestConnectAndMigrate_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: "file::memory:", GinMode: "release"}

	db, err := Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	// second run must skip existing indexes
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.ClassMembership{}))
	assert.True(t, db.Migrator().HasIndex("tasks", "idx_tasks_status_due_date"))
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: "file::memory:", GinMode: "release"}
	db, err := Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}))

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, db.Create(&models.User{Email: email, Username: email}).Error)
	}

	var page []models.User
	err = db.Order("email").Scopes(Paginate(utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})).Find(&page).Error
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c@example.com", page[0].Email)
}
