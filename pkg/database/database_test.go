package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestShouldAutoMigrate(t *testing.T) {
	assert.True(t, ShouldAutoMigrate("debug", false))
	assert.True(t, ShouldAutoMigrate("debug", true))
	assert.False(t, ShouldAutoMigrate("release", false))
	assert.True(t, ShouldAutoMigrate("release", true))
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "learning_paths", "resources", "progresses"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
