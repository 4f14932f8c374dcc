// Package dbtest opens an isolated in-memory SQLite database with the
// service schema, for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
)

func New(t *testing.T) *database.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := g.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = g.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.Request{},
		&models.ServicePrice{},
		&models.ExtensionPrice{},
		&models.AdminNotification{},
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return database.New(g)
}

// Gorm exposes the raw handle for seeding fixtures.
func Gorm(t *testing.T, db *database.DB) *gorm.DB {
	t.Helper()
	return db.Conn(t.Context())
}
