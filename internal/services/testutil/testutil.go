// Package testutil provides shared test utilities for integration tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"minipaint/internal/database/models"
	"minipaint/internal/database/repositories"
)

// TestDB holds the test database and repositories.
type TestDB struct {
	DB          *gorm.DB
	BatchRepo   *repositories.BatchRepository
	GuideRepo   *repositories.GuideRepository
	PaintRepo   *repositories.PaintRepository
	UserRepo    *repositories.UserRepository
	AccessRepo  *repositories.AccessRepository
	SettingRepo *repositories.UserSettingRepository
}

// SetupTestDB creates an in-memory SQLite database for testing.
// It returns a TestDB with all repositories initialized and a cleanup function.
func SetupTestDB(t *testing.T) (*TestDB, func()) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	testDB := &TestDB{
		DB:          db,
		BatchRepo:   repositories.NewBatchRepository(db),
		GuideRepo:   repositories.NewGuideRepository(db),
		PaintRepo:   repositories.NewPaintRepository(db),
		UserRepo:    repositories.NewUserRepository(db),
		AccessRepo:  repositories.NewAccessRepository(db),
		SettingRepo: repositories.NewUserSettingRepository(db),
	}

	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	return testDB, cleanup
}

// UniqueName generates a unique name for testing so tests don't conflict.
func UniqueName(prefix string) string {
	return prefix + "-" + cuid.New()[:8]
}
