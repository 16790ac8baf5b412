package database

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("Expected migration to succeed, got: %v", err)
	}

	for _, table := range []string{"users", "refresh_tokens", "tasks"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %q to exist after migration", table)
		}
	}

	if !db.Migrator().HasIndex("tasks", "idx_tasks_user_created") {
		t.Error("Expected composite index idx_tasks_user_created on tasks")
	}
}
