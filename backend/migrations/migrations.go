// Package migrations holds the versioned schema migrations. New migrations
// are appended to the list; gormigrate tracks which ones have run.
package migrations

import (
	"wellnessbridge/backend/schema"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func list() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202505021400_initial_tables",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(schema.Tables()...)
			},
			Rollback: func(txn *gorm.DB) error {
				for _, table := range schema.Tables() {
					if err := txn.Migrator().DropTable(table); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			// Passwords were added to health workers after the initial
			// rollout; AutoMigrate adds the column on older databases.
			ID: "202505261759_add_worker_password",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(&schema.HealthWorker{})
			},
			Rollback: func(txn *gorm.DB) error {
				return txn.Migrator().DropColumn(&schema.HealthWorker{}, "password")
			},
		},
	}
}

func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, list()).Migrate()
}
