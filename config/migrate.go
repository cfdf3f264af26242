package config

import (
	"github.com/minnehack2026-blugolds/backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func schema() []interface{} {
	return []interface{}{
		&models.User{},
		&models.University{},
		&models.Post{},
		&models.Conversation{},
		&models.Message{},
		&models.ConversationRead{},
		&models.Transaction{},
		&models.Rating{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(schema()...); err != nil {
		log.Error("failed to migrate database schema", zap.Error(err))
		return err
	}

	log.Info("database migrations completed")

	// Universities back the location endpoints, so they are seeded on every boot
	return SeedUniversities(db, log)
}

func ResetAndMigrate(db *gorm.DB, log *zap.Logger) error {
	tables := schema()

	// Reverse order so dependents go first
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			log.Error("failed to drop table", zap.Error(err))
			return err
		}
	}

	log.Info("all tables dropped")

	if err := Migrate(db, log); err != nil {
		return err
	}

	if err := SeedUsers(db, log); err != nil {
		return err
	}

	log.Info("database reset and migration completed")
	return nil
}
