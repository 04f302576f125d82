package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// InitPostgres opens the database, tunes the pool, and migrates the chat
// schema. The partial unique indexes backing idempotent join are created
// here because AutoMigrate cannot express index predicates.
func InitPostgres(dsn string, maxIdleConns, maxOpenConns int) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	err = db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Message{},
		&model.MessageReceipt{},
		&model.ChatMember{},
		&model.ShareLink{},
		&model.JoinRequest{},
		&model.LastRead{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// One active membership per identity per project; the two predicates
	// separate registered users from guests.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_member_user
		 ON project_chat_members (project_id, user_id)
		 WHERE is_active AND user_id <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_member_guest
		 ON project_chat_members (project_id, guest_name)
		 WHERE is_active AND user_id = ''`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return db, nil
}

// BuildDSN builds a PostgreSQL DSN from config fields
func BuildDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}
