package config

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

var (
	pgPool *pgxpool.Pool
	gormDB *gorm.DB
)

func GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_DATABASE"))
}

// BootDB opens the pgx pool used by the gateway repositories.
func BootDB(ctx context.Context) (*pgxpool.Pool, error) {
	if pgPool != nil {
		return pgPool, nil
	}

	pool, err := pgxpool.New(ctx, GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgPool = pool
	return pgPool, nil
}

// BootGormDB opens the gorm handle used for auth lookups and runs schema
// bootstrap for the tables this service owns.
func BootGormDB() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	db, err := gorm.Open(postgres.Open(GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	gormDB = db
	return gormDB, nil
}

func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Student{},
		&domain.Parent{},
		&domain.Notification{},
		&domain.NotificationRecipient{},
		&domain.Message{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
