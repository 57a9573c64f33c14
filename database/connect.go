package database

import (
	"fmt"
	"strconv"

	"restaurant_manager/config"
	"restaurant_manager/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database and runs migrations. The handle is returned to
// the caller and passed down explicitly; closing it is the caller's job via
// Close.
func Connect() (*gorm.DB, error) {
	port, err := strconv.ParseUint(config.ConfigOr("DB_PORT", "5432"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("parse DB_PORT: %w", err)
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Config("DB_HOST"), port, config.Config("DB_USER"),
		config.Config("DB_PASSWORD"), config.Config("DB_NAME"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema. Shared with the test setup, which runs it
// against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Address{},
		&model.User{},
		&model.Restaurant{},
		&model.Table{},
		&model.Menu{},
		&model.Category{},
		&model.Dish{},
		&model.Ingredient{},
		&model.Order{},
		&model.OrderItem{},
		&model.Promotion{},
		&model.LoyaltyCard{},
		&model.LoyaltyTransaction{},
		&model.Payment{},
		&model.Reservation{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
