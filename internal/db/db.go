package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	models "storefront/internal/models"
)

// Open открывает соединение с БД по драйверу и DSN из конфигурации
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// sqlite в памяти живёт ровно пока жив коннект
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return db, nil
}

// Migrate создаёт/обновляет таблицы
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return backfillSearchText(db)
}

// backfillSearchText заполняет search_text у строк, созданных до появления колонки
func backfillSearchText(db *gorm.DB) error {
	var stale []models.Product
	if err := db.Where("search_text = ?", "").Find(&stale).Error; err != nil {
		return fmt.Errorf("db: find products without search text: %w", err)
	}
	for _, p := range stale {
		err := db.Model(&models.Product{}).Where("id = ?", p.ID).UpdateColumn("search_text", p.FoldedText()).Error
		if err != nil {
			return fmt.Errorf("db: backfill search text %d: %w", p.ID, err)
		}
	}
	return nil
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("db: DB_DSN is empty (check your .env)")
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		if dsn == "" {
			dsn = "storefront.db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("db: unsupported DB_DRIVER %q (postgres, sqlite)", driver)
	}
}
