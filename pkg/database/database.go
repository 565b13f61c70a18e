package database

import (
	"fmt"

	"collection_manager/pkg/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const MemoryDSN = ":memory:"

// Six bound parameters per item row keeps a batch well under sqlite's
// variable limit.
const createBatchSize = 500

// InitCollectionsDB opens the working store for both collections. The store
// is always in memory, so nothing outlives the process.
func InitCollectionsDB(log *zap.Logger) (*gorm.DB, error) {
	log.Debug("Opening collections database", zap.String("dsn", MemoryDSN))
	return initDB(MemoryDSN, &models.Item{})
}

func initDB(dsn string, models ...interface{}) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Silent),
		CreateBatchSize: createBatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// every sqlite :memory: connection is its own database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return db, nil
}
