package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// Db is the database connection opened by InitDB
	Db *gorm.DB
	// Path is the location of the SQLite database file
	Path = filepath.Join(os.Getenv("HOME"), ".photofeed", "photofeed.db")
)

// InitDB creates the database directory, opens the connection, migrates the
// tables and configures the GORM logger.
func InitDB() error {
	if err := createDBDirectory(); err != nil {
		return err
	}

	if err := openDatabase(); err != nil {
		return err
	}

	if err := migrateTables(Db); err != nil {
		return err
	}

	configureLogger(Db)

	log.Info().Str("path", Path).Msg("Database initialized successfully")
	return nil
}

// GetDB returns the connection opened by InitDB.
func GetDB() *gorm.DB { return Db }

// OpenInMemory opens a private in-memory database with migrated tables.
func OpenInMemory() (*gorm.DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise see its own empty database.
	sqlDB.SetMaxOpenConns(1)
	if err := migrateTables(gormDB); err != nil {
		return nil, err
	}
	configureLogger(gormDB)
	return gormDB, nil
}

func createDBDirectory() error {
	dir := filepath.Dir(Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.Error().Err(err).Msg("Failed to create database directory")
			return err
		}
	}
	return nil
}

func openDatabase() error {
	var err error
	Db, err = gorm.Open(sqlite.Open(Path), &gorm.Config{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return err
	}
	return nil
}

func migrateTables(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(&Secret{}); err != nil {
		log.Error().Err(err).Msg("Failed to auto-migrate database")
		return err
	}
	return nil
}

// configureLogger keeps GORM quiet unless zerolog is enabled.
func configureLogger(gormDB *gorm.DB) {
	if zerolog.GlobalLevel() == zerolog.Disabled {
		gormDB.Logger = gormDB.Logger.LogMode(logger.Silent)
	} else {
		gormDB.Logger = gormDB.Logger.LogMode(logger.Info)
	}
}

// CloseDB closes the database connection.
func CloseDB() error {
	if Db == nil {
		return nil
	}
	sqlDB, err := Db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get raw database connection")
		return err
	}
	return sqlDB.Close()
}
