package dbcore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/redasGoluenko/Errando/cmd/flags"
	"github.com/redasGoluenko/Errando/database/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	instance *gorm.DB
	once     sync.Once
)

// InitDatabase prepares the configured database.
// SQLite: true if the database file already existed, false if it was just created.
// MySQL / PostgreSQL: always true.
func InitDatabase() bool {
	switch flags.DatabaseType {
	case "sqlite", "":
		if _, err := os.Stat(flags.DatabaseFile); os.IsNotExist(err) {
			log.Printf("SQLite database file %q does not exist, creating...", flags.DatabaseFile)
			dbDir := filepath.Dir(flags.DatabaseFile)
			if dbDir != "" {
				if err := os.MkdirAll(dbDir, 0755); err != nil {
					log.Fatalf("Failed to create database file directory %q: %v", dbDir, err)
				}
			}
			file, err := os.Create(flags.DatabaseFile)
			if err != nil {
				log.Fatalf("Failed to create SQLite database file %q: %v", flags.DatabaseFile, err)
			}
			if err := file.Close(); err != nil {
				log.Fatalf("Failed to close database file %q: %v", flags.DatabaseFile, err)
			}
			return false
		} else if err != nil {
			log.Fatalf("Failed to check database file %q: %v", flags.DatabaseFile, err)
		}
		return true
	case "mysql", "postgres":
		log.Printf("Using %s database: %s@%s:%s/%s", flags.DatabaseType,
			flags.DatabaseUser, flags.DatabaseHost, flags.DatabasePort, flags.DatabaseName)
		return true
	default:
		log.Fatalf("Unsupported database type: %s", flags.DatabaseType)
		return false
	}
}

func dialector() (gorm.Dialector, error) {
	switch flags.DatabaseType {
	case "sqlite", "":
		return sqlite.Open(flags.DatabaseFile + "?_foreign_keys=on"), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&collation=utf8mb4_unicode_ci&parseTime=True&loc=UTC",
			flags.DatabaseUser,
			flags.DatabasePass,
			flags.DatabaseHost,
			flags.DatabasePort,
			flags.DatabaseName)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			flags.DatabaseHost,
			flags.DatabasePort,
			flags.DatabaseUser,
			flags.DatabasePass,
			flags.DatabaseName)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", flags.DatabaseType)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
}

// GetDBInstance returns the shared connection, opening and migrating it on
// first use. Connection or migration failures are fatal.
func GetDBInstance() *gorm.DB {
	once.Do(func() {
		d, err := dialector()
		if err != nil {
			log.Fatalln(err)
		}
		instance, err = gorm.Open(d, gormConfig())
		if err != nil {
			log.Fatalf("Failed to connect to %s database: %v", d.Name(), err)
		}
		log.Printf("Using %s database", d.Name())

		if err := Migrate(instance); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
	})
	return instance
}

// SetDBInstance replaces the shared connection. GetDBInstance will not open
// its own connection afterwards.
func SetDBInstance(db *gorm.DB) {
	once.Do(func() {})
	instance = db
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskItem{},
		&models.StatusLog{},
		&models.Config{},
		&models.Log{},
	)
	if err != nil {
		return err
	}
	return db.AutoMigrate(&models.Session{})
}

// OpenInMemory opens a private, migrated in-memory SQLite database with
// foreign keys enforced. Every call returns a new, empty database.
func OpenInMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// each connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
