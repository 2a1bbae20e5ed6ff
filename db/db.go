package db

import (
	"Tcp_postgres_redis_library_system/config"
	"Tcp_postgres_redis_library_system/models"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func ConnectDB(cfg config.Config) *gorm.DB {
	conn, err := Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

// Open dials the configured engine. Postgres is the production target;
// sqlite serves development and tests, with _txlock=immediate so write
// transactions serialize instead of failing on upgrade.
func Open(cfg config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	switch cfg.DBDriver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate", cfg.DBPath)
		if cfg.DBPath == ":memory:" {
			dsn = "file::memory:?cache=shared&_busy_timeout=10000&_txlock=immediate"
		}
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort,
		)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.Transaction{}); err != nil {
		return err
	}

	// 查询在借更快 / open transactions are the hot lookup for delete guards
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_book
	  ON %s (book_id)
	  WHERE return_date IS NULL;
	`, models.TransactionTable, models.TransactionTable)).Error; err != nil {
		return err
	}

	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_due_status
	  ON %s (due_date)
	  WHERE status = 'borrowed';
	`, models.TransactionTable, models.TransactionTable)).Error; err != nil {
		return err
	}

	return nil
}
