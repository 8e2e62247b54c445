package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. The driver is selected
// via DB_TYPE ("postgres" or "sqlite"); Postgres reads DATABASE_URL, SQLite
// reads DB_PATH (default data/scheduler.db).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
	case "sqlite":
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dbPath = filepath.Join("data", "scheduler.db")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to sqlite: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", dbType)
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS schedules (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			content_type TEXT NOT NULL,
			retention_score INTEGER NOT NULL DEFAULT 0,
			repetition_interval INTEGER NOT NULL DEFAULT 1,
			repetition_count INTEGER NOT NULL DEFAULT 0,
			difficulty_adjustment DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			amazon_interview_priority BOOLEAN NOT NULL DEFAULT false,
			next_review_date TIMESTAMP NOT NULL,
			last_reviewed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(user_id, content_id, content_type)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schedules table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_schedules_user_next_review
		ON schedules (user_id, next_review_date)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schedule index: %v", err)
	}

	return nil
}
