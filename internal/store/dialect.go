package store

import (
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"

	// Database drivers. modernc.org/sqlite is pure Go (no CGO).
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types, as named in configuration.
const (
	TypeSQLite   = "sqlite"
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
)

// sqlDialect holds what differs between the supported databases. Queries
// themselves are built with ent's dialect-aware builders.
type sqlDialect interface {
	// DriverName returns the database/sql driver name.
	DriverName() string

	// EntDialect returns the ent builder dialect.
	EntDialect() string

	// Configure applies connection settings after sql.Open.
	Configure(db *sql.DB) error

	// Schema returns the DDL statements creating every table.
	Schema() []string
}

func dialectFor(dbType string) (sqlDialect, error) {
	switch dbType {
	case "", TypeSQLite:
		return sqliteDialect{}, nil
	case TypeMySQL:
		return mysqlDialect{}, nil
	case TypePostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) DriverName() string { return "sqlite" }
func (sqliteDialect) EntDialect() string { return dialect.SQLite }

// Configure applies pragmas for single-user performance. Pragmas are per
// connection, so the pool is pinned to one.
func (sqliteDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			name TEXT PRIMARY KEY,
			highest_level INTEGER NOT NULL DEFAULT 1,
			best_accuracy REAL NOT NULL DEFAULT 0,
			total_sessions INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			student_name TEXT NOT NULL,
			level INTEGER NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME,
			total_questions INTEGER NOT NULL DEFAULT 0,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			accuracy REAL NOT NULL DEFAULT 0,
			level_passed BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_student ON sessions (student_name)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			student_name TEXT NOT NULL,
			level INTEGER NOT NULL,
			question TEXT NOT NULL,
			user_answer INTEGER NOT NULL,
			correct_answer INTEGER NOT NULL,
			is_correct BOOLEAN NOT NULL,
			is_first_attempt BOOLEAN NOT NULL DEFAULT 1,
			timestamp DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_session ON answers (session_id)`,
		`CREATE TABLE IF NOT EXISTS timed_challenges (
			id TEXT PRIMARY KEY,
			student_name TEXT NOT NULL,
			questions_answered INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			timestamp DATETIME NOT NULL
		)`,
	}
}

type mysqlDialect struct{}

func (mysqlDialect) DriverName() string { return "mysql" }
func (mysqlDialect) EntDialect() string { return dialect.MySQL }

func (mysqlDialect) Configure(db *sql.DB) error {
	configurePool(db)
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	return nil
}

func (mysqlDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			name VARCHAR(191) PRIMARY KEY,
			highest_level INT NOT NULL DEFAULT 1,
			best_accuracy DOUBLE NOT NULL DEFAULT 0,
			total_sessions INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(36) PRIMARY KEY,
			student_name VARCHAR(191) NOT NULL,
			level INT NOT NULL,
			start_time DATETIME(6) NOT NULL,
			end_time DATETIME(6) NULL,
			total_questions INT NOT NULL DEFAULT 0,
			correct_answers INT NOT NULL DEFAULT 0,
			accuracy DOUBLE NOT NULL DEFAULT 0,
			level_passed BOOLEAN NOT NULL DEFAULT FALSE,
			INDEX idx_sessions_student (student_name)
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			session_id VARCHAR(36) NOT NULL,
			student_name VARCHAR(191) NOT NULL,
			level INT NOT NULL,
			question VARCHAR(64) NOT NULL,
			user_answer INT NOT NULL,
			correct_answer INT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			is_first_attempt BOOLEAN NOT NULL DEFAULT TRUE,
			timestamp DATETIME(6) NOT NULL,
			INDEX idx_answers_session (session_id),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS timed_challenges (
			id VARCHAR(36) PRIMARY KEY,
			student_name VARCHAR(191) NOT NULL,
			questions_answered INT NOT NULL,
			correct_answers INT NOT NULL,
			accuracy DOUBLE NOT NULL,
			timestamp DATETIME(6) NOT NULL
		)`,
	}
}

type postgresDialect struct{}

func (postgresDialect) DriverName() string { return "postgres" }
func (postgresDialect) EntDialect() string { return dialect.Postgres }

func (postgresDialect) Configure(db *sql.DB) error {
	configurePool(db)
	return nil
}

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			name TEXT PRIMARY KEY,
			highest_level INTEGER NOT NULL DEFAULT 1,
			best_accuracy DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_sessions INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			student_name TEXT NOT NULL,
			level INTEGER NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			total_questions INTEGER NOT NULL DEFAULT 0,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			accuracy DOUBLE PRECISION NOT NULL DEFAULT 0,
			level_passed BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_student ON sessions (student_name)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			student_name TEXT NOT NULL,
			level INTEGER NOT NULL,
			question TEXT NOT NULL,
			user_answer INTEGER NOT NULL,
			correct_answer INTEGER NOT NULL,
			is_correct BOOLEAN NOT NULL,
			is_first_attempt BOOLEAN NOT NULL DEFAULT TRUE,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_session ON answers (session_id)`,
		`CREATE TABLE IF NOT EXISTS timed_challenges (
			id TEXT PRIMARY KEY,
			student_name TEXT NOT NULL,
			questions_answered INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL,
			accuracy DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
	}
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}
