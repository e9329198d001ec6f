package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/username/partsviewer/backend/src/logger"
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection. It is opened once in main and handed to
// every service that needs the catalog.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite file at databasePath and brings the schema up
// to date. Use ":memory:" only for throwaway stores; every pooled connection
// would otherwise see its own database, so the pool is pinned to one
// connection regardless.
func Open(databasePath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(databasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database at %s: %w", databasePath, err)
	}

	s := &Store{db: db}
	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logger.L.Info("Database tables ensured/created.")
	return s, nil
}

func dsn(databasePath string) string {
	sep := "?"
	if strings.Contains(databasePath, "?") {
		sep = "&"
	}
	return databasePath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// DB exposes the underlying handle for read-only query helpers.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	logger.L.Info("Closing database")
	return s.db.Close()
}

// WithTx runs fn inside a transaction. fn's error rolls everything back; a
// nil return commits. A commit failure is returned to the caller and nothing
// is kept.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// Savepoint runs fn inside a named savepoint of tx. When fn fails, only the
// work done since the savepoint is undone and fn's error is returned; the
// enclosing transaction stays usable.
func Savepoint(ctx context.Context, tx *sql.Tx, name string, fn func() error) error {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("error creating savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint %s failed: %v)", err, name, rbErr)
		}
		// ROLLBACK TO leaves the savepoint on the stack.
		if _, relErr := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); relErr != nil {
			return fmt.Errorf("%w (release of savepoint %s failed: %v)", err, name, relErr)
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("error releasing savepoint %s: %w", name, err)
	}
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		color TEXT DEFAULT '#3498db',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT,
		role TEXT DEFAULT 'viewer',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS parts (
		id TEXT PRIMARY KEY,
		partname TEXT NOT NULL,
		vendor TEXT NOT NULL,
		price REAL NOT NULL,
		price_usd REAL,
		price_krw REAL,
		sap_code TEXT,
		category_id TEXT,
		category_name_raw TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(category_id) REFERENCES categories(id) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parts_partname_sap ON parts(partname, sap_code);

	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		part_id TEXT NOT NULL,
		action TEXT NOT NULL,
		price_before REAL,
		price_after REAL,
		changed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(part_id) REFERENCES parts(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_history_part ON history(part_id, changed_at);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		part_id TEXT NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		read_status INTEGER DEFAULT 0,
		price_before REAL,
		price_after REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(part_id) REFERENCES parts(id) ON DELETE CASCADE
	);
`

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		logger.L.Error("failed to create tables", "error", err)
		return fmt.Errorf("failed to create tables: %w", err)
	}

	// Databases created before raw category labels were kept lack this column.
	columns, err := s.tableColumns("parts")
	if err != nil {
		return err
	}
	if _, ok := columns["category_name_raw"]; !ok {
		if _, err := s.db.Exec("ALTER TABLE parts ADD COLUMN category_name_raw TEXT"); err != nil {
			logger.L.Error("Error adding 'category_name_raw' column to 'parts' table", "error", err)
			return fmt.Errorf("failed to add category_name_raw column: %w", err)
		}
		logger.L.Info("Added 'category_name_raw' column to 'parts' table")
	}
	return nil
}

func (s *Store) tableColumns(table string) (map[string]bool, error) {
	rows, err := s.db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		logger.L.Error("Error querying table schema", "table", table, "error", err)
		return nil, fmt.Errorf("error querying table schema for %s: %w", table, err)
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("error scanning column info for %s: %w", table, err)
		}
		columnExists[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over column info for %s: %w", table, err)
	}
	return columnExists, nil
}
