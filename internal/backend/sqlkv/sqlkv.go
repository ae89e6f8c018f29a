// Package sqlkv implements kv.Store on a single SQL table.
// SQLite (modernc.org/sqlite) and MySQL (go-sql-driver/mysql) are supported.
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"locktodo/internal/kv"
)

// dialect holds the statements that differ between engines.
type dialect struct {
	driver string
	create string
	upsert string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	create: `
		CREATE TABLE IF NOT EXISTS kv_entries (
			k TEXT PRIMARY KEY,
			v BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	upsert: `
		INSERT INTO kv_entries (k, v)
		VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET
			v = excluded.v,
			updated_at = CURRENT_TIMESTAMP`,
}

var mysqlDialect = dialect{
	driver: "mysql",
	create: `
		CREATE TABLE IF NOT EXISTS kv_entries (
			k VARCHAR(255) PRIMARY KEY,
			v LONGBLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
	upsert: `
		INSERT INTO kv_entries (k, v)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE
			v = VALUES(v)`,
}

// Store is a kv.Store backed by database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating if needed) a SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return open(ctx, db, sqliteDialect)
}

// OpenMySQL connects to MySQL using dsn. parseTime is forced on.
func OpenMySQL(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	return open(ctx, sql.OpenDB(connector), mysqlDialect)
}

func open(ctx context.Context, db *sql.DB, d dialect) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.create)
	return err
}

// Get implements kv.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT v
		FROM kv_entries
		WHERE k = ?`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set implements kv.Store.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete implements kv.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM kv_entries
		WHERE k = ?`,
		key,
	); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close implements kv.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
