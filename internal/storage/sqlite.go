package storage

import (
	"database/sql"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Close() error
}

// SQLiteKV is the default durable cache backend: one key/value table,
// entries overwritten in place on refresh, never evicted.
type SQLiteKV struct{ db DB }

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS cache(
		key TEXT PRIMARY KEY, value TEXT
	)`)
	return err
}

func NewSQLiteKV(db DB) *SQLiteKV { return &SQLiteKV{db: db} }

func (s *SQLiteKV) Get(key string) (string, bool) {
	rows, err := s.db.Query(`SELECT value FROM cache WHERE key=?`, key)
	if err != nil {
		return "", false
	}
	defer rows.Close()
	if !rows.Next() {
		return "", false
	}
	var v string
	if err := rows.Scan(&v); err != nil {
		return "", false
	}
	return v, true
}

func (s *SQLiteKV) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO cache(key,value) VALUES(?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}
