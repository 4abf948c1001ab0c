package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type Config struct {
	DSN      string
	MaxConns int
	MaxIdle  int
}

// Open connects to postgres and verifies the connection.
func Open(conf Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if conf.MaxConns > 0 {
		db.SetMaxOpenConns(conf.MaxConns)
	}
	if conf.MaxIdle > 0 {
		db.SetMaxIdleConns(conf.MaxIdle)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
