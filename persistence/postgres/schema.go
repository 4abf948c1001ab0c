package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		manager TEXT NOT NULL,
		status TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
		pdf_link TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL REFERENCES reports(id),
		called_about TEXT NOT NULL,
		manager_name TEXT NOT NULL,
		status TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		duration DOUBLE PRECISION NOT NULL DEFAULT 0,
		cost DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS calls_report_id_idx ON calls (report_id)`,
	`CREATE TABLE IF NOT EXISTS summaries (
		id TEXT PRIMARY KEY,
		call_id TEXT NOT NULL REFERENCES calls(id),
		summary_text TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transcriptions (
		id TEXT PRIMARY KEY,
		call_id TEXT NOT NULL REFERENCES calls(id),
		full_text TEXT NOT NULL,
		timestamp TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usage (
		billing_month TEXT PRIMARY KEY,
		total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_usage DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS usage_by_call (
		call_id TEXT PRIMARY KEY REFERENCES calls(id),
		billing_month TEXT NOT NULL,
		report_id TEXT NOT NULL REFERENCES reports(id),
		cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		duration DOUBLE PRECISION NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usage_by_report (
		report_id TEXT PRIMARY KEY REFERENCES reports(id),
		billing_month TEXT NOT NULL,
		call_count INTEGER NOT NULL DEFAULT 0,
		cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		duration DOUBLE PRECISION NOT NULL DEFAULT 0,
		manager TEXT NOT NULL,
		report_date TEXT NOT NULL
	)`,
}

// Migrate creates the call record tables when they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
