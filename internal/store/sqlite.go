package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is the file-backed Store implementation. It is safe for concurrent
// use; sqlite serializes writers and the upsert runs in one transaction.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and runs
// schema migration.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS periods (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		quarter INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS activity_records (
		id TEXT PRIMARY KEY,
		organisation_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		facility_id TEXT,
		kind TEXT NOT NULL,
		year INTEGER,
		month INTEGER,
		quantity REAL,
		unit TEXT,
		fuel_name TEXT,
		source TEXT,
		grid_quantity REAL,
		captive_quantity REAL,
		renewable_quantity REAL,
		product_id TEXT,
		product_name TEXT,
		cn_code TEXT,
		material_name TEXT,
		supplier_id TEXT,
		inline_factor REAL,
		created_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_activity_scope
		ON activity_records (organisation_id, period_id, kind);
	CREATE TABLE IF NOT EXISTS emission_factors (
		id TEXT PRIMARY KEY,
		organisation_id TEXT,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		country_code TEXT,
		year INTEGER,
		value REAL NOT NULL,
		indirect_value REAL NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS cn_codes (
		code TEXT PRIMARY KEY,
		description TEXT,
		cbam_applicable INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		organisation_id TEXT NOT NULL,
		name TEXT,
		country_code TEXT
	);
	CREATE TABLE IF NOT EXISTS supplier_declarations (
		id TEXT PRIMARY KEY,
		organisation_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		supplier_id TEXT,
		supplier_name TEXT,
		country_code TEXT,
		product_name TEXT,
		direct_factor REAL,
		indirect_factor REAL,
		status TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		organisation_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		facility_id TEXT,
		scope1 REAL, scope2 REAL,
		scope3_direct REAL, scope3_indirect REAL, scope3_total REAL,
		total_emissions REAL,
		total_production REAL,
		products JSON NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_calculations_key
		ON calculations (organisation_id, period_id, status);
	CREATE TABLE IF NOT EXISTS validation_results (
		id TEXT PRIMARY KEY,
		organisation_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		calculation_id TEXT,
		findings JSON NOT NULL,
		status TEXT NOT NULL,
		error_count INTEGER, warning_count INTEGER, info_count INTEGER,
		created_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		organisation_id TEXT NOT NULL,
		period_id TEXT NOT NULL,
		calculation_id TEXT NOT NULL,
		type TEXT NOT NULL,
		content BLOB,
		valid INTEGER NOT NULL,
		check_findings JSON NOT NULL,
		created_at DATETIME,
		submitted_at DATETIME
	);`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}
