package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carbonfabric/cbam/internal/domain"
)

func (s *SQLite) ListActivity(ctx context.Context, f ActivityFilter) ([]domain.ActivityRecord, error) {
	query := `
		SELECT id, organisation_id, period_id, COALESCE(facility_id, ''),
		       kind, year, month, quantity, unit,
		       COALESCE(fuel_name, ''), COALESCE(source, ''),
		       grid_quantity, captive_quantity, renewable_quantity,
		       COALESCE(product_id, ''), COALESCE(product_name, ''),
		       COALESCE(cn_code, ''), COALESCE(material_name, ''),
		       COALESCE(supplier_id, ''), inline_factor, created_at
		FROM activity_records
		WHERE organisation_id = ? AND period_id = ?`
	args := []any{f.OrganisationID, f.PeriodID}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(f.Kind))
	}
	if f.FacilityID != "" {
		query += " AND facility_id = ?"
		args = append(args, f.FacilityID)
	}
	query += " ORDER BY year, month, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.ActivityRecord
	for rows.Next() {
		var r domain.ActivityRecord
		var inline sql.NullFloat64
		var created sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.OrganisationID, &r.PeriodID, &r.FacilityID,
			&r.Kind, &r.Year, &r.Month, &r.Quantity, &r.Unit,
			&r.FuelName, &r.Source,
			&r.GridQuantity, &r.CaptiveQuantity, &r.RenewableQuantity,
			&r.ProductID, &r.ProductName,
			&r.CNCode, &r.MaterialName,
			&r.SupplierID, &inline, &created,
		); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		if inline.Valid {
			v := inline.Float64
			r.InlineFactor = &v
		}
		if created.Valid {
			r.CreatedAt = created.Time
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) PutActivity(ctx context.Context, r domain.ActivityRecord) error {
	var inline any
	if r.InlineFactor != nil {
		inline = *r.InlineFactor
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO activity_records (
			id, organisation_id, period_id, facility_id, kind, year, month,
			quantity, unit, fuel_name, source,
			grid_quantity, captive_quantity, renewable_quantity,
			product_id, product_name, cn_code, material_name, supplier_id,
			inline_factor, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.OrganisationID, r.PeriodID, r.FacilityID, string(r.Kind), r.Year, r.Month,
		r.Quantity, r.Unit, r.FuelName, string(r.Source),
		r.GridQuantity, r.CaptiveQuantity, r.RenewableQuantity,
		r.ProductID, r.ProductName, r.CNCode, r.MaterialName, r.SupplierID,
		inline, r.CreatedAt,
	)
	return err
}

func (s *SQLite) ListFactors(ctx context.Context, organisationID string, t domain.FactorType) ([]domain.EmissionFactor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(organisation_id, ''), type, name,
		       COALESCE(country_code, ''), COALESCE(year, 0),
		       value, indirect_value, is_active
		FROM emission_factors
		WHERE type = ? AND (organisation_id = ? OR organisation_id = '' OR organisation_id IS NULL)
		ORDER BY name`,
		string(t), organisationID)
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var factors []domain.EmissionFactor
	for rows.Next() {
		var f domain.EmissionFactor
		if err := rows.Scan(&f.ID, &f.OrganisationID, &f.Type, &f.Name,
			&f.CountryCode, &f.Year, &f.Value, &f.IndirectValue, &f.IsActive); err != nil {
			return nil, fmt.Errorf("scan factor row: %w", err)
		}
		factors = append(factors, f)
	}
	return factors, rows.Err()
}

func (s *SQLite) PutFactor(ctx context.Context, f domain.EmissionFactor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO emission_factors
			(id, organisation_id, type, name, country_code, year, value, indirect_value, is_active)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		f.ID, f.OrganisationID, string(f.Type), f.Name, f.CountryCode, f.Year,
		f.Value, f.IndirectValue, f.IsActive)
	return err
}

func (s *SQLite) LookupCNCode(ctx context.Context, code string) (CNCodeInfo, error) {
	var info CNCodeInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT code, COALESCE(description, ''), cbam_applicable
		FROM cn_codes WHERE code = ?`, code).
		Scan(&info.Code, &info.Description, &info.CBAMApplicable)
	if errors.Is(err, sql.ErrNoRows) {
		return CNCodeInfo{}, ErrNotFound
	}
	return info, err
}

func (s *SQLite) PutCNCode(ctx context.Context, info CNCodeInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cn_codes (code, description, cbam_applicable)
		VALUES (?,?,?)`,
		info.Code, info.Description, info.CBAMApplicable)
	return err
}

func (s *SQLite) ListDeclarations(ctx context.Context, organisationID, periodID string) ([]domain.SupplierDeclaration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organisation_id, period_id, COALESCE(supplier_id, ''),
		       COALESCE(supplier_name, ''), COALESCE(country_code, ''),
		       COALESCE(product_name, ''), direct_factor, indirect_factor, status
		FROM supplier_declarations
		WHERE organisation_id = ? AND period_id = ?`,
		organisationID, periodID)
	if err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decls []domain.SupplierDeclaration
	for rows.Next() {
		var d domain.SupplierDeclaration
		if err := rows.Scan(&d.ID, &d.OrganisationID, &d.PeriodID, &d.SupplierID,
			&d.SupplierName, &d.CountryCode, &d.ProductName,
			&d.DirectFactor, &d.IndirectFactor, &d.Status); err != nil {
			return nil, fmt.Errorf("scan declaration row: %w", err)
		}
		decls = append(decls, d)
	}
	return decls, rows.Err()
}

func (s *SQLite) PutDeclaration(ctx context.Context, d domain.SupplierDeclaration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO supplier_declarations
			(id, organisation_id, period_id, supplier_id, supplier_name,
			 country_code, product_name, direct_factor, indirect_factor, status)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.OrganisationID, d.PeriodID, d.SupplierID, d.SupplierName,
		d.CountryCode, d.ProductName, d.DirectFactor, d.IndirectFactor, string(d.Status))
	return err
}

func (s *SQLite) ListSuppliers(ctx context.Context, organisationID string) ([]Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organisation_id, COALESCE(name, ''), COALESCE(country_code, '')
		FROM suppliers WHERE organisation_id = ?`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var suppliers []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.OrganisationID, &sup.Name, &sup.CountryCode); err != nil {
			return nil, fmt.Errorf("scan supplier row: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *SQLite) PutSupplier(ctx context.Context, sup Supplier) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO suppliers (id, organisation_id, name, country_code)
		VALUES (?,?,?,?)`,
		sup.ID, sup.OrganisationID, sup.Name, sup.CountryCode)
	return err
}

func (s *SQLite) GetPeriod(ctx context.Context, id string) (domain.ReportingPeriod, error) {
	var p domain.ReportingPeriod
	err := s.db.QueryRowContext(ctx,
		`SELECT id, year, quarter FROM periods WHERE id = ?`, id).
		Scan(&p.ID, &p.Year, &p.Quarter)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReportingPeriod{}, ErrNotFound
	}
	return p, err
}

func (s *SQLite) PutPeriod(ctx context.Context, p domain.ReportingPeriod) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO periods (id, year, quarter) VALUES (?,?,?)`,
		p.ID, p.Year, p.Quarter)
	return err
}
