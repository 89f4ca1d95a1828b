package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carbonfabric/cbam/internal/domain"
)

// UpsertCalculation replaces the non-finalized calculation for the
// (organisation, period) pair inside one transaction, so concurrent runs for
// the same period cannot interleave into a partial write. Last writer wins;
// the calculation is fully regenerable from its inputs.
func (s *SQLite) UpsertCalculation(ctx context.Context, calc domain.Calculation) (domain.Calculation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Calculation{}, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	var existingVersion int
	var existingStatus string
	var existingCreated time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT id, version, status, created_at FROM calculations
		WHERE organisation_id = ? AND period_id = ?
		ORDER BY version DESC LIMIT 1`,
		calc.OrganisationID, calc.PeriodID).
		Scan(&existingID, &existingVersion, &existingStatus, &existingCreated)

	now := time.Now().UTC()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if calc.ID == "" {
			calc.ID = domain.NewID()
		}
		calc.Version = 1
		calc.CreatedAt = now
	case err != nil:
		return domain.Calculation{}, fmt.Errorf("lookup existing calculation: %w", err)
	case existingStatus == string(domain.CalculationFinalized):
		return domain.Calculation{}, ErrFinalized
	default:
		calc.ID = existingID
		calc.Version = existingVersion + 1
		calc.CreatedAt = existingCreated
	}
	calc.UpdatedAt = now

	products, err := json.Marshal(calc.Products)
	if err != nil {
		return domain.Calculation{}, fmt.Errorf("encode products: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO calculations (
			id, organisation_id, period_id, facility_id,
			scope1, scope2, scope3_direct, scope3_indirect, scope3_total,
			total_emissions, total_production, products,
			status, version, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		calc.ID, calc.OrganisationID, calc.PeriodID, calc.FacilityID,
		calc.Scope1, calc.Scope2, calc.Scope3Direct, calc.Scope3Indirect, calc.Scope3Total,
		calc.TotalEmissions, calc.TotalProduction, products,
		string(calc.Status), calc.Version, calc.CreatedAt, calc.UpdatedAt)
	if err != nil {
		return domain.Calculation{}, fmt.Errorf("write calculation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Calculation{}, fmt.Errorf("commit upsert: %w", err)
	}
	return calc, nil
}

func (s *SQLite) GetCalculation(ctx context.Context, id string) (domain.Calculation, error) {
	var c domain.Calculation
	var products []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organisation_id, period_id, COALESCE(facility_id, ''),
		       scope1, scope2, scope3_direct, scope3_indirect, scope3_total,
		       total_emissions, total_production, products,
		       status, version, created_at, updated_at
		FROM calculations WHERE id = ?`, id).
		Scan(&c.ID, &c.OrganisationID, &c.PeriodID, &c.FacilityID,
			&c.Scope1, &c.Scope2, &c.Scope3Direct, &c.Scope3Indirect, &c.Scope3Total,
			&c.TotalEmissions, &c.TotalProduction, &products,
			&c.Status, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Calculation{}, ErrNotFound
	}
	if err != nil {
		return domain.Calculation{}, fmt.Errorf("get calculation: %w", err)
	}
	if err := json.Unmarshal(products, &c.Products); err != nil {
		return domain.Calculation{}, fmt.Errorf("decode products: %w", err)
	}
	return c, nil
}

func (s *SQLite) SetCalculationStatus(ctx context.Context, id string, status domain.CalculationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE calculations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set calculation status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FinalizeCalculation flips a VALIDATED calculation to FINALIZED. The status
// check and the update run in one statement so a concurrent upsert cannot
// slip between them.
func (s *SQLite) FinalizeCalculation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE calculations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(domain.CalculationFinalized), time.Now().UTC(), id, string(domain.CalculationValidated))
	if err != nil {
		return fmt.Errorf("finalize calculation: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM calculations WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("finalize calculation: %w", err)
	}
	if status == string(domain.CalculationFinalized) {
		return nil
	}
	return ErrNotValidated
}

func (s *SQLite) AppendValidation(ctx context.Context, r domain.ValidationResult) error {
	findings, err := json.Marshal(r.Findings)
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO validation_results (
			id, organisation_id, period_id, calculation_id,
			findings, status, error_count, warning_count, info_count, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.OrganisationID, r.PeriodID, r.CalculationID,
		findings, string(r.Status), r.ErrorCount, r.WarningCount, r.InfoCount, r.CreatedAt)
	return err
}

func (s *SQLite) ListValidations(ctx context.Context, organisationID, periodID string) ([]domain.ValidationResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organisation_id, period_id, COALESCE(calculation_id, ''),
		       findings, status, error_count, warning_count, info_count, created_at
		FROM validation_results
		WHERE organisation_id = ? AND period_id = ?
		ORDER BY created_at DESC`,
		organisationID, periodID)
	if err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.ValidationResult
	for rows.Next() {
		var r domain.ValidationResult
		var findings []byte
		if err := rows.Scan(&r.ID, &r.OrganisationID, &r.PeriodID, &r.CalculationID,
			&findings, &r.Status, &r.ErrorCount, &r.WarningCount, &r.InfoCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan validation row: %w", err)
		}
		if err := json.Unmarshal(findings, &r.Findings); err != nil {
			return nil, fmt.Errorf("decode findings: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLite) PutReport(ctx context.Context, rep domain.Report) error {
	findings, err := json.Marshal(rep.CheckFindings)
	if err != nil {
		return fmt.Errorf("encode check findings: %w", err)
	}
	var submitted any
	if rep.SubmittedAt != nil {
		submitted = *rep.SubmittedAt
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (
			id, organisation_id, period_id, calculation_id, type,
			content, valid, check_findings, created_at, submitted_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rep.ID, rep.OrganisationID, rep.PeriodID, rep.CalculationID, string(rep.Type),
		rep.Content, rep.Valid, findings, rep.CreatedAt, submitted)
	return err
}

func (s *SQLite) GetReport(ctx context.Context, id string) (domain.Report, error) {
	var rep domain.Report
	var findings []byte
	var submitted sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organisation_id, period_id, calculation_id, type,
		       content, valid, check_findings, created_at, submitted_at
		FROM reports WHERE id = ?`, id).
		Scan(&rep.ID, &rep.OrganisationID, &rep.PeriodID, &rep.CalculationID, &rep.Type,
			&rep.Content, &rep.Valid, &findings, &rep.CreatedAt, &submitted)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Report{}, ErrNotFound
	}
	if err != nil {
		return domain.Report{}, fmt.Errorf("get report: %w", err)
	}
	if err := json.Unmarshal(findings, &rep.CheckFindings); err != nil {
		return domain.Report{}, fmt.Errorf("decode check findings: %w", err)
	}
	if submitted.Valid {
		t := submitted.Time
		rep.SubmittedAt = &t
	}
	return rep, nil
}
