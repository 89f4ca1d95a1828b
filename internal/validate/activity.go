package validate

import (
	"context"
	"fmt"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/store"
)

// checkActivity applies per-record plausibility rules: negative quantities
// are errors, missing emission factors degrade to defaults and are warnings,
// implausibly large electricity volumes are flagged as outliers, and
// production records must carry a positive quantity.
func (e *Engine) checkActivity(ctx context.Context, req Request) ([]domain.Finding, error) {
	records, err := e.stores.ListActivity(ctx, store.ActivityFilter{
		OrganisationID: req.OrganisationID,
		PeriodID:       req.PeriodID,
	})
	if err != nil {
		return nil, fmt.Errorf("activity checks: %w", err)
	}

	declarations, err := e.stores.ListDeclarations(ctx, req.OrganisationID, req.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("activity checks: load declarations: %w", err)
	}
	declared := make(map[string]bool)
	for _, d := range declarations {
		if d.Verified() {
			declared[lower(d.ProductName)] = true
		}
	}

	var findings []domain.Finding
	for _, rec := range records {
		// Production records get the stricter non-positive check below;
		// reporting them here as well would double up the finding.
		if rec.Kind != domain.ActivityProduction &&
			(rec.Quantity < 0 || rec.GridQuantity < 0 || rec.CaptiveQuantity < 0 || rec.RenewableQuantity < 0) {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Category: domain.CategoryNumericFormat,
				Field:    "quantity",
				Message:  fmt.Sprintf("%s record for %d-%02d has a negative quantity", rec.Kind, rec.Year, rec.Month),
				SourceID: rec.ID,
			})
		}

		switch rec.Kind {
		case domain.ActivityFuel:
			if rec.InlineFactor == nil && !e.hasFactor(ctx, req.OrganisationID, domain.FactorFuel, rec.FuelName) {
				findings = append(findings, domain.Finding{
					Severity:   domain.SeverityWarning,
					Category:   domain.CategorySupplierData,
					Field:      "emissionFactor",
					Message:    fmt.Sprintf("no emission factor found for fuel %q; calculation will use zero", rec.FuelName),
					SourceID:   rec.ID,
					Suggestion: "add a reference factor or enter the factor on the record",
				})
			}
		case domain.ActivityPrecursor:
			if rec.InlineFactor == nil && !declared[lower(rec.MaterialName)] &&
				!e.hasFactor(ctx, req.OrganisationID, domain.FactorPrecursorDefault, rec.MaterialName) {
				findings = append(findings, domain.Finding{
					Severity:   domain.SeverityWarning,
					Category:   domain.CategorySupplierData,
					Field:      "emissionFactor",
					Message:    fmt.Sprintf("no emission factor or supplier declaration for material %q", rec.MaterialName),
					SourceID:   rec.ID,
					Suggestion: "request a supplier declaration or configure a default factor",
				})
			}
		case domain.ActivityElectricity:
			// Same either/or the calculation applies: per-source quantities
			// when any is set, the plain quantity otherwise.
			total := rec.GridQuantity + rec.CaptiveQuantity + rec.RenewableQuantity
			if total == 0 {
				total = rec.Quantity
			}
			if total > e.thresholds.ElectricityOutlierKWh {
				findings = append(findings, domain.Finding{
					Severity:   domain.SeverityWarning,
					Category:   domain.CategoryOutlier,
					Field:      "quantity",
					Message:    fmt.Sprintf("electricity volume %.0f kWh in %d-%02d exceeds the monthly outlier threshold", total, rec.Year, rec.Month),
					SourceID:   rec.ID,
					Suggestion: "verify the meter reading and unit",
				})
			}
		case domain.ActivityProduction:
			if rec.Quantity <= 0 {
				findings = append(findings, domain.Finding{
					Severity: domain.SeverityError,
					Category: domain.CategoryNumericFormat,
					Field:    "quantity",
					Message:  fmt.Sprintf("production record for %q has non-positive quantity", rec.ProductName),
					SourceID: rec.ID,
				})
			}
		}
	}
	return findings, nil
}

// hasFactor reports whether any active factor of the given type matches name
// exactly or by substring, the same matching the resolver applies.
func (e *Engine) hasFactor(ctx context.Context, organisationID string, t domain.FactorType, name string) bool {
	if name == "" {
		return false
	}
	factors, err := e.stores.ListFactors(ctx, organisationID, t)
	if err != nil {
		return false
	}
	needle := lower(name)
	for _, f := range factors {
		if !f.IsActive {
			continue
		}
		candidate := lower(f.Name)
		if candidate == needle || contains(candidate, needle) || contains(needle, candidate) {
			return true
		}
	}
	return false
}
