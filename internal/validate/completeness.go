package validate

import (
	"context"
	"fmt"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/store"
)

// checkCompleteness verifies the period has enough data to report on: no
// production is an error, no electricity is a warning, and fewer than the
// expected distinct months of electricity data in a quarterly period is a
// warning.
func (e *Engine) checkCompleteness(ctx context.Context, req Request) ([]domain.Finding, error) {
	production, err := e.stores.ListActivity(ctx, store.ActivityFilter{
		OrganisationID: req.OrganisationID,
		PeriodID:       req.PeriodID,
		Kind:           domain.ActivityProduction,
	})
	if err != nil {
		return nil, fmt.Errorf("completeness checks: %w", err)
	}
	electricity, err := e.stores.ListActivity(ctx, store.ActivityFilter{
		OrganisationID: req.OrganisationID,
		PeriodID:       req.PeriodID,
		Kind:           domain.ActivityElectricity,
	})
	if err != nil {
		return nil, fmt.Errorf("completeness checks: %w", err)
	}

	var findings []domain.Finding

	if len(production) == 0 {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityError,
			Category:   domain.CategoryCompleteness,
			Field:      "production",
			Message:    "no production records exist for this reporting period",
			Suggestion: "enter monthly production quantities before calculating",
		})
	}

	if len(electricity) == 0 {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryCompleteness,
			Field:      "electricity",
			Message:    "no electricity records exist for this reporting period",
			Suggestion: "enter monthly electricity consumption",
		})
		return findings, nil
	}

	months := make(map[int]bool)
	for _, rec := range electricity {
		months[rec.Month] = true
	}
	if len(months) < e.thresholds.MinElectricityMonths {
		findings = append(findings, domain.Finding{
			Severity: domain.SeverityWarning,
			Category: domain.CategoryCompleteness,
			Field:    "months",
			Message: fmt.Sprintf("electricity data covers %d of %d expected months for a quarterly period",
				len(months), e.thresholds.MinElectricityMonths),
			Suggestion: "enter electricity consumption for each month of the quarter",
		})
	}

	return findings, nil
}
