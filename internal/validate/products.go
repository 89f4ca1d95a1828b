package validate

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/store"
)

// cnCodePattern is the EU Combined Nomenclature format: exactly 8 digits.
var cnCodePattern = regexp.MustCompile(`^\d{8}$`)

// checkProducts verifies the CN codes carried by the period's production
// records: a malformed code is an error, a code missing from the reference
// data or not marked CBAM-applicable is a warning.
func (e *Engine) checkProducts(ctx context.Context, req Request) ([]domain.Finding, error) {
	production, err := e.stores.ListActivity(ctx, store.ActivityFilter{
		OrganisationID: req.OrganisationID,
		PeriodID:       req.PeriodID,
		Kind:           domain.ActivityProduction,
	})
	if err != nil {
		return nil, fmt.Errorf("product checks: %w", err)
	}

	var findings []domain.Finding
	seen := make(map[string]bool)
	for _, rec := range production {
		key := rec.ProductKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		if !cnCodePattern.MatchString(rec.CNCode) {
			findings = append(findings, domain.Finding{
				Severity:   domain.SeverityError,
				Category:   domain.CategoryProductData,
				Field:      "cnCode",
				Message:    fmt.Sprintf("product %q has invalid CN code %q: must be exactly 8 digits", rec.ProductName, rec.CNCode),
				SourceID:   rec.ID,
				Suggestion: "enter the 8-digit Combined Nomenclature code for this product",
			})
			continue
		}

		info, err := e.stores.LookupCNCode(ctx, rec.CNCode)
		switch {
		case errors.Is(err, store.ErrNotFound):
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityWarning,
				Category: domain.CategoryProductData,
				Field:    "cnCode",
				Message:  fmt.Sprintf("CN code %s is not present in the reference nomenclature", rec.CNCode),
				SourceID: rec.ID,
			})
		case err != nil:
			return nil, fmt.Errorf("lookup CN code %s: %w", rec.CNCode, err)
		case !info.CBAMApplicable:
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityWarning,
				Category: domain.CategoryProductData,
				Field:    "cnCode",
				Message:  fmt.Sprintf("CN code %s is not marked CBAM-applicable", rec.CNCode),
				SourceID: rec.ID,
			})
		}
	}
	return findings, nil
}
