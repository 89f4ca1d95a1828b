package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbonfabric/cbam/internal/domain"
)

func lower(s string) string { return strings.ToLower(s) }

func contains(s, substr string) bool { return strings.Contains(s, substr) }

// isoCountryCodes is the ISO 3166-1 alpha-2 set the supplier rules accept.
var isoCountryCodes = func() map[string]bool {
	codes := strings.Fields(`
		AD AE AF AG AL AM AO AR AT AU AZ BA BB BD BE BF BG BH BI BJ BN BO BR
		BS BT BW BY BZ CA CD CF CG CH CI CL CM CN CO CR CU CV CY CZ DE DJ DK
		DM DO DZ EC EE EG ER ES ET FI FJ FM FR GA GB GD GE GH GM GN GQ GR GT
		GW GY HN HR HT HU ID IE IL IN IQ IR IS IT JM JO JP KE KG KH KI KM KN
		KP KR KW KZ LA LB LC LI LK LR LS LT LU LV LY MA MC MD ME MG MH MK ML
		MM MN MR MT MU MV MW MX MY MZ NA NE NG NI NL NO NP NR NZ OM PA PE PG
		PH PK PL PT PW PY QA RO RS RU RW SA SB SC SD SE SG SI SK SL SM SN SO
		SR SS ST SV SY SZ TD TG TH TJ TL TM TN TO TR TT TV TW TZ UA UG US UY
		UZ VA VC VE VN VU WS YE ZA ZM ZW`)
	m := make(map[string]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}()

// checkSuppliers verifies supplier master data: an unrecognized country code
// is a warning, and a supplier without declarations for the period is
// informational only, since absence of supplier data is expected and falls
// back to default factors.
func (e *Engine) checkSuppliers(ctx context.Context, req Request) ([]domain.Finding, error) {
	suppliers, err := e.stores.ListSuppliers(ctx, req.OrganisationID)
	if err != nil {
		return nil, fmt.Errorf("supplier checks: %w", err)
	}
	declarations, err := e.stores.ListDeclarations(ctx, req.OrganisationID, req.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("supplier checks: load declarations: %w", err)
	}

	declCount := make(map[string]int)
	for _, d := range declarations {
		declCount[d.SupplierID]++
	}

	var findings []domain.Finding
	for _, s := range suppliers {
		if s.CountryCode != "" && !isoCountryCodes[strings.ToUpper(s.CountryCode)] {
			findings = append(findings, domain.Finding{
				Severity:   domain.SeverityWarning,
				Category:   domain.CategorySupplierData,
				Field:      "countryCode",
				Message:    fmt.Sprintf("supplier %q has unrecognized country code %q", s.Name, s.CountryCode),
				SourceID:   s.ID,
				Suggestion: "use an ISO 3166-1 alpha-2 country code",
			})
		}
		if declCount[s.ID] == 0 {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityInfo,
				Category: domain.CategorySupplierData,
				Field:    "declarations",
				Message:  fmt.Sprintf("supplier %q has no declarations for this period; default factors apply", s.Name),
				SourceID: s.ID,
			})
		}
	}
	return findings, nil
}
