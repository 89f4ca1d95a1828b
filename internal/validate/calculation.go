package validate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/store"
)

// digitCounts returns the number of digits in the integer and fractional
// parts of v. The fraction is measured at 10 decimal places with trailing
// zeros trimmed, so binary representation noise (42.96 stored as
// 42.959999999999994) does not count as extra digits.
func digitCounts(v float64) (intDigits, fracDigits int) {
	s := strconv.FormatFloat(math.Abs(v), 'f', 10, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")
	fracPart = strings.TrimRight(fracPart, "0")
	return len(intPart), len(fracPart)
}

// checkCalculation verifies a computed calculation: a zero grand total and
// implausible SEE values are warnings, and any numeric value exceeding the
// wire format's precision ceiling is an error that must block report
// generation.
func (e *Engine) checkCalculation(ctx context.Context, req Request) ([]domain.Finding, error) {
	if req.CalculationID == "" {
		return nil, nil
	}

	calc, err := e.stores.GetCalculation(ctx, req.CalculationID)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Category: domain.CategoryCompleteness,
			Field:    "calculationId",
			Message:  fmt.Sprintf("calculation %s does not exist", req.CalculationID),
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("calculation checks: %w", err)
	}

	var findings []domain.Finding

	if calc.TotalEmissions == 0 {
		findings = append(findings, domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryCompleteness,
			Field:      "totalEmissions",
			Message:    "calculation has zero total emissions",
			SourceID:   calc.ID,
			Suggestion: "verify that activity data and emission factors are complete",
		})
	}

	for _, p := range calc.Products {
		if p.SEETotal > e.thresholds.SEEUpperBound ||
			(p.SEETotal < e.thresholds.SEELowerBound && p.ProductionQuantity > 0) {
			findings = append(findings, domain.Finding{
				Severity:   domain.SeverityWarning,
				Category:   domain.CategoryOutlier,
				Field:      "seeTotal",
				Message:    fmt.Sprintf("product %q has implausible specific embedded emissions %.4f tCO2e/t", p.ProductName, p.SEETotal),
				SourceID:   p.ProductID,
				Suggestion: "check production quantities and emission factors for this product",
			})
		}
	}

	findings = append(findings, e.checkPrecision(calc)...)

	return findings, nil
}

// checkPrecision scans every numeric value in the calculation against the
// wire format's digit limits.
func (e *Engine) checkPrecision(calc domain.Calculation) []domain.Finding {
	type value struct {
		field string
		v     float64
	}
	values := []value{
		{"scope1", calc.Scope1},
		{"scope2", calc.Scope2},
		{"scope3Direct", calc.Scope3Direct},
		{"scope3Indirect", calc.Scope3Indirect},
		{"scope3Total", calc.Scope3Total},
		{"totalEmissions", calc.TotalEmissions},
		{"totalProduction", calc.TotalProduction},
	}
	for _, p := range calc.Products {
		prefix := p.ProductName
		values = append(values,
			value{prefix + ".productionQuantity", p.ProductionQuantity},
			value{prefix + ".totalEmissions", p.TotalEmissions},
			value{prefix + ".seeTotal", p.SEETotal},
			value{prefix + ".seeDirect", p.SEEDirect},
			value{prefix + ".seeIndirect", p.SEEIndirect},
		)
		// Detail rows are written to the report verbatim, so they are
		// held to the same digit limits as the totals.
		for _, details := range [][]domain.ScopeDetail{p.Scope1Details, p.Scope2Details, p.Scope3Details} {
			for _, d := range details {
				values = append(values,
					value{prefix + "." + d.SourceName + ".quantity", d.Quantity},
					value{prefix + "." + d.SourceName + ".factor", d.Factor},
					value{prefix + "." + d.SourceName + ".emissions", d.Emissions},
				)
			}
		}
	}

	var findings []domain.Finding
	for _, val := range values {
		intDigits, fracDigits := digitCounts(val.v)
		if intDigits > e.thresholds.MaxIntegerDigits || fracDigits > e.thresholds.MaxFractionDigits {
			findings = append(findings, domain.Finding{
				Severity: domain.SeverityError,
				Category: domain.CategoryNumericFormat,
				Field:    val.field,
				Message: fmt.Sprintf("value %g exceeds the report precision limit of %d integer / %d fraction digits",
					val.v, e.thresholds.MaxIntegerDigits, e.thresholds.MaxFractionDigits),
				SourceID: calc.ID,
			})
		}
	}
	return findings
}
