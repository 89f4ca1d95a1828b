package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carbonfabric/cbam/internal/domain"
)

func TestRenderCalculation(t *testing.T) {
	var buf bytes.Buffer
	renderCalculation(&buf, domain.Calculation{
		ID: "CALC1", Version: 2,
		Scope1: 20.2, Scope2: 71.6, Scope3Total: 1800,
		TotalEmissions: 1891.8, TotalProduction: 500,
		Products: []domain.ProductCalculation{{
			ProductName: "Hot Coil", CNCode: "72081000",
			ProductionQuantity: 500, ProductionUnit: "t",
			TotalEmissions: 1891.8, SEETotal: 3.7836,
		}},
	})

	out := buf.String()
	assert.Contains(t, out, "CALC1")
	assert.Contains(t, out, "20.2000")
	assert.Contains(t, out, "1,891.8000")
	assert.Contains(t, out, "Hot Coil")
	assert.Contains(t, out, "CN 72081000")
}

func TestRenderValidationResult(t *testing.T) {
	var buf bytes.Buffer
	res := domain.ValidationResult{
		Findings: []domain.Finding{
			{Severity: domain.SeverityWarning, Category: domain.CategoryOutlier,
				Field: "quantity", Message: "big number", Suggestion: "check the meter"},
		},
	}
	res.DeriveStatus()
	renderValidationResult(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "warnings")
	assert.Contains(t, out, "0 errors, 1 warnings, 0 info")
	assert.Contains(t, out, "big number")
	assert.Contains(t, out, "hint: check the meter")
}

func TestRenderValidationHistory(t *testing.T) {
	var buf bytes.Buffer
	renderValidationHistory(&buf, nil)
	assert.Contains(t, buf.String(), "No validation runs")

	buf.Reset()
	renderValidationHistory(&buf, []domain.ValidationResult{{
		Status:    domain.ValidationPassed,
		CreatedAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}})
	out := buf.String()
	assert.Contains(t, out, "2026-04-01 12:00:00")
	assert.Contains(t, out, "passed")
}

func TestRenderReportVerdict(t *testing.T) {
	var buf bytes.Buffer
	renderReportVerdict(&buf, domain.Report{ID: "R1", Valid: true}, "report.xml")
	out := buf.String()
	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "written to report.xml")

	buf.Reset()
	renderReportVerdict(&buf, domain.Report{
		ID: "R2", Valid: false,
		CheckFindings: []domain.Finding{
			{Severity: domain.SeverityError, Message: "required element Summary is missing"},
		},
	}, "")
	out = buf.String()
	assert.Contains(t, out, "failed self-check")
	assert.Contains(t, out, "Summary is missing")
}

func TestRenderFactors(t *testing.T) {
	var buf bytes.Buffer
	renderFactors(&buf, nil)
	assert.Contains(t, buf.String(), "No factors found")

	buf.Reset()
	renderFactors(&buf, []domain.EmissionFactor{
		{Name: "Natural Gas", Value: 0.00202, IsActive: true},
		{Name: "Steel Billet", OrganisationID: "ORG1", Value: 1.8, IndirectValue: 0.4},
	})
	out := buf.String()
	assert.Contains(t, out, "Natural Gas")
	assert.Contains(t, out, "global")
	assert.Contains(t, out, "ORG1")
	assert.Contains(t, out, "0.400000 indirect")
	assert.Contains(t, out, "(inactive)")
}
