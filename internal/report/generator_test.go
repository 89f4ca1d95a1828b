package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/store"
)

const (
	testOrg    = "ORG1"
	testPeriod = "2026-Q1"
)

var testIdentity = Identity{
	DeclarantName: "Acme Steel GmbH",
	DeclarantID:   "DE-12345",
	Installation:  "Werk Duisburg",
	CountryCode:   "DE",
}

func seedCalculation(t *testing.T, mem *store.Memory) domain.Calculation {
	t.Helper()
	ctx := context.Background()

	period, err := domain.ParsePeriodID(testPeriod)
	require.NoError(t, err)
	require.NoError(t, mem.PutPeriod(ctx, period))

	calc, err := mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: testOrg, PeriodID: testPeriod,
		Scope1: 20.2, Scope2: 71.6, Scope3Direct: 1500, Scope3Indirect: 300,
		Scope3Total: 1800, TotalEmissions: 1891.8, TotalProduction: 500,
		Products: []domain.ProductCalculation{{
			ProductName: "Hot Coil", CNCode: "72081000",
			ProductionQuantity: 500, ProductionUnit: "t",
			Scope1: 20.2, Scope2: 71.6,
			Scope3Direct: 1500, Scope3Indirect: 300, Scope3Total: 1800,
			TotalEmissions: 1891.8,
			SEETotal:       3.7836, SEEDirect: 3.0404, SEEIndirect: 0.7432,
			Scope1Details: []domain.ScopeDetail{{
				SourceID: "f1", SourceName: "Natural Gas",
				Quantity: 10000, Unit: "m3", Factor: 0.00202, Emissions: 20.2,
				FactorSource: "reference",
			}},
		}},
		Status: domain.CalculationValidated,
	})
	require.NoError(t, err)
	return calc
}

func TestGenerateEndToEnd(t *testing.T) {
	mem := store.NewMemory()
	calc := seedCalculation(t, mem)

	gen, err := NewGenerator(mem, testIdentity, "")
	require.NoError(t, err)

	rep, err := gen.Generate(context.Background(), testOrg, testPeriod, calc.ID)
	require.NoError(t, err)

	assert.True(t, rep.Valid, "findings: %v", rep.CheckFindings)
	assert.Equal(t, domain.ReportComplianceXML, rep.Type)
	assert.Empty(t, rep.CheckFindings)

	content := string(rep.Content)
	assert.True(t, strings.HasPrefix(content, "<?xml"))
	assert.Contains(t, content, `<CBAMReport schemaVersion="`+SchemaVersion+`">`)
	assert.Contains(t, content, "<Name>Acme Steel GmbH</Name>")
	assert.Contains(t, content, "<CNCode>72081000</CNCode>")
	assert.Contains(t, content, "<StartDate>2026-01-01</StartDate>")
	assert.Contains(t, content, "<EndDate>2026-03-31</EndDate>")
	assert.Contains(t, content, "<Value>20.2000000</Value>")
	assert.Contains(t, content, "<Value>1891.8000000</Value>")
	assert.Contains(t, content, `<Quantity unit="m3">`)
	assert.Contains(t, content, "<FactorSource>reference</FactorSource>")

	// The report is persisted and retrievable.
	stored, err := mem.GetReport(context.Background(), rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.Content, stored.Content)
}

func TestGenerateEscapesCharacterData(t *testing.T) {
	mem := store.NewMemory()
	seedCalculation(t, mem)

	ctx := context.Background()
	calc, err := mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: testOrg, PeriodID: testPeriod,
		Scope1: 1, TotalEmissions: 1, TotalProduction: 1,
		Products: []domain.ProductCalculation{{
			ProductName: "Rods <3mm> & wire", CNCode: "72171000",
			ProductionQuantity: 1, ProductionUnit: "t",
			Scope1: 1, TotalEmissions: 1, SEETotal: 1, SEEDirect: 1,
		}},
		Status: domain.CalculationValidated,
	})
	require.NoError(t, err)

	gen, err := NewGenerator(mem, testIdentity, "")
	require.NoError(t, err)

	rep, err := gen.Generate(ctx, testOrg, testPeriod, calc.ID)
	require.NoError(t, err)

	assert.True(t, rep.Valid, "findings: %v", rep.CheckFindings)
	assert.Contains(t, string(rep.Content), "Rods &lt;3mm&gt; &amp; wire")
	assert.NotContains(t, string(rep.Content), "<3mm>")
}

func TestGenerateMissingCalculation(t *testing.T) {
	mem := store.NewMemory()
	seedCalculation(t, mem)

	gen, err := NewGenerator(mem, testIdentity, "")
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), testOrg, testPeriod, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNewGeneratorSchemaGate(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"default", "", false},
		{"current", SchemaVersion, false},
		{"older minor", "1.0.0", false},
		{"next major", "2.0.0", true},
		{"garbage", "latest", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(store.NewMemory(), testIdentity, tt.version)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelfCheckMissingElements(t *testing.T) {
	content := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<CBAMReport schemaVersion="1.1.0">
  <Header>
    <ReportType>compliance_xml</ReportType>
  </Header>
</CBAMReport>
`)
	verdict := SelfCheck(content)
	assert.False(t, verdict.Valid)

	missing := make(map[string]bool)
	for _, f := range verdict.Findings {
		if f.Category == domain.CategoryCompleteness && f.Severity == domain.SeverityError {
			missing[f.Field] = true
		}
	}
	for _, name := range []string{"Declarant", "Installation", "ReportingPeriod", "Goods", "Summary"} {
		assert.True(t, missing[name], "expected missing-element finding for %s", name)
	}
}

func TestSelfCheckRejectsMalformedValue(t *testing.T) {
	mem := store.NewMemory()
	calc := seedCalculation(t, mem)

	gen, err := NewGenerator(mem, testIdentity, "")
	require.NoError(t, err)
	rep, err := gen.Generate(context.Background(), testOrg, testPeriod, calc.ID)
	require.NoError(t, err)

	tampered := strings.Replace(string(rep.Content), "20.2000000", "2.02e1", 1)
	verdict := SelfCheck([]byte(tampered))
	assert.False(t, verdict.Valid)
	require.NotEmpty(t, verdict.Findings)
	assert.Equal(t, domain.CategoryNumericFormat, verdict.Findings[0].Category)
}

func TestSelfCheckRejectsBadCNCode(t *testing.T) {
	mem := store.NewMemory()
	calc := seedCalculation(t, mem)

	gen, err := NewGenerator(mem, testIdentity, "")
	require.NoError(t, err)
	rep, err := gen.Generate(context.Background(), testOrg, testPeriod, calc.ID)
	require.NoError(t, err)

	tampered := strings.Replace(string(rep.Content), "72081000", "7208", 1)
	verdict := SelfCheck([]byte(tampered))
	assert.False(t, verdict.Valid)
}

func TestSelfCheckAllZeroEmissionsWarns(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	period, err := domain.ParsePeriodID(testPeriod)
	require.NoError(t, err)
	require.NoError(t, mem.PutPeriod(ctx, period))

	calc, err := mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: testOrg, PeriodID: testPeriod,
		TotalProduction: 500,
		Products: []domain.ProductCalculation{{
			ProductName: "Hot Coil", CNCode: "72081000",
			ProductionQuantity: 500, ProductionUnit: "t",
		}},
		Status: domain.CalculationValidated,
	})
	require.NoError(t, err)

	gen, err := NewGenerator(mem, testIdentity, "")
	require.NoError(t, err)
	rep, err := gen.Generate(ctx, testOrg, testPeriod, calc.ID)
	require.NoError(t, err)

	// Zero emissions are a warning, not an error; the report stays valid.
	assert.True(t, rep.Valid)
	require.NotEmpty(t, rep.CheckFindings)
	found := false
	for _, f := range rep.CheckFindings {
		if f.Severity == domain.SeverityWarning && strings.Contains(f.Message, "zero") {
			found = true
		}
	}
	assert.True(t, found, "expected all-zero warning, got %v", rep.CheckFindings)
}

func TestSelfCheckMalformedXML(t *testing.T) {
	verdict := SelfCheck([]byte("<CBAMReport><Header></CBAMReport>"))
	assert.False(t, verdict.Valid)
	require.NotEmpty(t, verdict.Findings)
	assert.Contains(t, verdict.Findings[0].Message, "not well-formed")
}
