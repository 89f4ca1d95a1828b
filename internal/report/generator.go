// Package report renders a finalized calculation into the schema-constrained
// CBAM XML wire format and validates its own output for structural and
// numeric-format correctness.
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/logging"
	"github.com/carbonfabric/cbam/internal/store"
)

// Identity is the declarant and installation metadata carried in the report
// header. It comes from deployment configuration, not from the calculation.
type Identity struct {
	DeclarantName string
	DeclarantID   string
	Installation  string
	CountryCode   string
}

// Stores is the persistence surface the generator needs.
type Stores interface {
	store.CalculationStore
	store.PeriodStore
	store.ReportStore
}

// Generator renders compliance XML reports.
type Generator struct {
	stores        Stores
	identity      Identity
	schemaVersion string
}

// NewGenerator creates a report generator. schemaVersion selects the target
// wire schema and must satisfy the generator's supported range; use
// SchemaVersion for the current default.
func NewGenerator(stores Stores, identity Identity, schemaVersion string) (*Generator, error) {
	if schemaVersion == "" {
		schemaVersion = SchemaVersion
	}
	if err := CheckSchemaVersion(schemaVersion); err != nil {
		return nil, err
	}
	return &Generator{stores: stores, identity: identity, schemaVersion: schemaVersion}, nil
}

// Generate renders the calculation into the XML wire format, self-checks the
// output and persists the resulting Report. The caller is responsible for
// only passing calculations in VALIDATED or FINALIZED state; that policy
// lives at the boundary, not here.
//
// A report that fails its own self-check is still persisted for operator
// inspection, with Valid = false.
func (g *Generator) Generate(ctx context.Context, organisationID, periodID, calculationID string) (domain.Report, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "report").
		Str("operation", "generate").
		Str("calculation_id", calculationID).
		Logger()

	calc, err := g.stores.GetCalculation(ctx, calculationID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load calculation: %w", err)
	}
	period, err := g.stores.GetPeriod(ctx, periodID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load reporting period: %w", err)
	}

	doc := g.buildDocument(calc, period)
	content, err := doc.Encode()
	if err != nil {
		return domain.Report{}, fmt.Errorf("encode report: %w", err)
	}

	verdict := SelfCheck(content)

	rep := domain.Report{
		ID:             domain.NewID(),
		OrganisationID: organisationID,
		PeriodID:       periodID,
		CalculationID:  calculationID,
		Type:           domain.ReportComplianceXML,
		Content:        content,
		Valid:          verdict.Valid,
		CheckFindings:  verdict.Findings,
		CreatedAt:      time.Now().UTC(),
	}
	if err := g.stores.PutReport(ctx, rep); err != nil {
		return domain.Report{}, fmt.Errorf("persist report: %w", err)
	}

	log.Info().
		Bool("valid", rep.Valid).
		Int("findings", len(rep.CheckFindings)).
		Int("bytes", len(content)).
		Msg("report generated")

	return rep, nil
}

// buildDocument assembles the fixed-schema document tree. Every ScopeDetail
// row of every product is carried through, so the wire format preserves full
// traceability, not just aggregates.
func (g *Generator) buildDocument(calc domain.Calculation, period domain.ReportingPeriod) *Element {
	root := El("CBAMReport").WithAttr("schemaVersion", g.schemaVersion)

	root.Add(El("Header",
		Text("GeneratedAt", time.Now().UTC().Format("2006-01-02")),
		Text("ReportType", string(domain.ReportComplianceXML)),
	))

	root.Add(El("Declarant",
		Text("Name", g.identity.DeclarantName),
		Text("Identifier", g.identity.DeclarantID),
		Text("Country", g.identity.CountryCode),
	))
	root.Add(El("Installation",
		Text("Name", g.identity.Installation),
		Text("Country", g.identity.CountryCode),
	))

	root.Add(El("ReportingPeriod",
		Text("Year", strconv.Itoa(period.Year)),
		Text("Quarter", strconv.Itoa(period.Quarter)),
		Text("StartDate", period.StartDate().Format("2006-01-02")),
		Text("EndDate", period.EndDate().Format("2006-01-02")),
	))

	goods := El("Goods")
	for _, p := range calc.Products {
		goods.Add(buildGood(p))
	}
	root.Add(goods)

	root.Add(El("Summary",
		El("Scope1Total", Value(calc.Scope1)),
		El("Scope2Total", Value(calc.Scope2)),
		El("Scope3Total", Value(calc.Scope3Total)),
		El("TotalEmissions", Value(calc.TotalEmissions)),
		El("TotalProduction", Value(calc.TotalProduction)),
	))

	return root
}

func buildGood(p domain.ProductCalculation) *Element {
	good := El("Good",
		Text("Name", p.ProductName),
		Text("CNCode", p.CNCode),
		El("Quantity", Value(p.ProductionQuantity)).WithAttr("unit", p.ProductionUnit),
		El("EmbeddedEmissions",
			El("Total", Value(p.SEETotal)),
			El("Direct", Value(p.SEEDirect)),
			El("Indirect", Value(p.SEEIndirect)),
		),
	)

	emissions := El("Emissions",
		El("Scope1", Value(p.Scope1)).Add(buildDetails(p.Scope1Details)...),
		El("Scope2", Value(p.Scope2)).Add(buildDetails(p.Scope2Details)...),
		El("Scope3", Value(p.Scope3Total)).Add(buildDetails(p.Scope3Details)...),
	)
	return good.Add(emissions)
}

func buildDetails(details []domain.ScopeDetail) []*Element {
	out := make([]*Element, 0, len(details))
	for _, d := range details {
		out = append(out, El("Detail",
			Text("Source", d.SourceName),
			El("Quantity", Value(d.Quantity)).WithAttr("unit", d.Unit),
			El("Factor", Value(d.Factor)),
			El("Emissions", Value(d.Emissions)),
			Text("FactorSource", d.FactorSource),
		))
	}
	return out
}
