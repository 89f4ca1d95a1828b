package engine

import (
	"context"
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

// tolerance for floating-point comparisons over summed allocations.
const epsilon = 1e-6

func production(id, product, cn string, qty float64) domain.ActivityRecord {
	return domain.ActivityRecord{
		ID: id, OrganisationID: testOrg, PeriodID: testPeriod,
		Kind: domain.ActivityProduction, Year: 2026, Month: 1,
		Quantity: qty, Unit: "t",
		ProductName: product, CNCode: cn,
	}
}

func fuel(id, name, unit string, qty float64) domain.ActivityRecord {
	return domain.ActivityRecord{
		ID: id, OrganisationID: testOrg, PeriodID: testPeriod,
		Kind: domain.ActivityFuel, Year: 2026, Month: 1,
		Quantity: qty, Unit: unit, FuelName: name,
	}
}

func electricity(id string, grid, captive, renewable float64) domain.ActivityRecord {
	return domain.ActivityRecord{
		ID: id, OrganisationID: testOrg, PeriodID: testPeriod,
		Kind: domain.ActivityElectricity, Year: 2026, Month: 1,
		Unit: "kWh", GridQuantity: grid, CaptiveQuantity: captive, RenewableQuantity: renewable,
	}
}

func precursor(id, material string, qty float64) domain.ActivityRecord {
	return domain.ActivityRecord{
		ID: id, OrganisationID: testOrg, PeriodID: testPeriod,
		Kind: domain.ActivityPrecursor, Year: 2026, Month: 1,
		Quantity: qty, Unit: "t", MaterialName: material,
	}
}

func seed(t *testing.T, records ...domain.ActivityRecord) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()
	for _, r := range records {
		require.NoError(t, mem.PutActivity(ctx, r))
	}
	return mem
}

func run(t *testing.T, mem *store.Memory) domain.Calculation {
	t.Helper()
	calc, err := New(mem).Run(context.Background(), RunRequest{
		OrganisationID: testOrg, PeriodID: testPeriod,
	})
	require.NoError(t, err)
	return calc
}

func TestRunNoProductionData(t *testing.T) {
	mem := seed(t, fuel("f1", "natural gas", "m3", 100))

	_, err := New(mem).Run(context.Background(), RunRequest{
		OrganisationID: testOrg, PeriodID: testPeriod,
	})
	require.ErrorIs(t, err, ErrNoProductionData)
	assert.Contains(t, err.Error(), "No production data")
}

func TestScope1NaturalGas(t *testing.T) {
	// 10,000 m3 of natural gas at 0.00202 tCO2e/m3 over 500 t of product.
	mem := seed(t,
		production("p1", "Cement", "25231000", 500),
		fuel("f1", "Natural Gas", "m3", 10000),
	)
	require.NoError(t, mem.PutFactor(context.Background(), domain.EmissionFactor{
		ID: "ef1", Type: domain.FactorFuel, Name: "Natural Gas", Value: 0.00202, IsActive: true,
	}))

	calc := run(t, mem)
	assert.InDelta(t, 20.2, calc.Scope1, 0.1)
	assert.InDelta(t, calc.Scope1, calc.TotalEmissions, 0.1)
}

func TestScope2GridDefaultFactor(t *testing.T) {
	// 100,000 kWh of grid electricity falls back to the 0.716 tCO2e/MWh default.
	mem := seed(t,
		production("p1", "Cement", "25231000", 500),
		electricity("e1", 100000, 0, 0),
	)

	calc := run(t, mem)
	assert.InDelta(t, 71.6, calc.Scope2, 0.1)
}

func TestScope2CaptiveDefaultFactor(t *testing.T) {
	mem := seed(t,
		production("p1", "Cement", "25231000", 500),
		electricity("e1", 0, 10000, 0),
	)

	calc := run(t, mem)
	// 10 MWh at the 0.8 captive default.
	assert.InDelta(t, 8.0, calc.Scope2, 0.001)
}

func TestRenewableNeutrality(t *testing.T) {
	// Renewable electricity contributes exactly zero regardless of magnitude
	// or any factor supplied on the record.
	inline := 5.0
	rec := electricity("e1", 0, 0, 99999999)
	rec.InlineFactor = &inline
	mem := seed(t, production("p1", "Cement", "25231000", 500), rec)

	calc := run(t, mem)
	assert.Zero(t, calc.Scope2)

	// The renewable row is still present for transparency.
	require.Len(t, calc.Products, 1)
	require.Len(t, calc.Products[0].Scope2Details, 1)
	detail := calc.Products[0].Scope2Details[0]
	assert.Equal(t, "renewable electricity", detail.SourceName)
	assert.Zero(t, detail.Factor)
	assert.Zero(t, detail.Emissions)
}

func TestScope3SupplierDeclaration(t *testing.T) {
	// 1,000 t of precursor at direct 1.5 + indirect 0.3 gives 1,800 tCO2e.
	mem := seed(t,
		production("p1", "Steel Sheet", "72081000", 500),
		precursor("pr1", "Coke", 1000),
	)
	require.NoError(t, mem.PutDeclaration(context.Background(), domain.SupplierDeclaration{
		ID: "d1", OrganisationID: testOrg, PeriodID: testPeriod,
		ProductName: "Coke", DirectFactor: 1.5, IndirectFactor: 0.3,
		Status: domain.DeclarationVerified,
	}))

	calc := run(t, mem)
	assert.InDelta(t, 1800, calc.Scope3Total, 1)
	assert.InDelta(t, 1500, calc.Scope3Direct, 1)
	assert.InDelta(t, 300, calc.Scope3Indirect, 1)
}

func TestAllocationByProductionShare(t *testing.T) {
	// Two products at 300 t and 200 t share one electricity record of
	// 100,000 kWh at the grid default: 60%/40% split of 71.6 tCO2e.
	mem := seed(t,
		production("p1", "Rebar", "72142000", 300),
		production("p2", "Wire Rod", "72171000", 200),
		electricity("e1", 100000, 0, 0),
	)

	calc := run(t, mem)
	require.Len(t, calc.Products, 2)
	assert.InDelta(t, 500, calc.TotalProduction, epsilon)

	// Products are ordered by production quantity descending.
	assert.Equal(t, "Rebar", calc.Products[0].ProductName)
	assert.InDelta(t, 42.96, calc.Products[0].Scope2, 0.01)
	assert.InDelta(t, 28.64, calc.Products[1].Scope2, 0.01)

	// Detail rows are scaled by the same share.
	require.Len(t, calc.Products[0].Scope2Details, 1)
	assert.InDelta(t, 42.96, calc.Products[0].Scope2Details[0].Emissions, 0.01)
	assert.InDelta(t, 60000, calc.Products[0].Scope2Details[0].Quantity, epsilon)
}

func TestAllocationSumInvariant(t *testing.T) {
	inline := 0.1
	fuelRec := fuel("f1", "Heavy Oil", "kg", 250000)
	fuelRec.InlineFactor = &inline
	mem := seed(t,
		production("p1", "A", "72081000", 125),
		production("p2", "B", "72082000", 375),
		production("p3", "C", "72083000", 1),
		fuelRec,
		electricity("e1", 123456, 789, 1000),
		precursor("pr1", "Coke", 42),
	)
	require.NoError(t, mem.PutDeclaration(context.Background(), domain.SupplierDeclaration{
		ID: "d1", OrganisationID: testOrg, PeriodID: testPeriod,
		ProductName: "Coke", DirectFactor: 1.5, IndirectFactor: 0.3,
		Status: domain.DeclarationVerified,
	}))

	calc := run(t, mem)

	var s1, s2, s3, total float64
	for _, p := range calc.Products {
		s1 += p.Scope1
		s2 += p.Scope2
		s3 += p.Scope3Total
		total += p.TotalEmissions
	}
	assert.InDelta(t, calc.Scope1, s1, epsilon)
	assert.InDelta(t, calc.Scope2, s2, epsilon)
	assert.InDelta(t, calc.Scope3Total, s3, epsilon)
	assert.InDelta(t, calc.TotalEmissions, total, epsilon)

	// Per-product identities.
	for _, p := range calc.Products {
		assert.InDelta(t, p.Scope1+p.Scope2+p.Scope3Total, p.TotalEmissions, epsilon)
		if p.ProductionQuantity > 0 {
			assert.InDelta(t, p.TotalEmissions/p.ProductionQuantity, p.SEETotal, epsilon)
			assert.InDelta(t, (p.Scope1+p.Scope3Direct)/p.ProductionQuantity, p.SEEDirect, epsilon)
			assert.InDelta(t, (p.Scope2+p.Scope3Indirect)/p.ProductionQuantity, p.SEEIndirect, epsilon)
		}
	}
}

func TestZeroDivisionSafety(t *testing.T) {
	// A production record with zero quantity passes the fail-fast guard but
	// must not divide by zero anywhere.
	mem := seed(t,
		production("p1", "Empty", "72081000", 0),
		electricity("e1", 100000, 0, 0),
	)

	calc := run(t, mem)
	require.Len(t, calc.Products, 1)
	assert.Zero(t, calc.TotalProduction)
	assert.Zero(t, calc.Products[0].SEETotal)
	assert.Zero(t, calc.Products[0].SEEDirect)
	assert.Zero(t, calc.Products[0].SEEIndirect)
	assert.Zero(t, calc.Products[0].Scope2)
}

func TestIdempotentRecompute(t *testing.T) {
	mem := seed(t,
		production("p1", "Cement", "25231000", 500),
		electricity("e1", 100000, 0, 0),
	)

	first := run(t, mem)
	second := run(t, mem)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Version+1, second.Version)
	assert.InDelta(t, first.Scope1, second.Scope1, epsilon)
	assert.InDelta(t, first.Scope2, second.Scope2, epsilon)
	assert.InDelta(t, first.Scope3Total, second.Scope3Total, epsilon)
	assert.InDelta(t, first.TotalEmissions, second.TotalEmissions, epsilon)
}

func TestFinalizedCalculationIsNeverOverwritten(t *testing.T) {
	mem := seed(t,
		production("p1", "Cement", "25231000", 500),
	)

	first := run(t, mem)
	require.NoError(t, mem.SetCalculationStatus(context.Background(), first.ID, domain.CalculationFinalized))

	_, err := New(mem).Run(context.Background(), RunRequest{
		OrganisationID: testOrg, PeriodID: testPeriod,
	})
	require.ErrorIs(t, err, store.ErrFinalized)
}

func TestUnresolvedFactorStillProducesRow(t *testing.T) {
	mem := seed(t,
		production("p1", "Cement", "25231000", 500),
		fuel("f1", "mystery fuel", "t", 10),
	)

	calc := run(t, mem)
	assert.Zero(t, calc.Scope1)
	require.Len(t, calc.Products, 1)
	require.Len(t, calc.Products[0].Scope1Details, 1)
	assert.Equal(t, "unresolved", calc.Products[0].Scope1Details[0].FactorSource)
}

func TestFuelDetailsAreNotMerged(t *testing.T) {
	mem := seed(t,
		production("p1", "Cement", "25231000", 500),
		fuel("f1", "Natural Gas", "m3", 4000),
		fuel("f2", "Natural Gas", "m3", 6000),
	)
	require.NoError(t, mem.PutFactor(context.Background(), domain.EmissionFactor{
		ID: "ef1", Type: domain.FactorFuel, Name: "Natural Gas", Value: 0.00202, IsActive: true,
	}))

	calc := run(t, mem)
	require.Len(t, calc.Products, 1)
	details := calc.Products[0].Scope1Details
	require.Len(t, details, 2)
	assert.Equal(t, "f1", details[0].SourceID)
	assert.Equal(t, "f2", details[1].SourceID)
}
