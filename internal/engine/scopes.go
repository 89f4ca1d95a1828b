package engine

import (
	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/factors"
	"github.com/carbonfabric/cbam/internal/units"
)

// scopeAccum is the result of folding one scope's records: a running total
// plus one detail row per contributing source. Folds build a new accumulator
// per step instead of mutating shared state.
type scopeAccum struct {
	total   float64
	details []domain.ScopeDetail
}

// scope3Accum additionally tracks the direct/indirect split that Scope 3
// carries through to SEE weighting.
type scope3Accum struct {
	direct   float64
	indirect float64
	details  []domain.ScopeDetail
}

// foldFuel accumulates Scope 1 emissions from fuel combustion records. One
// detail row is emitted per input record, never merged, so every tonne of
// CO2e stays traceable to the record that produced it.
func foldFuel(resolver *factors.Resolver, records []domain.ActivityRecord) scopeAccum {
	acc := scopeAccum{}
	for _, rec := range records {
		res := resolver.Resolve(rec, domain.FactorFuel)

		qty, err := units.ToTonnes(rec.Quantity, rec.Unit)
		if err != nil {
			// Invalid quantities still produce a zero row; validation
			// reports them as errors.
			qty = 0
		}

		emissions := qty * res.Direct
		acc = scopeAccum{
			total: acc.total + emissions,
			details: append(acc.details, domain.ScopeDetail{
				SourceID:     rec.ID,
				SourceName:   rec.FuelName,
				Quantity:     rec.Quantity,
				Unit:         rec.Unit,
				Factor:       res.Direct,
				Emissions:    emissions,
				FactorSource: string(res.Provenance),
			}),
		}
	}
	return acc
}

// electricitySource is one of the up-to-three Scope 2 contributions carried
// by a single electricity record.
type electricitySource struct {
	source   domain.ElectricitySource
	name     string
	quantity float64
}

// splitElectricity expands a record into its per-source quantities. Records
// that only carry Source and Quantity are mapped onto the matching slot.
func splitElectricity(rec domain.ActivityRecord) []electricitySource {
	grid := rec.GridQuantity
	captive := rec.CaptiveQuantity
	renewable := rec.RenewableQuantity

	if grid == 0 && captive == 0 && renewable == 0 && rec.Quantity > 0 {
		switch rec.Source {
		case domain.ElectricityCaptive:
			captive = rec.Quantity
		case domain.ElectricityRenewable:
			renewable = rec.Quantity
		default:
			grid = rec.Quantity
		}
	}

	return []electricitySource{
		{domain.ElectricityGrid, "grid electricity", grid},
		{domain.ElectricityCaptive, "captive generation", captive},
		{domain.ElectricityRenewable, "renewable electricity", renewable},
	}
}

// foldElectricity accumulates Scope 2 emissions. Each record contributes up
// to three detail rows (grid, captive, renewable), one per source with a
// positive quantity. Renewable electricity is tracked for transparency but
// its factor is forced to zero regardless of any input.
func foldElectricity(resolver *factors.Resolver, records []domain.ActivityRecord) scopeAccum {
	acc := scopeAccum{}
	for _, rec := range records {
		for _, src := range splitElectricity(rec) {
			if src.quantity <= 0 {
				continue
			}

			mwh, err := units.ToMWh(src.quantity, rec.Unit)
			if err != nil {
				mwh = 0
			}

			var factor float64
			factorSource := string(factors.ProvenanceUnresolved)
			switch src.source {
			case domain.ElectricityRenewable:
				factor = 0
				factorSource = "renewable_zero"
			default:
				res := resolver.ResolveElectricity(rec, src.source)
				factor = res.Direct
				factorSource = string(res.Provenance)
				if res.Provenance == factors.ProvenanceUnresolved {
					if src.source == domain.ElectricityCaptive {
						factor = DefaultCaptiveFactor
					} else {
						factor = DefaultGridFactor
					}
					factorSource = "default"
				}
			}

			emissions := mwh * factor
			acc = scopeAccum{
				total: acc.total + emissions,
				details: append(acc.details, domain.ScopeDetail{
					SourceID:     rec.ID,
					SourceName:   src.name,
					Quantity:     src.quantity,
					Unit:         rec.Unit,
					Factor:       factor,
					Emissions:    emissions,
					FactorSource: factorSource,
				}),
			}
		}
	}
	return acc
}

// foldPrecursors accumulates Scope 3 emissions from purchased precursor
// materials, tracking direct and indirect components separately.
func foldPrecursors(resolver *factors.Resolver, records []domain.ActivityRecord) scope3Accum {
	acc := scope3Accum{}
	for _, rec := range records {
		res := resolver.Resolve(rec, domain.FactorPrecursorDefault)

		qty, err := units.ToTonnes(rec.Quantity, rec.Unit)
		if err != nil {
			qty = 0
		}

		direct := qty * res.Direct
		indirect := qty * res.Indirect
		acc = scope3Accum{
			direct:   acc.direct + direct,
			indirect: acc.indirect + indirect,
			details: append(acc.details, domain.ScopeDetail{
				SourceID:     rec.ID,
				SourceName:   rec.MaterialName,
				Quantity:     rec.Quantity,
				Unit:         rec.Unit,
				Factor:       res.Total(),
				Emissions:    direct + indirect,
				FactorSource: string(res.Provenance),
			}),
		}
	}
	return acc
}
