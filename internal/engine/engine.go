// Package engine computes embedded greenhouse-gas emissions for one
// organisation and reporting period: Scope 1 (fuel combustion), Scope 2
// (purchased electricity) and Scope 3 (precursor materials), allocated across
// products by production share.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/factors"
	"github.com/carbonfabric/cbam/internal/logging"
	"github.com/carbonfabric/cbam/internal/store"
)

// Default Scope 2 emission factors, tCO2e per MWh, applied when no factor
// resolves for an electricity source.
const (
	// DefaultGridFactor is the grid-average intensity fallback.
	DefaultGridFactor = 0.716

	// DefaultCaptiveFactor is the captive/backup generation fallback.
	DefaultCaptiveFactor = 0.8
)

// Stores is the persistence surface the engine reads from and writes to.
type Stores interface {
	store.ActivityStore
	store.ReferenceStore
	store.DeclarationStore
	store.CalculationStore
}

// Engine is the calculation engine. It holds no per-run state; every Run
// builds a fresh factor index and folds the period's records into a new
// Calculation.
type Engine struct {
	stores Stores
}

// New creates a calculation engine over the given stores.
func New(stores Stores) *Engine {
	return &Engine{stores: stores}
}

// RunRequest scopes one calculation run.
type RunRequest struct {
	OrganisationID string
	PeriodID       string

	// FacilityID optionally narrows the run to one facility.
	FacilityID string
}

// Run computes and persists the Calculation for the requested scope.
//
// It fails fast with ErrNoProductionData when the period has no production
// records. Unresolvable emission factors never fail the run; they produce
// zero-factor rows that validation flags afterwards. The result is persisted
// through an atomic upsert keyed on (organisation, period, status not
// FINALIZED), incrementing the version; a finalized calculation is never
// overwritten.
func (e *Engine) Run(ctx context.Context, req RunRequest) (domain.Calculation, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "run").
		Str("organisation_id", req.OrganisationID).
		Str("period_id", req.PeriodID).
		Logger()
	start := time.Now()

	production, err := e.listActivity(ctx, req, domain.ActivityProduction)
	if err != nil {
		return domain.Calculation{}, err
	}
	if len(production) == 0 {
		log.Warn().Msg("no production records, aborting calculation")
		return domain.Calculation{}, ErrNoProductionData
	}

	electricity, err := e.listActivity(ctx, req, domain.ActivityElectricity)
	if err != nil {
		return domain.Calculation{}, err
	}
	fuel, err := e.listActivity(ctx, req, domain.ActivityFuel)
	if err != nil {
		return domain.Calculation{}, err
	}
	precursors, err := e.listActivity(ctx, req, domain.ActivityPrecursor)
	if err != nil {
		return domain.Calculation{}, err
	}

	resolver, err := factors.NewResolver(ctx, e.stores, e.stores, req.OrganisationID, req.PeriodID)
	if err != nil {
		return domain.Calculation{}, err
	}

	scope1 := foldFuel(resolver, fuel)
	scope2 := foldElectricity(resolver, electricity)
	scope3 := foldPrecursors(resolver, precursors)

	calc := domain.Calculation{
		OrganisationID: req.OrganisationID,
		PeriodID:       req.PeriodID,
		FacilityID:     req.FacilityID,
		Scope1:         scope1.total,
		Scope2:         scope2.total,
		Scope3Direct:   scope3.direct,
		Scope3Indirect: scope3.indirect,
		Scope3Total:    scope3.direct + scope3.indirect,
		Status:         domain.CalculationCalculated,
	}
	calc.TotalEmissions = calc.Scope1 + calc.Scope2 + calc.Scope3Total

	calc.Products, calc.TotalProduction = allocate(production, scope1, scope2, scope3)

	persisted, err := e.stores.UpsertCalculation(ctx, calc)
	if err != nil {
		return domain.Calculation{}, fmt.Errorf("persist calculation: %w", err)
	}

	log.Info().
		Int("products", len(persisted.Products)).
		Int("version", persisted.Version).
		Float64("total_emissions", persisted.TotalEmissions).
		Dur("elapsed", time.Since(start)).
		Msg("calculation complete")

	return persisted, nil
}

func (e *Engine) listActivity(ctx context.Context, req RunRequest, kind domain.ActivityKind) ([]domain.ActivityRecord, error) {
	records, err := e.stores.ListActivity(ctx, store.ActivityFilter{
		OrganisationID: req.OrganisationID,
		PeriodID:       req.PeriodID,
		FacilityID:     req.FacilityID,
		Kind:           kind,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s records: %w", kind, err)
	}
	return records, nil
}
