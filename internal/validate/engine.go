// Package validate runs rule-based checks over the activity data, supplier
// master data and calculation results of one reporting period, producing a
// severity-classified list of findings and an overall verdict.
package validate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/logging"
	"github.com/carbonfabric/cbam/internal/store"
)

// Thresholds are the tunable plausibility bounds the rules apply. The zero
// value is not usable; start from DefaultThresholds.
type Thresholds struct {
	// ElectricityOutlierKWh flags monthly electricity volumes above this
	// value as outliers.
	ElectricityOutlierKWh float64

	// SEEUpperBound and SEELowerBound delimit plausible specific embedded
	// emissions in tCO2e per tonne. Values outside are warnings, not
	// errors; extreme processes exist.
	SEEUpperBound float64
	SEELowerBound float64

	// MaxIntegerDigits and MaxFractionDigits mirror the wire format's
	// precision ceiling. Values exceeding them must fail validation
	// before report generation is attempted.
	MaxIntegerDigits  int
	MaxFractionDigits int

	// MinElectricityMonths is the expected number of distinct months of
	// electricity data in a quarterly period.
	MinElectricityMonths int
}

// DefaultThresholds returns the standard rule bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ElectricityOutlierKWh: 10_000_000,
		SEEUpperBound:         50,
		SEELowerBound:         0.01,
		MaxIntegerDigits:      16,
		MaxFractionDigits:     7,
		MinElectricityMonths:  3,
	}
}

// Stores is the read surface the checks query plus the validation history.
type Stores interface {
	store.ActivityStore
	store.ReferenceStore
	store.DeclarationStore
	store.CalculationStore
	store.ValidationStore
}

// Engine is the validation engine.
type Engine struct {
	stores     Stores
	thresholds Thresholds
}

// Option customises an Engine.
type Option func(*Engine)

// WithThresholds overrides the default rule bounds.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// New creates a validation engine over the given stores.
func New(stores Stores, opts ...Option) *Engine {
	e := &Engine{stores: stores, thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request scopes one validation run. CalculationID is optional; when empty
// the calculation check group is skipped.
type Request struct {
	OrganisationID string
	PeriodID       string
	CalculationID  string
}

// checkGroup is one independent rule family. Groups are read-only and
// order-independent, so Run executes them concurrently.
type checkGroup func(ctx context.Context) ([]domain.Finding, error)

// Run executes all check groups, derives the verdict and appends the result
// to the validation history. A passing or warnings-only run advances the
// referenced calculation to VALIDATED.
func (e *Engine) Run(ctx context.Context, req Request) (domain.ValidationResult, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "validate").
		Str("operation", "run").
		Str("organisation_id", req.OrganisationID).
		Str("period_id", req.PeriodID).
		Logger()
	start := time.Now()

	groups := []checkGroup{
		func(ctx context.Context) ([]domain.Finding, error) { return e.checkProducts(ctx, req) },
		func(ctx context.Context) ([]domain.Finding, error) { return e.checkActivity(ctx, req) },
		func(ctx context.Context) ([]domain.Finding, error) { return e.checkSuppliers(ctx, req) },
		func(ctx context.Context) ([]domain.Finding, error) { return e.checkCalculation(ctx, req) },
		func(ctx context.Context) ([]domain.Finding, error) { return e.checkCompleteness(ctx, req) },
	}

	// Each group writes its own slot; ordering of the final list is the
	// fixed group order, independent of completion order.
	slots := make([][]domain.Finding, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			findings, err := group(gctx)
			if err != nil {
				return err
			}
			slots[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validation checks: %w", err)
	}

	result := domain.ValidationResult{
		ID:             domain.NewID(),
		OrganisationID: req.OrganisationID,
		PeriodID:       req.PeriodID,
		CalculationID:  req.CalculationID,
		CreatedAt:      time.Now().UTC(),
	}
	for _, findings := range slots {
		result.Findings = append(result.Findings, findings...)
	}
	result.DeriveStatus()

	if err := e.stores.AppendValidation(ctx, result); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("append validation result: %w", err)
	}

	if req.CalculationID != "" && result.Status != domain.ValidationFailed {
		if err := e.stores.SetCalculationStatus(ctx, req.CalculationID, domain.CalculationValidated); err != nil {
			return domain.ValidationResult{}, fmt.Errorf("advance calculation status: %w", err)
		}
	}

	log.Info().
		Str("status", string(result.Status)).
		Int("errors", result.ErrorCount).
		Int("warnings", result.WarningCount).
		Int("infos", result.InfoCount).
		Dur("elapsed", time.Since(start)).
		Msg("validation complete")

	return result, nil
}
