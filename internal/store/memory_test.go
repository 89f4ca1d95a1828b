package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonfabric/cbam/internal/domain"
)

func TestMemoryActivityFilter(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.PutActivity(ctx, domain.ActivityRecord{
		ID: "a1", OrganisationID: "ORG1", PeriodID: "2026-Q1", FacilityID: "F1",
		Kind: domain.ActivityFuel, Year: 2026, Month: 3,
	}))
	require.NoError(t, mem.PutActivity(ctx, domain.ActivityRecord{
		ID: "a2", OrganisationID: "ORG1", PeriodID: "2026-Q1", FacilityID: "F2",
		Kind: domain.ActivityFuel, Year: 2026, Month: 1,
	}))
	require.NoError(t, mem.PutActivity(ctx, domain.ActivityRecord{
		ID: "a3", OrganisationID: "ORG1", PeriodID: "2026-Q2",
		Kind: domain.ActivityFuel, Year: 2026, Month: 4,
	}))

	records, err := mem.ListActivity(ctx, ActivityFilter{OrganisationID: "ORG1", PeriodID: "2026-Q1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Sorted by year then month.
	assert.Equal(t, "a2", records[0].ID)
	assert.Equal(t, "a1", records[1].ID)

	records, err = mem.ListActivity(ctx, ActivityFilter{
		OrganisationID: "ORG1", PeriodID: "2026-Q1", FacilityID: "F2",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a2", records[0].ID)
}

func TestMemoryUpsertCalculation(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	first, err := mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: "ORG1", PeriodID: "2026-Q1", Status: domain.CalculationCalculated,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	second, err := mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: "ORG1", PeriodID: "2026-Q1", Status: domain.CalculationCalculated,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Version)

	require.NoError(t, mem.SetCalculationStatus(ctx, first.ID, domain.CalculationFinalized))
	_, err = mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: "ORG1", PeriodID: "2026-Q1", Status: domain.CalculationCalculated,
	})
	require.ErrorIs(t, err, ErrFinalized)
}

func TestMemoryFinalizeCalculation(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	calc, err := mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: "ORG1", PeriodID: "2026-Q1", Status: domain.CalculationCalculated,
	})
	require.NoError(t, err)

	// Only a validated calculation can be finalized.
	require.ErrorIs(t, mem.FinalizeCalculation(ctx, calc.ID), ErrNotValidated)

	require.NoError(t, mem.SetCalculationStatus(ctx, calc.ID, domain.CalculationValidated))
	require.NoError(t, mem.FinalizeCalculation(ctx, calc.ID))

	got, err := mem.GetCalculation(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CalculationFinalized, got.Status)

	// Finalizing twice is a no-op; the lock then blocks upserts.
	require.NoError(t, mem.FinalizeCalculation(ctx, calc.ID))
	_, err = mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: "ORG1", PeriodID: "2026-Q1", Status: domain.CalculationCalculated,
	})
	require.ErrorIs(t, err, ErrFinalized)

	require.ErrorIs(t, mem.FinalizeCalculation(ctx, "nope"), ErrNotFound)
}

func TestMemoryFindCalculation(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	_, found := mem.FindCalculation("ORG1", "2026-Q1")
	assert.False(t, found)

	calc, err := mem.UpsertCalculation(ctx, domain.Calculation{
		OrganisationID: "ORG1", PeriodID: "2026-Q1", Status: domain.CalculationCalculated,
	})
	require.NoError(t, err)

	got, found := mem.FindCalculation("ORG1", "2026-q1")
	require.True(t, found)
	assert.Equal(t, calc.ID, got.ID)
}

func TestMemoryValidationHistoryOrder(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, mem.AppendValidation(ctx, domain.ValidationResult{
		ID: "v1", OrganisationID: "ORG1", PeriodID: "2026-Q1", CreatedAt: base,
	}))
	require.NoError(t, mem.AppendValidation(ctx, domain.ValidationResult{
		ID: "v2", OrganisationID: "ORG1", PeriodID: "2026-Q1", CreatedAt: base.Add(time.Hour),
	}))

	history, err := mem.ListValidations(ctx, "ORG1", "2026-Q1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "v2", history[0].ID)
}
