package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodID(t *testing.T) {
	tests := []struct {
		id      string
		year    int
		quarter int
		wantErr bool
	}{
		{"2026-Q1", 2026, 1, false},
		{"2025-Q4", 2025, 4, false},
		{"2026-Q5", 0, 0, true},
		{"2026Q1", 0, 0, true},
		{"26-Q1", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, err := ParsePeriodID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, p.Year)
			assert.Equal(t, tt.quarter, p.Quarter)
			assert.Equal(t, tt.id, p.ID)
		})
	}
}

func TestPeriodDates(t *testing.T) {
	tests := []struct {
		quarter int
		start   string
		end     string
	}{
		{1, "2026-01-01", "2026-03-31"},
		{2, "2026-04-01", "2026-06-30"},
		{3, "2026-07-01", "2026-09-30"},
		{4, "2026-10-01", "2026-12-31"},
	}
	for _, tt := range tests {
		p := ReportingPeriod{Year: 2026, Quarter: tt.quarter}
		assert.Equal(t, tt.start, p.StartDate().Format(time.DateOnly))
		assert.Equal(t, tt.end, p.EndDate().Format(time.DateOnly))
	}
}
