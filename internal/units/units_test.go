package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTonnes(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		unit     string
		want     float64
		wantErr  error
	}{
		{name: "kilograms", quantity: 2500, unit: "kg", want: 2.5},
		{name: "tonnes pass through", quantity: 12, unit: "t", want: 12},
		{name: "litres use diesel density", quantity: 1000, unit: "l", want: 0.84},
		{name: "litre spelled out", quantity: 1000, unit: "litre", want: 0.84},
		{name: "cubic metres keep native scale", quantity: 10000, unit: "m3", want: 10000},
		{name: "unit matching is case-insensitive", quantity: 500, unit: "KG", want: 0.5},
		{name: "zero quantity", quantity: 0, unit: "kg", want: 0},
		{name: "negative quantity", quantity: -1, unit: "kg", wantErr: ErrNegativeQuantity},
		{name: "NaN", quantity: math.NaN(), unit: "kg", wantErr: ErrNotFinite},
		{name: "infinity", quantity: math.Inf(1), unit: "t", wantErr: ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTonnes(tt.quantity, tt.unit)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestToMWh(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		unit     string
		want     float64
		wantErr  error
	}{
		{name: "kWh divided by 1000", quantity: 100000, unit: "kWh", want: 100},
		{name: "MWh pass through", quantity: 42, unit: "MWh", want: 42},
		{name: "unknown unit treated as kWh", quantity: 1000, unit: "", want: 1},
		{name: "negative quantity", quantity: -5, unit: "kWh", wantErr: ErrNegativeQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMWh(tt.quantity, tt.unit)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
