package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name       string
		severities []Severity
		want       ValidationStatus
		errors     int
		warnings   int
		infos      int
	}{
		{"no findings", nil, ValidationPassed, 0, 0, 0},
		{"info only", []Severity{SeverityInfo}, ValidationPassed, 0, 0, 1},
		{"warning", []Severity{SeverityInfo, SeverityWarning}, ValidationWarnings, 0, 1, 1},
		{"error dominates", []Severity{SeverityWarning, SeverityError, SeverityInfo}, ValidationFailed, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidationResult{}
			for _, s := range tt.severities {
				r.Findings = append(r.Findings, Finding{Severity: s})
			}
			r.DeriveStatus()
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, tt.errors, r.ErrorCount)
			assert.Equal(t, tt.warnings, r.WarningCount)
			assert.Equal(t, tt.infos, r.InfoCount)
		})
	}
}

func TestDeriveStatusRecounts(t *testing.T) {
	r := ValidationResult{ErrorCount: 99, Status: ValidationFailed}
	r.DeriveStatus()
	assert.Zero(t, r.ErrorCount)
	assert.Equal(t, ValidationPassed, r.Status)
}
