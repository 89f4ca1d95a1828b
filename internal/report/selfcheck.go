package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/carbonfabric/cbam/internal/domain"
)

// Verdict is the outcome of re-validating a rendered report.
type Verdict struct {
	Valid    bool
	Findings []domain.Finding
}

// requiredElements are the top-level elements a well-formed report carries.
var requiredElements = []string{
	"Header", "Declarant", "Installation", "ReportingPeriod", "Goods", "Summary",
}

// emissionParents are the elements whose Value children carry emissions, as
// opposed to quantities or factors. Only these participate in the all-zero
// completeness warning.
var emissionParents = map[string]bool{
	"Scope1": true, "Scope2": true, "Scope3": true,
	"Scope1Total": true, "Scope2Total": true, "Scope3Total": true,
	"Total": true, "Direct": true, "Indirect": true,
	"TotalEmissions": true, "Emissions": true,
}

// SelfCheck re-parses a rendered report and verifies it independently of the
// builder that produced it: required top-level elements are present, CN codes
// are 8 digits, every numeric Value respects the 9-integer/7-fraction digit
// format, and at least one emission value is non-zero.
//
// The verdict does not block persistence; a structurally invalid report is
// still stored for inspection, but callers deciding whether to submit must
// treat Valid = false as a hard stop.
func SelfCheck(content []byte) Verdict {
	v := Verdict{}

	seen := make(map[string]bool)
	allZero := true
	sawEmission := false

	decoder := xml.NewDecoder(bytes.NewReader(content))
	var stack []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			v.Findings = append(v.Findings, domain.Finding{
				Severity: domain.SeverityError,
				Category: domain.CategoryNumericFormat,
				Field:    "document",
				Message:  fmt.Sprintf("report is not well-formed XML: %v", err),
			})
			v.Valid = false
			return v
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if len(stack) == 2 {
				seen[t.Name.Local] = true
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || len(stack) == 0 {
				break
			}
			switch stack[len(stack)-1] {
			case "Value":
				v.Findings = append(v.Findings, checkValueText(text)...)
				if len(stack) >= 2 && emissionParents[stack[len(stack)-2]] {
					sawEmission = true
					if !isZeroValue(text) {
						allZero = false
					}
				}
			case "CNCode":
				v.Findings = append(v.Findings, checkCNCodeText(text)...)
			}
		}
	}

	for _, name := range requiredElements {
		if !seen[name] {
			v.Findings = append(v.Findings, domain.Finding{
				Severity: domain.SeverityError,
				Category: domain.CategoryCompleteness,
				Field:    name,
				Message:  fmt.Sprintf("required element %s is missing", name),
			})
		}
	}

	if sawEmission && allZero {
		v.Findings = append(v.Findings, domain.Finding{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryCompleteness,
			Field:      "Value",
			Message:    "all emission values are zero",
			Suggestion: "verify completeness of activity data and emission factors",
		})
	}

	v.Valid = true
	for _, f := range v.Findings {
		if f.Severity == domain.SeverityError {
			v.Valid = false
			break
		}
	}
	return v
}

func checkValueText(text string) []domain.Finding {
	intDigits, fracDigits, ok := parseValueFormat(text)
	if !ok {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Category: domain.CategoryNumericFormat,
			Field:    "Value",
			Message:  fmt.Sprintf("value %q is not in the fixed-point wire format", text),
		}}
	}
	if intDigits > maxIntegerDigits || fracDigits > fractionDigits {
		return []domain.Finding{{
			Severity: domain.SeverityError,
			Category: domain.CategoryNumericFormat,
			Field:    "Value",
			Message: fmt.Sprintf("value %q exceeds %d integer / %d fraction digits",
				text, maxIntegerDigits, fractionDigits),
		}}
	}
	return nil
}

func checkCNCodeText(text string) []domain.Finding {
	if len(text) != 8 {
		return invalidCNCode(text)
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return invalidCNCode(text)
		}
	}
	return nil
}

func invalidCNCode(text string) []domain.Finding {
	return []domain.Finding{{
		Severity: domain.SeverityError,
		Category: domain.CategoryProductData,
		Field:    "CNCode",
		Message:  fmt.Sprintf("CN code %q is not 8 ASCII digits", text),
	}}
}

// isZeroValue reports whether a wire-format number is exactly zero.
func isZeroValue(text string) bool {
	for _, r := range strings.TrimPrefix(text, "-") {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}
