package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carbonfabric/cbam/internal/domain"
)

// Severity colors follow the usual traffic-light convention.
func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	case domain.SeverityWarning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	}
}

func headingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
}

func dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
}

// printer renders numbers with locale-aware separators.
var printer = message.NewPrinter(language.English) //nolint:gochecknoglobals // Shared formatter, read-only

func renderCalculation(w io.Writer, calc domain.Calculation) {
	fmt.Fprintln(w, headingStyle().Render(
		printer.Sprintf("Calculation %s (version %d)", calc.ID, calc.Version)))
	printer.Fprintf(w, "  Scope 1 (direct):     %12.4f tCO2e\n", calc.Scope1)
	printer.Fprintf(w, "  Scope 2 (indirect):   %12.4f tCO2e\n", calc.Scope2)
	printer.Fprintf(w, "  Scope 3 (precursors): %12.4f tCO2e\n", calc.Scope3Total)
	printer.Fprintf(w, "  Total emissions:      %12.4f tCO2e\n", calc.TotalEmissions)
	printer.Fprintf(w, "  Total production:     %12.4f t\n", calc.TotalProduction)

	for _, p := range calc.Products {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s %s\n", headingStyle().Render(p.ProductName),
			dimStyle().Render("CN "+p.CNCode))
		printer.Fprintf(w, "    production %.2f %s, emissions %.4f tCO2e, SEE %.4f tCO2e/t\n",
			p.ProductionQuantity, p.ProductionUnit, p.TotalEmissions, p.SEETotal)
	}
}

func renderValidationResult(w io.Writer, res domain.ValidationResult) {
	style := severityStyle(domain.SeverityInfo)
	switch res.Status {
	case domain.ValidationFailed:
		style = severityStyle(domain.SeverityError)
	case domain.ValidationWarnings:
		style = severityStyle(domain.SeverityWarning)
	}

	fmt.Fprintf(w, "%s  %s\n", style.Render(string(res.Status)),
		printer.Sprintf("%d errors, %d warnings, %d info", res.ErrorCount, res.WarningCount, res.InfoCount))

	for _, f := range res.Findings {
		fmt.Fprintf(w, "  %s %s %s\n",
			severityStyle(f.Severity).Render(fmt.Sprintf("%-7s", f.Severity)),
			dimStyle().Render(fmt.Sprintf("[%s/%s]", f.Category, f.Field)),
			f.Message)
		if f.Suggestion != "" {
			fmt.Fprintf(w, "          %s\n", dimStyle().Render("hint: "+f.Suggestion))
		}
	}
}

func renderValidationHistory(w io.Writer, results []domain.ValidationResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No validation runs recorded for this period")
		return
	}
	for _, res := range results {
		fmt.Fprintf(w, "%s  %-9s %s\n",
			res.CreatedAt.Format("2006-01-02 15:04:05"),
			res.Status,
			printer.Sprintf("%d errors, %d warnings, %d info",
				res.ErrorCount, res.WarningCount, res.InfoCount))
	}
}

func renderReportVerdict(w io.Writer, rep domain.Report, outPath string) {
	if rep.Valid {
		fmt.Fprintf(w, "%s report %s generated\n",
			lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("VALID"), rep.ID)
	} else {
		fmt.Fprintf(w, "%s report %s failed self-check\n",
			severityStyle(domain.SeverityError).Render("INVALID"), rep.ID)
	}
	for _, f := range rep.CheckFindings {
		fmt.Fprintf(w, "  %s %s\n",
			severityStyle(f.Severity).Render(fmt.Sprintf("%-7s", f.Severity)), f.Message)
	}
	if outPath != "" {
		fmt.Fprintf(w, "  written to %s\n", outPath)
	}
}

func renderFactors(w io.Writer, factors []domain.EmissionFactor) {
	if len(factors) == 0 {
		fmt.Fprintln(w, "No factors found")
		return
	}
	for _, f := range factors {
		scope := "global"
		if f.OrganisationID != "" {
			scope = f.OrganisationID
		}
		active := ""
		if !f.IsActive {
			active = dimStyle().Render(" (inactive)")
		}
		printer.Fprintf(w, "%-30s %12.6f", f.Name, f.Value)
		if f.IndirectValue > 0 {
			printer.Fprintf(w, " / %.6f indirect", f.IndirectValue)
		}
		fmt.Fprintf(w, "  %s%s\n", dimStyle().Render(scope), active)
	}
}
