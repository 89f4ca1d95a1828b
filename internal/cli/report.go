package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/report"
	"github.com/carbonfabric/cbam/internal/store"
)

func newReportCmd() *cobra.Command {
	var orgID, periodID, calculationID, outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the regulatory XML report for a calculation",
		Long: `Report renders a validated calculation into the CBAM XML wire format,
re-validates its own output and stores the result. The exit status reflects
the self-check verdict: an invalid report is still written for inspection but
must not be submitted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			cfg := configFromCmd(cmd)
			gen, err := report.NewGenerator(st, report.Identity{
				DeclarantName: cfg.Declarant.Name,
				DeclarantID:   cfg.Declarant.Identifier,
				Installation:  cfg.Declarant.Installation,
				CountryCode:   cfg.Declarant.CountryCode,
			}, cfg.Report.SchemaVersion)
			if err != nil {
				return err
			}

			// Periods named by the YYYY-Qn convention register
			// themselves on first use.
			if _, err := st.GetPeriod(cmd.Context(), periodID); errors.Is(err, store.ErrNotFound) {
				if p, perr := domain.ParsePeriodID(periodID); perr == nil {
					if err := st.PutPeriod(cmd.Context(), p); err != nil {
						return err
					}
				}
			}

			rep, err := gen.Generate(cmd.Context(), orgID, periodID, calculationID)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, rep.Content, 0600); err != nil {
					return fmt.Errorf("write report file: %w", err)
				}
			}

			renderReportVerdict(cmd.OutOrStdout(), rep, outPath)

			if !rep.Valid {
				return fmt.Errorf("report %s failed its self-check; do not submit", rep.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orgID, "org", "", "organisation id")
	cmd.Flags().StringVar(&periodID, "period", "", "reporting period id")
	cmd.Flags().StringVar(&calculationID, "calculation", "", "calculation id to report on")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the XML document to this file")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("period")
	_ = cmd.MarkFlagRequired("calculation")

	return cmd
}
