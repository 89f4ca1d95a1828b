package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/carbonfabric/cbam/internal/tui"
	"github.com/carbonfabric/cbam/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var orgID, periodID, calculationID string
	var history, interactive bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run rule checks over a reporting period",
		Long: `Validate runs the product, activity, supplier, calculation and
completeness rule groups over the period and records the findings. The result
is appended to the validation history; a run without errors advances the
referenced calculation to VALIDATED.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if history {
				results, err := st.ListValidations(cmd.Context(), orgID, periodID)
				if err != nil {
					return err
				}
				renderValidationHistory(cmd.OutOrStdout(), results)
				return nil
			}

			cfg := configFromCmd(cmd)
			thresholds := validate.DefaultThresholds()
			if v := cfg.Validation.ElectricityOutlierKWh; v > 0 {
				thresholds.ElectricityOutlierKWh = v
			}
			if v := cfg.Validation.SEEUpperBound; v > 0 {
				thresholds.SEEUpperBound = v
			}
			if v := cfg.Validation.SEELowerBound; v > 0 {
				thresholds.SEELowerBound = v
			}

			result, err := validate.New(st, validate.WithThresholds(thresholds)).
				Run(cmd.Context(), validate.Request{
					OrganisationID: orgID,
					PeriodID:       periodID,
					CalculationID:  calculationID,
				})
			if err != nil {
				return err
			}

			if interactive && isTerminal(os.Stdout) {
				return tui.BrowseFindings(result)
			}

			renderValidationResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&orgID, "org", "", "organisation id")
	cmd.Flags().StringVar(&periodID, "period", "", "reporting period id")
	cmd.Flags().StringVar(&calculationID, "calculation", "", "calculation id to include in the checks")
	cmd.Flags().BoolVar(&history, "history", false, "list prior validation runs instead of validating")
	cmd.Flags().BoolVar(&interactive, "tui", false, "browse findings interactively")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}
