package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbonfabric/cbam/internal/engine"
)

func newCalculateCmd() *cobra.Command {
	var orgID, periodID, facilityID string

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compute embedded emissions for a reporting period",
		Long: `Calculate aggregates the period's activity data into Scope 1/2/3 totals,
allocates them across products by production share and derives specific
embedded emissions per product. Rerunning replaces the previous non-finalized
calculation and increments its version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			calc, err := engine.New(st).Run(cmd.Context(), engine.RunRequest{
				OrganisationID: orgID,
				PeriodID:       periodID,
				FacilityID:     facilityID,
			})
			if errors.Is(err, engine.ErrNoProductionData) {
				return fmt.Errorf("calculation aborted: %w", err)
			}
			if err != nil {
				return err
			}

			renderCalculation(cmd.OutOrStdout(), calc)
			return nil
		},
	}

	cmd.Flags().StringVar(&orgID, "org", "", "organisation id")
	cmd.Flags().StringVar(&periodID, "period", "", "reporting period id (e.g. 2026-Q1)")
	cmd.Flags().StringVar(&facilityID, "facility", "", "restrict the run to one facility")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}
