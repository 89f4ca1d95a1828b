package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbonfabric/cbam/internal/store"
)

func newFinalizeCmd() *cobra.Command {
	var calculationID string

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Lock a validated calculation against recalculation",
		Long: `Finalize flips a VALIDATED calculation to FINALIZED. A finalized
calculation is never replaced by subsequent calculate runs; run validate
first so the calculation has passed its checks.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			err = st.FinalizeCalculation(cmd.Context(), calculationID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				return fmt.Errorf("calculation %s does not exist", calculationID)
			case errors.Is(err, store.ErrNotValidated):
				return fmt.Errorf("calculation %s has not passed validation; run validate first", calculationID)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Calculation %s is finalized\n", calculationID)
			return nil
		},
	}

	cmd.Flags().StringVar(&calculationID, "calculation", "", "calculation id to finalize")
	_ = cmd.MarkFlagRequired("calculation")

	return cmd
}
