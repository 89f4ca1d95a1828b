package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/store"
)

// factorsFile is the YAML layout of a reference-data seed file.
type factorsFile struct {
	Factors []struct {
		ID             string  `yaml:"id"`
		OrganisationID string  `yaml:"organisation_id"`
		Type           string  `yaml:"type"`
		Name           string  `yaml:"name"`
		CountryCode    string  `yaml:"country_code"`
		Year           int     `yaml:"year"`
		Value          float64 `yaml:"value"`
		IndirectValue  float64 `yaml:"indirect_value"`
		Inactive       bool    `yaml:"inactive"`
	} `yaml:"factors"`
	CNCodes []struct {
		Code           string `yaml:"code"`
		Description    string `yaml:"description"`
		CBAMApplicable bool   `yaml:"cbam_applicable"`
	} `yaml:"cn_codes"`
}

func newFactorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factors",
		Short: "Manage reference emission factors",
	}
	cmd.AddCommand(newFactorsImportCmd(), newFactorsListCmd())
	return cmd
}

func newFactorsImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import reference factors and CN codes from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read factors file: %w", err)
			}
			var seed factorsFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parse factors file: %w", err)
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			for _, f := range seed.Factors {
				factor := domain.EmissionFactor{
					ID:             f.ID,
					OrganisationID: f.OrganisationID,
					Type:           domain.FactorType(f.Type),
					Name:           f.Name,
					CountryCode:    f.CountryCode,
					Year:           f.Year,
					Value:          f.Value,
					IndirectValue:  f.IndirectValue,
					IsActive:       !f.Inactive,
				}
				if factor.ID == "" {
					factor.ID = domain.NewID()
				}
				if factor.Value < 0 {
					return fmt.Errorf("factor %q has negative value %g", f.Name, f.Value)
				}
				if err := st.PutFactor(cmd.Context(), factor); err != nil {
					return fmt.Errorf("import factor %q: %w", f.Name, err)
				}
			}
			for _, c := range seed.CNCodes {
				if err := st.PutCNCode(cmd.Context(), store.CNCodeInfo{
					Code:           c.Code,
					Description:    c.Description,
					CBAMApplicable: c.CBAMApplicable,
				}); err != nil {
					return fmt.Errorf("import CN code %s: %w", c.Code, err)
				}
			}

			logger.Info().
				Int("factors", len(seed.Factors)).
				Int("cn_codes", len(seed.CNCodes)).
				Msg("reference data imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d factors and %d CN codes\n",
				len(seed.Factors), len(seed.CNCodes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with reference data")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newFactorsListCmd() *cobra.Command {
	var orgID, factorType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reference factors visible to an organisation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			factors, err := st.ListFactors(cmd.Context(), orgID, domain.FactorType(factorType))
			if err != nil {
				return err
			}
			renderFactors(cmd.OutOrStdout(), factors)
			return nil
		},
	}

	cmd.Flags().StringVar(&orgID, "org", "", "organisation id")
	cmd.Flags().StringVar(&factorType, "type", string(domain.FactorFuel),
		"factor type (fuel, electricity, precursor_default)")

	return cmd
}
