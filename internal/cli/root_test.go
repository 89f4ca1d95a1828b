package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findSub(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("subcommand %s not found", name)
	return nil
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd("1.2.3")
	assert.Equal(t, "cbam", root.Use)
	assert.Equal(t, "1.2.3", root.Version)

	for _, name := range []string{"calculate", "validate", "finalize", "report", "factors"} {
		findSub(t, root, name)
	}

	for _, flag := range []string{"config", "debug", "store"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing persistent flag %s", flag)
	}
}

func TestCalculateFlags(t *testing.T) {
	calc := findSub(t, NewRootCmd("test"), "calculate")
	for _, flag := range []string{"org", "period", "facility"} {
		require.NotNil(t, calc.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestValidateFlags(t *testing.T) {
	validate := findSub(t, NewRootCmd("test"), "validate")
	for _, flag := range []string{"org", "period", "calculation", "history", "tui"} {
		require.NotNil(t, validate.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestFinalizeFlags(t *testing.T) {
	finalize := findSub(t, NewRootCmd("test"), "finalize")
	require.NotNil(t, finalize.Flags().Lookup("calculation"))
}

func TestReportFlags(t *testing.T) {
	report := findSub(t, NewRootCmd("test"), "report")
	for _, flag := range []string{"org", "period", "calculation", "out"} {
		require.NotNil(t, report.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestFactorsSubcommands(t *testing.T) {
	factors := findSub(t, NewRootCmd("test"), "factors")
	names := make([]string, 0, len(factors.Commands()))
	for _, c := range factors.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "import")
	assert.Contains(t, names, "list")
}
