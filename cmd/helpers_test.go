package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/claimscope-cli/internal/claims"
)

func TestOutlierColumnFlagsDefaultToPaidColumn(t *testing.T) {
	paid := claims.DefaultColumns().Paid
	assert.Equal(t, paid, analyzeCmd.Flags().Lookup("outlier-column").DefValue)
	assert.Equal(t, paid, outliersCmd.Flags().Lookup("column").DefValue)
	assert.Equal(t, claims.DefaultDrugFilter, analyzeCmd.Flags().Lookup("drug").DefValue)
}

func TestColumnsFromConfigWithoutConfig(t *testing.T) {
	saved := cfg
	cfg = nil
	t.Cleanup(func() { cfg = saved })
	assert.Equal(t, claims.DefaultColumns(), columnsFromConfig())
}
