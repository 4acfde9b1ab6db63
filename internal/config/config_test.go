package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "DESCOVY", cfg.DrugFilter)
	assert.Equal(t, "NDC", cfg.KeyColumn)
	assert.Equal(t, "DRUG_NM", cfg.DrugColumn)
	assert.Equal(t, "_340B", cfg.ProgramSuffix)
	assert.Equal(t, "IS_340B", cfg.FlagColumn)
	assert.Equal(t, "PAID_AMT", cfg.OutlierColumn)
	assert.InDelta(t, 1.5, cfg.OutlierFence, 1e-9)
	assert.Equal(t, 0, cfg.NDCPadWidth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"AWP", "PAID_AMT", "QTY", "RX_CNT"}, cfg.Metrics())
}

func TestLoadFromYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := `
drug_filter: truvada
ndc_pad_width: 11
outlier_fence: 3
log:
  level: debug
`
	require.NoError(t, os.WriteFile(p, []byte(yaml), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "truvada", cfg.DrugFilter)
	assert.Equal(t, 11, cfg.NDCPadWidth)
	assert.InDelta(t, 3.0, cfg.OutlierFence, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "RX_CNT", cfg.RxColumn)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("drug_filter: truvada\n"), 0o644))
	t.Setenv("CLAIMSCOPE_DRUG_FILTER", "biktarvy")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "biktarvy", cfg.DrugFilter)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.DrugFilter = "SUNLENCA"
	cfg.NDCPadWidth = 11

	p := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(cfg, p))

	back, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "SUNLENCA", back.DrugFilter)
	assert.Equal(t, 11, back.NDCPadWidth)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
