package config

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Program filter
	DrugFilter string `mapstructure:"drug_filter" yaml:"drug_filter"`

	// Column names in the claims exports
	KeyColumn     string `mapstructure:"key_column" yaml:"key_column"`
	DrugColumn    string `mapstructure:"drug_column" yaml:"drug_column"`
	PaidColumn    string `mapstructure:"paid_column" yaml:"paid_column"`
	AWPColumn     string `mapstructure:"awp_column" yaml:"awp_column"`
	QtyColumn     string `mapstructure:"qty_column" yaml:"qty_column"`
	RxColumn      string `mapstructure:"rx_column" yaml:"rx_column"`
	ProgramSuffix string `mapstructure:"program_suffix" yaml:"program_suffix"`
	FlagColumn    string `mapstructure:"flag_column" yaml:"flag_column"`

	// Identifier normalization; 0 keeps NDCs verbatim.
	NDCPadWidth int `mapstructure:"ndc_pad_width" yaml:"ndc_pad_width"`

	OutlierColumn string  `mapstructure:"outlier_column" yaml:"outlier_column"`
	OutlierFence  float64 `mapstructure:"outlier_fence" yaml:"outlier_fence"`

	// Numeric locale; empty auto-detects per value.
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	PlotWidthIn  float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Metrics returns the numeric columns summarized per participation group.
func (c *Global) Metrics() []string {
	return []string{c.AWPColumn, c.PaidColumn, c.QtyColumn, c.RxColumn}
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "resolve home dir")
	}
	return filepath.Join(home, ".claimscope", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.claimscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return eris.Wrap(err, "mkdir config dir")
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return eris.Wrap(err, "write config")
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMSCOPE")
	v.AutomaticEnv()

	v.SetDefault("drug_filter", "DESCOVY")
	v.SetDefault("key_column", "NDC")
	v.SetDefault("drug_column", "DRUG_NM")
	v.SetDefault("paid_column", "PAID_AMT")
	v.SetDefault("awp_column", "AWP")
	v.SetDefault("qty_column", "QTY")
	v.SetDefault("rx_column", "RX_CNT")
	v.SetDefault("program_suffix", "_340B")
	v.SetDefault("flag_column", "IS_340B")
	v.SetDefault("ndc_pad_width", 0)
	v.SetDefault("outlier_column", "PAID_AMT")
	v.SetDefault("outlier_fence", 1.5)
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("plot_width_in", 10.0)
	v.SetDefault("plot_height_in", 6.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, eris.Wrap(err, "config: read file")
		}
	} else {
		p, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, eris.Wrap(err, "config: read file")
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, eris.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	// stdout carries the report; logs stay on stderr.
	zapCfg.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
