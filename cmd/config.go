package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/claimscope-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ClaimScope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "drug_filter: %s\n", cfg.DrugFilter)
		fmt.Fprintf(out, "key_column: %s\n", cfg.KeyColumn)
		fmt.Fprintf(out, "drug_column: %s\n", cfg.DrugColumn)
		fmt.Fprintf(out, "paid_column: %s\n", cfg.PaidColumn)
		fmt.Fprintf(out, "awp_column: %s\n", cfg.AWPColumn)
		fmt.Fprintf(out, "qty_column: %s\n", cfg.QtyColumn)
		fmt.Fprintf(out, "rx_column: %s\n", cfg.RxColumn)
		fmt.Fprintf(out, "program_suffix: %s\n", cfg.ProgramSuffix)
		fmt.Fprintf(out, "flag_column: %s\n", cfg.FlagColumn)
		fmt.Fprintf(out, "metrics: %s\n", strings.Join(cfg.Metrics(), ", "))
		fmt.Fprintf(out, "ndc_pad_width: %d\n", cfg.NDCPadWidth)
		fmt.Fprintf(out, "outlier_column: %s\n", cfg.OutlierColumn)
		fmt.Fprintf(out, "outlier_fence: %.3f\n", cfg.OutlierFence)
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %s\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %s\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(out, "plot_width_in: %.1f\n", cfg.PlotWidthIn)
		fmt.Fprintf(out, "plot_height_in: %.1f\n", cfg.PlotHeightIn)
		fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
		fmt.Fprintf(out, "log.format: %s\n", cfg.Log.Format)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "drug_filter":
			cfg.DrugFilter = val
		case "key_column":
			cfg.KeyColumn = val
		case "drug_column":
			cfg.DrugColumn = val
		case "paid_column":
			cfg.PaidColumn = val
		case "awp_column":
			cfg.AWPColumn = val
		case "qty_column":
			cfg.QtyColumn = val
		case "rx_column":
			cfg.RxColumn = val
		case "program_suffix":
			cfg.ProgramSuffix = val
		case "flag_column":
			cfg.FlagColumn = val
		case "outlier_column":
			cfg.OutlierColumn = val
		case "ndc_pad_width":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for ndc_pad_width: %v", val)
			}
			cfg.NDCPadWidth = i
		case "outlier_fence":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for outlier_fence: %v", val)
			}
			cfg.OutlierFence = f
		case "decimal_separator", "thousands_separator":
			dec, thou := cfg.DecimalSeparator, cfg.ThousandsSeparator
			if key == "decimal_separator" {
				dec = val
			} else {
				thou = val
			}
			if _, err := parseNumberFormat(dec, thou); err != nil {
				return err
			}
			cfg.DecimalSeparator, cfg.ThousandsSeparator = dec, thou
		case "plot_width_in", "plot_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			if key == "plot_width_in" {
				cfg.PlotWidthIn = f
			} else {
				cfg.PlotHeightIn = f
			}
		case "log.level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "error":
				cfg.Log.Level = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log.level: %s (use debug|info|warn|error)", val)
			}
		case "log.format":
			switch strings.ToLower(val) {
			case "console", "json":
				cfg.Log.Format = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log.format: %s (use console or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
