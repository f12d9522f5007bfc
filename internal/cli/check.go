package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phasewatch/phasewatch/pkg/alerting"
)

var checkCmd = &cobra.Command{
	Use:   "check <value>",
	Short: "Classify a reading against the configured thresholds",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Thresholds.Warning >= cfg.Thresholds.Critical {
		return fmt.Errorf("thresholds.warning (%g) must be below thresholds.critical (%g)",
			cfg.Thresholds.Warning, cfg.Thresholds.Critical)
	}

	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parse value %q: %w", args[0], err)
	}

	level := alerting.Classify(value, alerting.Thresholds{
		Warning:  cfg.Thresholds.Warning,
		Critical: cfg.Thresholds.Critical,
	})
	fmt.Printf("%.1f %s -> %s %s\n", value, cfg.Alerting.Unit, level, level.Tag())
	return nil
}
