package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phasewatch/phasewatch/internal/config"
	"github.com/phasewatch/phasewatch/pkg/alerting"
	"github.com/phasewatch/phasewatch/pkg/notify"
	"github.com/phasewatch/phasewatch/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "phasewatch",
	Short: "phasewatch - Threshold alerting for per-channel telemetry streams",
	Long: `phasewatch watches numeric telemetry published per channel on an MQTT
broker, classifies each reading into NOMINAL, WARNING or CRITICAL, and sends
notifications on level changes and as periodic reminders while a channel
stays elevated. Escalations fire instantly; de-escalations are held back by
a configurable delay so a transient dip does not flap the level.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.phasewatch/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates the alert-history store from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initNotifiers creates notifiers from config.
func initNotifiers(cfg *config.Config) []notify.Notifier {
	var notifiers []notify.Notifier

	if cfg.Notify.Discord.Enabled && cfg.Notify.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscordNotifier(
			cfg.Notify.Discord.WebhookURL,
			cfg.Notify.Discord.Username,
		))
	}

	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(
			cfg.Notify.Webhook.URL,
			cfg.Notify.Webhook.Secret,
		))
	}

	return notifiers
}

// buildRegistry constructs the channel monitors from config, either from
// the shared channel count or from a YAML channel table. It returns the
// registry plus any per-channel display names from the table.
func buildRegistry(cfg *config.Config, now time.Time) (*alerting.Registry, map[int]string, error) {
	decreaseDelay, warningReminder, criticalReminder, err := cfg.Alerting.Durations()
	if err != nil {
		return nil, nil, err
	}
	policy := alerting.Policy{
		DecreaseDelay:    decreaseDelay,
		WarningReminder:  warningReminder,
		CriticalReminder: criticalReminder,
	}
	shared := alerting.Thresholds{
		Warning:  cfg.Thresholds.Warning,
		Critical: cfg.Thresholds.Critical,
	}

	var monitors []*alerting.ChannelMonitor
	names := make(map[int]string)

	if cfg.Channels.File != "" {
		table, err := alerting.LoadChannelTable(cfg.Channels.File)
		if err != nil {
			return nil, nil, err
		}
		for _, spec := range table.Channels {
			thresholds := shared
			if spec.Warning != nil {
				thresholds.Warning = *spec.Warning
			}
			if spec.Critical != nil {
				thresholds.Critical = *spec.Critical
			}
			if thresholds.Warning >= thresholds.Critical {
				return nil, nil, fmt.Errorf("channel %d: warning threshold (%g) must be below critical (%g)",
					spec.ID, thresholds.Warning, thresholds.Critical)
			}
			if spec.Name != "" {
				names[spec.ID] = spec.Name
			}
			monitors = append(monitors, alerting.NewChannelMonitor(
				spec.ID, cfg.MQTT.TopicFor(spec.ID), thresholds, policy, now))
		}
	} else {
		for id := 1; id <= cfg.Channels.Count; id++ {
			monitors = append(monitors, alerting.NewChannelMonitor(
				id, cfg.MQTT.TopicFor(id), shared, policy, now))
		}
	}

	return alerting.NewRegistry(monitors), names, nil
}
