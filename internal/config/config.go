package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// topicPlaceholder is substituted with the channel id when building
// per-channel subscription topics.
const topicPlaceholder = "{channel}"

// Config holds all phasewatch configuration.
type Config struct {
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Channels   ChannelsConfig   `mapstructure:"channels"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// MQTTConfig defines broker connection and topic settings.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	Port        int    `mapstructure:"port"`
	ClientID    string `mapstructure:"client_id"`
	TopicFormat string `mapstructure:"topic_format"`
	QoS         int    `mapstructure:"qos"`
}

// TopicFor expands the topic template for the given channel id.
func (c MQTTConfig) TopicFor(channel int) string {
	return strings.ReplaceAll(c.TopicFormat, topicPlaceholder, strconv.Itoa(channel))
}

// ChannelsConfig defines which channels are monitored. File, when set,
// points to a YAML channel table that supersedes Count.
type ChannelsConfig struct {
	Count int    `mapstructure:"count"`
	File  string `mapstructure:"file"`
}

// ThresholdsConfig defines the classification boundaries shared by all
// channels. The channel table may override these per channel.
type ThresholdsConfig struct {
	Warning  float64 `mapstructure:"warning"`
	Critical float64 `mapstructure:"critical"`
}

// AlertingConfig defines the hysteresis and reminder timing.
type AlertingConfig struct {
	DecreaseDelay    string `mapstructure:"decrease_delay"`
	WarningReminder  string `mapstructure:"warning_reminder"`
	CriticalReminder string `mapstructure:"critical_reminder"`
	Unit             string `mapstructure:"unit"`
}

// Durations parses the alerting duration strings.
func (a AlertingConfig) Durations() (decreaseDelay, warningReminder, criticalReminder time.Duration, err error) {
	decreaseDelay, err = time.ParseDuration(a.DecreaseDelay)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse alerting.decrease_delay: %w", err)
	}
	warningReminder, err = time.ParseDuration(a.WarningReminder)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse alerting.warning_reminder: %w", err)
	}
	criticalReminder, err = time.ParseDuration(a.CriticalReminder)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse alerting.critical_reminder: %w", err)
	}
	return decreaseDelay, warningReminder, criticalReminder, nil
}

// NotifyConfig defines notification integrations.
type NotifyConfig struct {
	Discord DiscordConfig `mapstructure:"discord"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Username   string `mapstructure:"username"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// StorageConfig defines alert-history database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines the optional status API server.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".phasewatch"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("mqtt.broker", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "phasewatch")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("channels.count", 3)
	v.SetDefault("alerting.decrease_delay", "30s")
	v.SetDefault("alerting.warning_reminder", "60s")
	v.SetDefault("alerting.critical_reminder", "5s")
	v.SetDefault("alerting.unit", "A")
	v.SetDefault("storage.path", filepath.Join(home, ".phasewatch", "phasewatch.db"))
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("PHASEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about through
	// Unmarshal, so keys without defaults must be bound explicitly for an
	// env-only deployment to work.
	for _, key := range []string{
		"mqtt.topic_format",
		"channels.file",
		"thresholds.warning",
		"thresholds.critical",
		"notify.discord.enabled",
		"notify.discord.webhook_url",
		"notify.discord.username",
		"notify.webhook.enabled",
		"notify.webhook.url",
		"notify.webhook.secret",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the invariants that must hold before the daemon starts
// serving. Violations are fatal at startup.
func (c *Config) Validate() error {
	if c.MQTT.TopicFormat == "" {
		return errors.New("mqtt.topic_format is required")
	}
	if !strings.Contains(c.MQTT.TopicFormat, topicPlaceholder) {
		return fmt.Errorf("mqtt.topic_format must contain the %s placeholder", topicPlaceholder)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.Thresholds.Warning == 0 && c.Thresholds.Critical == 0 {
		return errors.New("thresholds.warning and thresholds.critical are required")
	}
	if c.Thresholds.Warning >= c.Thresholds.Critical {
		return fmt.Errorf("thresholds.warning (%g) must be below thresholds.critical (%g)",
			c.Thresholds.Warning, c.Thresholds.Critical)
	}
	if c.Channels.File == "" && c.Channels.Count < 1 {
		return errors.New("channels.count must be at least 1 when no channel file is set")
	}
	if _, _, _, err := c.Alerting.Durations(); err != nil {
		return err
	}
	return nil
}
