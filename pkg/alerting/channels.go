package alerting

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChannelSpec describes one monitored channel in the channel table.
// Threshold fields are optional; unset fields inherit the shared values.
type ChannelSpec struct {
	ID       int      `yaml:"id"`
	Name     string   `yaml:"name,omitempty"`
	Warning  *float64 `yaml:"warning,omitempty"`
	Critical *float64 `yaml:"critical,omitempty"`
}

// ChannelTable is an optional YAML file listing the monitored channels with
// per-channel names and threshold overrides.
type ChannelTable struct {
	Channels []ChannelSpec `yaml:"channels"`
}

// LoadChannelTable reads and validates the channel table at path.
func LoadChannelTable(path string) (*ChannelTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channel table %s: %w", path, err)
	}

	var table ChannelTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse channel table %s: %w", path, err)
	}

	if len(table.Channels) == 0 {
		return nil, fmt.Errorf("channel table %s: no channels defined", path)
	}

	seen := make(map[int]bool, len(table.Channels))
	for _, ch := range table.Channels {
		if ch.ID < 1 {
			return nil, fmt.Errorf("channel table %s: channel id %d must be positive", path, ch.ID)
		}
		if seen[ch.ID] {
			return nil, fmt.Errorf("channel table %s: duplicate channel id %d", path, ch.ID)
		}
		seen[ch.ID] = true
		if ch.Warning != nil && ch.Critical != nil && *ch.Warning >= *ch.Critical {
			return nil, fmt.Errorf("channel table %s: channel %d: warning threshold must be below critical", path, ch.ID)
		}
	}

	return &table, nil
}
