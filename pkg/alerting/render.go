package alerting

import (
	"fmt"
	"strconv"
	"strings"
)

// channelNames spells out small channel ids, matching the labels on the
// physical panel.
var channelNames = []string{
	"zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "ten",
}

// ChannelName returns the spelled-out, uppercased name for id, or the raw
// id when the table does not cover it.
func ChannelName(id int) string {
	if id >= 0 && id < len(channelNames) {
		return strings.ToUpper(channelNames[id])
	}
	return strconv.Itoa(id)
}

// Renderer turns events into outbound notification text. The zero value
// renders with the default name table and "A" as the unit.
type Renderer struct {
	Unit  string
	Names map[int]string // per-channel overrides from the channel table
}

func (r Renderer) name(id int) string {
	if n, ok := r.Names[id]; ok && n != "" {
		return strings.ToUpper(n)
	}
	return ChannelName(id)
}

// Render produces the message for ev. Values are formatted with one decimal
// place; a CRITICAL escalation carries an extra trailing marker.
func (r Renderer) Render(ev Event) string {
	unit := r.Unit
	if unit == "" {
		unit = "A"
	}
	name := r.name(ev.Channel)

	switch ev.Kind {
	case EventIncrease:
		msg := fmt.Sprintf("Channel **%s** increased :arrow_up: alert level to **%s** %s (`%.1f %s`)",
			name, ev.NewLevel, ev.NewLevel.Tag(), ev.Value, unit)
		if ev.NewLevel == LevelCritical {
			msg += " :warning:"
		}
		return msg
	case EventDecrease:
		// The level name is deliberately not emphasized on the way down.
		return fmt.Sprintf("Channel **%s** decreased :arrow_down: alert level to %s %s (`%.1f %s`)",
			name, ev.NewLevel, ev.NewLevel.Tag(), ev.Value, unit)
	default:
		return fmt.Sprintf("Channel **%s** alert level is still **%s** %s (`%.1f %s`)",
			name, ev.NewLevel, ev.NewLevel.Tag(), ev.Value, unit)
	}
}
