package alerting

import "time"

// Level is the severity of a channel's alert state. Levels are totally
// ordered; the usual <, > comparisons follow severity.
type Level int

const (
	LevelNominal Level = iota
	LevelWarning
	LevelCritical
)

// String returns the display name used in rendered messages.
func (l Level) String() string {
	switch l {
	case LevelNominal:
		return "NOMINAL"
	case LevelWarning:
		return "WARNING"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Tag returns the symbolic marker rendered next to the level name.
func (l Level) Tag() string {
	switch l {
	case LevelNominal:
		return "🟢"
	case LevelWarning:
		return "🟠"
	case LevelCritical:
		return "🔴"
	default:
		return ""
	}
}

// Thresholds are the classification boundaries for a channel.
// Warning must be strictly below Critical.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// Classify maps a reading onto a level. Both boundaries are exclusive: a
// reading exactly at a threshold stays at the lower level.
func Classify(value float64, t Thresholds) Level {
	switch {
	case value > t.Critical:
		return LevelCritical
	case value > t.Warning:
		return LevelWarning
	default:
		return LevelNominal
	}
}

// Policy carries the timing behavior shared by monitors: how long a
// de-escalation is suppressed after an escalation, and how often each level
// re-announces itself while held.
type Policy struct {
	DecreaseDelay    time.Duration
	WarningReminder  time.Duration
	CriticalReminder time.Duration
}

// ReminderInterval returns the reminder cadence for l, or zero when the
// level never reminds. NOMINAL has no cadence.
func (p Policy) ReminderInterval(l Level) time.Duration {
	switch l {
	case LevelWarning:
		return p.WarningReminder
	case LevelCritical:
		return p.CriticalReminder
	default:
		return 0
	}
}
