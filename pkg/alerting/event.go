package alerting

import "time"

// EventKind distinguishes the three notification types a monitor emits.
type EventKind string

const (
	EventIncrease EventKind = "increase"
	EventDecrease EventKind = "decrease"
	EventReminder EventKind = "reminder"
)

// Event is a single notification produced by a ChannelMonitor. A reading
// produces at most one event. For reminders OldLevel equals NewLevel.
type Event struct {
	Channel  int
	Kind     EventKind
	OldLevel Level
	NewLevel Level
	Value    float64
	At       time.Time
}
