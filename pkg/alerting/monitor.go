package alerting

import (
	"sync"
	"time"
)

// ChannelMonitor tracks the alert level of a single telemetry channel.
//
// Escalations apply immediately. De-escalations are suppressed until the
// decrease delay has elapsed since the last escalation, so a transient dip
// right after a spike does not flap the level. While a non-nominal level
// holds, a reminder is emitted at the level's cadence. A zero decrease
// delay makes de-escalation effectively instant.
//
// All state changes are serialized by an internal mutex. OnReading never
// blocks beyond producing an event; delivery is the caller's problem.
type ChannelMonitor struct {
	channel    int
	topic      string
	thresholds Thresholds
	policy     Policy

	mu                sync.Mutex
	level             Level
	lastAlertRepeat   time.Time
	lastAlertIncrease time.Time
}

// NewChannelMonitor creates a monitor starting at NOMINAL. Both internal
// timestamps are seeded with now, so reminder and decrease-delay windows
// are measured from startup.
func NewChannelMonitor(channel int, topic string, thresholds Thresholds, policy Policy, now time.Time) *ChannelMonitor {
	return &ChannelMonitor{
		channel:           channel,
		topic:             topic,
		thresholds:        thresholds,
		policy:            policy,
		level:             LevelNominal,
		lastAlertRepeat:   now,
		lastAlertIncrease: now,
	}
}

// Channel returns the channel id this monitor watches.
func (m *ChannelMonitor) Channel() int { return m.channel }

// Topic returns the source topic this monitor is keyed by.
func (m *ChannelMonitor) Topic() string { return m.topic }

// Level returns the current alert level.
func (m *ChannelMonitor) Level() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// OnReading classifies value and applies the transition rules. It returns
// the event to deliver, or nil when the reading changes nothing. The caller
// supplies now so timing is testable; it is consulted exactly once per
// transition decision.
func (m *ChannelMonitor) OnReading(value float64, now time.Time) *Event {
	newLevel := Classify(value, m.thresholds)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case newLevel > m.level:
		// Something got worse: report instantly, no debounce.
		old := m.level
		m.level = newLevel
		m.lastAlertRepeat = now
		m.lastAlertIncrease = now
		return &Event{Channel: m.channel, Kind: EventIncrease, OldLevel: old, NewLevel: newLevel, Value: value, At: now}

	case newLevel < m.level:
		if now.Sub(m.lastAlertIncrease) <= m.policy.DecreaseDelay {
			return nil
		}
		old := m.level
		m.level = newLevel
		m.lastAlertRepeat = now
		// lastAlertIncrease keeps its value: the suppression window is
		// anchored to the most recent escalation only.
		return &Event{Channel: m.channel, Kind: EventDecrease, OldLevel: old, NewLevel: newLevel, Value: value, At: now}

	default:
		interval := m.policy.ReminderInterval(m.level)
		if interval <= 0 || now.Sub(m.lastAlertRepeat) <= interval {
			return nil
		}
		m.lastAlertRepeat = now
		return &Event{Channel: m.channel, Kind: EventReminder, OldLevel: m.level, NewLevel: m.level, Value: value, At: now}
	}
}
