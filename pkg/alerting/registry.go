package alerting

import "time"

// Registry routes readings to the monitor subscribed to their topic. It is
// built once at startup and never changes size or keys afterwards; the
// monitors themselves carry the only mutable state, so concurrent dispatch
// for different channels is safe.
type Registry struct {
	byTopic map[string]*ChannelMonitor
	ordered []*ChannelMonitor
}

// NewRegistry builds a registry owning the given monitors, keyed by topic.
func NewRegistry(monitors []*ChannelMonitor) *Registry {
	r := &Registry{
		byTopic: make(map[string]*ChannelMonitor, len(monitors)),
		ordered: monitors,
	}
	for _, m := range monitors {
		r.byTopic[m.Topic()] = m
	}
	return r
}

// Dispatch hands value to the monitor for topic and returns whatever event
// the monitor emits. Readings on unknown topics are dropped: an extra
// publisher on the broker is not an error.
func (r *Registry) Dispatch(topic string, value float64, now time.Time) *Event {
	m, ok := r.byTopic[topic]
	if !ok {
		return nil
	}
	return m.OnReading(value, now)
}

// Topics returns the subscription topics of all monitors, in the order the
// registry was built.
func (r *Registry) Topics() []string {
	topics := make([]string, 0, len(r.ordered))
	for _, m := range r.ordered {
		topics = append(topics, m.Topic())
	}
	return topics
}

// ChannelStatus describes one monitor for diagnostic surfaces.
type ChannelStatus struct {
	Channel int    `json:"channel"`
	Topic   string `json:"topic"`
	Level   string `json:"level"`
}

// Snapshot returns the current level of every monitor.
func (r *Registry) Snapshot() []ChannelStatus {
	out := make([]ChannelStatus, 0, len(r.ordered))
	for _, m := range r.ordered {
		out = append(out, ChannelStatus{
			Channel: m.Channel(),
			Topic:   m.Topic(),
			Level:   m.Level().String(),
		})
	}
	return out
}
