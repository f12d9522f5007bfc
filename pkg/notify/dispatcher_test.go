package notify_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasewatch/phasewatch/pkg/alerting"
	"github.com/phasewatch/phasewatch/pkg/notify"
	"github.com/phasewatch/phasewatch/pkg/storage"
)

type captureNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (c *captureNotifier) Name() string { return "capture" }

func (c *captureNotifier) Send(_ context.Context, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *captureNotifier) all() []notify.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Message(nil), c.messages...)
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDispatcher_DeliversAndRecords(t *testing.T) {
	capture := &captureNotifier{}
	store := newTestStore(t)
	d := notify.NewDispatcher(
		alerting.Renderer{Unit: "A"},
		[]notify.Notifier{capture},
		store,
		testLogger(t),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Publish(alerting.Event{
		Channel:  1,
		Kind:     alerting.EventIncrease,
		OldLevel: alerting.LevelNominal,
		NewLevel: alerting.LevelWarning,
		Value:    15,
		At:       time.Now(),
	})

	require.Eventually(t, func() bool {
		return len(capture.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	msg := capture.all()[0]
	assert.Equal(t, 1, msg.Channel)
	assert.Equal(t, "increase", msg.Kind)
	assert.Equal(t, "WARNING", msg.Level)
	assert.Contains(t, msg.Content, "Channel **ONE** increased")

	require.Eventually(t, func() bool {
		records, err := store.ListAlerts(context.Background(), storage.AlertFilter{})
		return err == nil && len(records) == 1
	}, 2*time.Second, 10*time.Millisecond)

	records, err := store.ListAlerts(context.Background(), storage.AlertFilter{})
	require.NoError(t, err)
	assert.Equal(t, "increase", records[0].Kind)
	assert.Equal(t, "NOMINAL", records[0].OldLevel)
	assert.Equal(t, "WARNING", records[0].NewLevel)
	assert.Equal(t, msg.Content, records[0].Message)
}

func TestDispatcher_NotifierFailureIsSwallowed(t *testing.T) {
	failing := &captureNotifier{err: errors.New("boom")}
	working := &captureNotifier{}
	d := notify.NewDispatcher(
		alerting.Renderer{},
		[]notify.Notifier{failing, working},
		nil,
		testLogger(t),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Publish(alerting.Event{Channel: 1, Kind: alerting.EventReminder, NewLevel: alerting.LevelWarning, Value: 12})

	// The failing notifier does not keep the next one from being tried.
	require.Eventually(t, func() bool {
		return len(working.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_DrainsQueueOnShutdown(t *testing.T) {
	capture := &captureNotifier{}
	d := notify.NewDispatcher(alerting.Renderer{}, []notify.Notifier{capture}, nil, testLogger(t))

	for i := 0; i < 5; i++ {
		d.Publish(alerting.Event{Channel: 1, Kind: alerting.EventReminder, NewLevel: alerting.LevelWarning, Value: 12})
	}

	// Cancel before Run starts: the worker must still drain what is queued.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go d.Run(ctx)
	d.Wait()

	assert.Len(t, capture.all(), 5)
}

func TestDispatcher_NilStore(t *testing.T) {
	capture := &captureNotifier{}
	d := notify.NewDispatcher(alerting.Renderer{}, []notify.Notifier{capture}, nil, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Publish(alerting.Event{Channel: 1, Kind: alerting.EventIncrease, NewLevel: alerting.LevelCritical, Value: 30})

	require.Eventually(t, func() bool {
		return len(capture.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
