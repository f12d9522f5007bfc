package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phasewatch/phasewatch/internal/server"
	"github.com/phasewatch/phasewatch/pkg/alerting"
	"github.com/phasewatch/phasewatch/pkg/ingest"
	"github.com/phasewatch/phasewatch/pkg/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the alerting daemon",
	Long: `Subscribe to the per-channel topics on the configured MQTT broker and
deliver alert notifications on level transitions and reminders.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("broker", "b", "", "MQTT broker host (default from config)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	broker, _ := cmd.Flags().GetString("broker")
	if broker != "" {
		cfg.MQTT.Broker = broker
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	logger.Info("phasewatch starting",
		"version", Version,
		"broker", cfg.MQTT.Broker,
		"port", cfg.MQTT.Port,
		"topic_format", cfg.MQTT.TopicFormat,
		"warning_threshold", cfg.Thresholds.Warning,
		"critical_threshold", cfg.Thresholds.Critical,
		"decrease_delay", cfg.Alerting.DecreaseDelay,
	)

	registry, names, err := buildRegistry(cfg, time.Now())
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	renderer := alerting.Renderer{Unit: cfg.Alerting.Unit, Names: names}
	dispatcher := notify.NewDispatcher(renderer, initNotifiers(cfg), store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	source := ingest.NewMQTTSource(
		ingest.Options{
			Broker:   cfg.MQTT.Broker,
			Port:     cfg.MQTT.Port,
			ClientID: cfg.MQTT.ClientID,
			QoS:      byte(cfg.MQTT.QoS),
		},
		registry.Topics(),
		func(topic string, value float64, now time.Time) {
			if ev := registry.Dispatch(topic, value, now); ev != nil {
				dispatcher.Publish(*ev)
			}
		},
		logger,
	)

	if err := source.Start(); err != nil {
		return err
	}
	defer source.Stop()

	var srv *http.Server
	if cfg.Server.Enabled {
		api := server.NewServer(registry, store, logger)
		srv = &http.Server{
			Addr:         cfg.Server.Listen,
			Handler:      api.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			logger.Info("status api listening", "listen", cfg.Server.Listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("status api server", "error", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("status api shutdown", "error", err)
		}
	}

	// Stop ingestion first, then let the dispatcher drain its queue.
	source.Stop()
	cancel()
	dispatcher.Wait()

	logger.Info("phasewatch stopped")
	return nil
}
