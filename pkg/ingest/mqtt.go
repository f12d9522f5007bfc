package ingest

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Handler receives one parsed reading. now is the receive time, read once
// per message so downstream timestamp comparisons stay consistent.
type Handler func(topic string, value float64, now time.Time)

// Options configure the broker connection.
type Options struct {
	Broker   string
	Port     int
	ClientID string
	QoS      byte
}

// MQTTSource subscribes to the per-channel topics on an MQTT broker and
// feeds parsed readings to a handler. Malformed payloads are logged and
// dropped without affecting other readings.
type MQTTSource struct {
	opts    *mqtt.ClientOptions
	client  mqtt.Client
	topics  []string
	qos     byte
	handler Handler
	logger  *slog.Logger
}

// NewMQTTSource creates a source for the given topics. Subscriptions are
// established from the connect callback so they survive reconnects.
func NewMQTTSource(o Options, topics []string, handler Handler, logger *slog.Logger) *MQTTSource {
	s := &MQTTSource{
		topics:  topics,
		qos:     o.QoS,
		handler: handler,
		logger:  logger,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", o.Broker, o.Port)).
		SetClientID(o.ClientID).
		SetAutoReconnect(true)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})
	s.opts = opts

	return s
}

// Start connects to the broker and blocks until the initial connection
// attempt resolves.
func (s *MQTTSource) Start() error {
	s.client = mqtt.NewClient(s.opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}
	return nil
}

// Stop disconnects from the broker.
func (s *MQTTSource) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

func (s *MQTTSource) onConnect(client mqtt.Client) {
	s.logger.Info("connected to mqtt broker")
	for _, topic := range s.topics {
		if token := client.Subscribe(topic, s.qos, s.onMessage); token.Wait() && token.Error() != nil {
			s.logger.Error("subscribe failed", "topic", topic, "error", token.Error())
		}
	}
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	value, err := parsePayload(msg.Payload())
	if err != nil {
		s.logger.Warn("malformed payload, dropping reading",
			"topic", msg.Topic(),
			"error", err,
		)
		return
	}
	s.handler(msg.Topic(), value, time.Now())
}

// parsePayload decodes a text-encoded decimal reading.
func parsePayload(payload []byte) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse reading %q: %w", payload, err)
	}
	return value, nil
}
