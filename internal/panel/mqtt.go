package panel

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-panel/internal/models"
)

const publishTimeout = 5 * time.Second

// publisher is the slice of mqtt.Client the panel uses
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes every committed state as a retained JSON message, for
// home automation dashboards
type MQTT struct {
	client publisher
	topic  string
	logger *zap.Logger

	mu      sync.Mutex
	pending state
}

// NewMQTT connects to broker and returns a panel publishing to topic
func NewMQTT(broker, topic string, logger *zap.Logger) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("nightscout-panel-%d", time.Now().UnixNano()))
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, token.Error())
	}

	return newMQTT(client, topic, logger), nil
}

func newMQTT(client publisher, topic string, logger *zap.Logger) *MQTT {
	return &MQTT{
		client: client,
		topic:  topic,
		logger: logger.Named("mqtt"),
	}
}

// SetLabel implements Panel
func (m *MQTT) SetLabel(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.label = label
}

// SetTooltip implements Panel
func (m *MQTT) SetTooltip(tooltip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.tooltip = tooltip
}

// SetStyle implements Panel
func (m *MQTT) SetStyle(category models.ColorCategory, color string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.category = category
	m.pending.color = color
}

// Commit publishes the accumulated state
func (m *MQTT) Commit() {
	m.mu.Lock()
	current := m.pending.snapshot()
	m.mu.Unlock()

	current.UpdatedAt = time.Now()
	payload, err := json.Marshal(current)
	if err != nil {
		m.logger.Error("Failed to marshal display state", zap.Error(err))
		return
	}

	token := m.client.Publish(m.topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		m.logger.Warn("MQTT publish timed out", zap.String("topic", m.topic))
		return
	}
	if err := token.Error(); err != nil {
		m.logger.Error("MQTT publish failed", zap.String("topic", m.topic), zap.Error(err))
	}
}

// Close disconnects from the broker
func (m *MQTT) Close() {
	if c, ok := m.client.(mqtt.Client); ok {
		c.Disconnect(250)
	}
}
