package notify

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/courtflow/courtsched/core/resolve"
	"github.com/courtflow/courtsched/infra/logger"
)

// Config defines the connection parameters for the MQTT notifier.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
	// TimeoutMS bounds each publish.
	TimeoutMS int `json:"timeout_ms"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTNotifier publishes resolution notifications to an MQTT topic.
type MQTTNotifier struct {
	cli     pahoClient
	topic   string
	qos     byte
	timeout time.Duration
	log     logger.Logger
}

// NewMQTTNotifier connects to the broker and returns a notifier.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	log := logger.New("mqtt_notifier")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTNotifier{cli: c, topic: cfg.Topic, qos: cfg.QoS, timeout: timeout, log: log}, nil
}

// Notify publishes the notification as JSON.
func (n *MQTTNotifier) Notify(ctx context.Context, msg resolve.Notification) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	token := n.cli.Publish(n.topic, n.qos, false, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(n.timeout):
		return context.DeadlineExceeded
	case <-tokenDone(token):
	}
	if err := token.Error(); err != nil {
		n.log.Errorf("publish failed: %v", err)
		return err
	}
	n.log.Debugf("notified %d parties on %s", len(msg.Parties), n.topic)
	return nil
}

func tokenDone(t paho.Token) <-chan struct{} { return t.Done() }

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() error {
	n.cli.Disconnect(250)
	return nil
}
