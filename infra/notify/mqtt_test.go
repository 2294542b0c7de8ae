package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/courtflow/courtsched/core/resolve"
)

type mockToken struct {
	err  error
	done chan struct{}
}

func newMockToken(err error) *mockToken {
	done := make(chan struct{})
	close(done)
	return &mockToken{err: err, done: done}
}

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{}          { return t.done }
func (t *mockToken) Error() error                   { return t.err }

type mockClient struct {
	published map[string][]byte
	failNext  error
}

func (m *mockClient) IsConnected() bool   { return true }
func (m *mockClient) Connect() paho.Token { return newMockToken(nil) }
func (m *mockClient) Disconnect(uint)     {}
func (m *mockClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	if m.failNext != nil {
		return newMockToken(m.failNext)
	}
	if m.published == nil {
		m.published = make(map[string][]byte)
	}
	m.published[topic] = payload.([]byte)
	return newMockToken(nil)
}

func TestMQTTNotifierPublishesJSON(t *testing.T) {
	mock := &mockClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mock }
	defer func() { newMQTTClient = orig }()

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test", Topic: "court/conflicts"})
	if err != nil {
		t.Fatalf("NewMQTTNotifier: %v", err)
	}
	defer n.Close()

	msg := resolve.Notification{Subject: "conflict", Parties: []string{"smith"}, Signature: "overlap:a,b"}
	if err := n.Notify(context.Background(), msg); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	raw, ok := mock.published["court/conflicts"]
	if !ok {
		t.Fatal("nothing published on the configured topic")
	}
	var got resolve.Notification
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got.Signature != msg.Signature {
		t.Fatalf("signature mangled: %q", got.Signature)
	}
}

func TestMQTTNotifierPublishError(t *testing.T) {
	mock := &mockClient{failNext: errors.New("broker gone")}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mock }
	defer func() { newMQTTClient = orig }()

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test", Topic: "court/conflicts"})
	if err != nil {
		t.Fatalf("NewMQTTNotifier: %v", err)
	}
	if err := n.Notify(context.Background(), resolve.Notification{}); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	n, err := New(NotifierConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := n.(*LogNotifier); !ok {
		t.Fatalf("expected LogNotifier default, got %T", n)
	}
	if _, err := New(NotifierConfig{Type: "smoke-signal"}); err == nil {
		t.Fatal("expected error for unknown notifier")
	}
}
