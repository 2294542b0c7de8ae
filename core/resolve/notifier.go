package resolve

import "context"

// Notification is a message to the parties affected by a resolution.
type Notification struct {
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Parties   []string `json:"parties"`
	Signature string   `json:"signature"`
}

// Notifier delivers notifications to affected parties. Implementations live
// in infra/notify.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) error { return nil }
