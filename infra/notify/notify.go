// Package notify provides the notifier implementations used by the conflict
// resolver: an MQTT publisher for downstream systems and a log notifier for
// standalone runs.
package notify

import (
	"fmt"

	"github.com/courtflow/courtsched/core/resolve"
)

// NotifierConfig selects the notifier backend.
type NotifierConfig struct {
	// Type is one of "log", "mqtt", "nop".
	Type string `json:"type"`
	MQTT Config `json:"mqtt"`
}

// New builds the notifier selected by cfg.
func New(cfg NotifierConfig) (resolve.Notifier, error) {
	switch cfg.Type {
	case "", "log":
		return NewLogNotifier(), nil
	case "nop":
		return resolve.NopNotifier{}, nil
	case "mqtt":
		return NewMQTTNotifier(cfg.MQTT)
	default:
		return nil, fmt.Errorf("unknown notifier type %q", cfg.Type)
	}
}
