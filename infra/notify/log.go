package notify

import (
	"context"
	"strings"

	"github.com/courtflow/courtsched/core/resolve"
	"github.com/courtflow/courtsched/infra/logger"
)

// LogNotifier writes notifications to the structured log. It is the default
// when no broker is configured.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.New("notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, msg resolve.Notification) error {
	n.log.Infof("notification [%s] %s: %s (parties: %s)",
		msg.Signature, msg.Subject, msg.Body, strings.Join(msg.Parties, ", "))
	return nil
}
