package monitor

import (
	"context"
	"fmt"

	"github.com/macrat/cfmon/internal/logger"
)

// LogNotifier is a Notifier that only writes alerts to the log.
// It is used for dry-run.
type LogNotifier struct {
	Logger     *logger.Logger
	Severities SeverityTable
}

// NotifyAll implements Notifier.
func (n LogNotifier) NotifyAll(_ context.Context, events []ChangeEvent) (int, error) {
	for _, ev := range events {
		prev, ok := ev.PreviousStatus()
		if !ok {
			prev = "(new)"
		}

		n.Logger.Healthy("dry-run:"+ev.Code, fmt.Sprintf("alert skipped: status changed from %s to %s", prev, ev.Current.Status), map[string]interface{}{
			"location": ev.Current.Location,
			"severity": n.Severities.Lookup(ev.Current.Status),
		})
	}
	return len(events), nil
}
