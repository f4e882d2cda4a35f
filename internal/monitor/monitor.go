// Package monitor compares region statuses with the last snapshot and sends alerts for the changes.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/macrat/cfmon/internal/logger"
	"github.com/macrat/cfmon/internal/region"
)

// CurrentTime returns current time.
// This variable is for testing purpose.
var CurrentTime = time.Now

// Fetcher reads the current statuses of regions.
type Fetcher interface {
	Fetch(ctx context.Context, regions region.Table) (region.Snapshot, error)
}

// Store persists the last known snapshot.
type Store interface {
	// Load returns the last saved snapshot, or an empty snapshot if nothing saved yet.
	Load(ctx context.Context) (region.Snapshot, error)

	// Save replaces the saved snapshot.
	Save(ctx context.Context, s region.Snapshot) error
}

// Notifier delivers alerts for change events.
type Notifier interface {
	// NotifyAll sends an alert for each event independently.
	// It returns the number of delivered alerts, and cferr.NotifyError if any delivery failed.
	NotifyAll(ctx context.Context, events []ChangeEvent) (sent int, err error)
}

// Result is the outcome of a run.
type Result struct {
	CheckedAt time.Time

	// Current is the fetched snapshot.
	// It is nil if fetching failed.
	Current region.Snapshot

	Changes []ChangeEvent
	Sent    int
}

// Monitor runs the fetch, diff, notify, and persist loop.
type Monitor struct {
	Regions    region.Table
	Severities SeverityTable
	Fetcher    Fetcher
	Store      Store
	Notifier   Notifier
	Logger     *logger.Logger
}

func (m *Monitor) logStatus(code string, s region.RegionStatus) {
	extra := map[string]interface{}{
		"location": s.Location,
		"severity": m.Severities.Lookup(s.Status),
	}
	if s.LastChanged != nil {
		extra["last_changed"] = *s.LastChanged
	}

	m.Logger.Print(logger.Record{
		Status:  RecordStatus(s.Status, m.Severities),
		Target:  "cloudflare:" + code,
		Message: string(s.Status),
		Extra:   extra,
	})
}

// RecordStatus maps a region status to the log record status.
func RecordStatus(s region.Status, sev SeverityTable) logger.Status {
	if s == region.StatusOperational {
		return logger.StatusHealthy
	}
	switch sev.Lookup(s) {
	case SeverityError, SeverityCritical:
		return logger.StatusFailure
	default:
		return logger.StatusDegrade
	}
}

// Run checks statuses once.
//
// If fetching the current statuses or loading the snapshot fails, it returns without sending alerts or saving.
// Otherwise the snapshot is always replaced by the fetched statuses, even if some alerts failed.
func (m *Monitor) Run(ctx context.Context) (Result, error) {
	result := Result{CheckedAt: CurrentTime()}

	current, err := m.Fetcher.Fetch(ctx, m.Regions)
	if err != nil {
		m.Logger.Failure("cloudflare", err.Error(), nil)
		return result, err
	}
	result.Current = current

	for _, code := range current.Codes() {
		m.logStatus(code, current[code])
	}
	for _, r := range m.Regions.Regions() {
		if _, ok := current[r.Code]; !ok {
			m.Logger.Unknown("cloudflare:"+r.Code, "region not found in the status page", map[string]interface{}{
				"location": r.Location,
			})
		}
	}

	previous, err := m.Store.Load(ctx)
	if err != nil {
		m.Logger.Failure("cfmon:state", err.Error(), nil)
		return result, err
	}

	result.Changes = Diff(previous, current)
	for _, ev := range result.Changes {
		prev, ok := ev.PreviousStatus()
		if !ok {
			prev = "(new)"
		}
		m.Logger.Print(logger.Record{
			Status:  RecordStatus(ev.Current.Status, m.Severities),
			Target:  "cloudflare:" + ev.Code,
			Message: fmt.Sprintf("status changed from %s to %s", prev, ev.Current.Status),
			Extra: map[string]interface{}{
				"location": ev.Current.Location,
				"severity": m.Severities.Lookup(ev.Current.Status),
			},
		})
	}

	var errs []error

	if len(result.Changes) > 0 {
		result.Sent, err = m.Notifier.NotifyAll(ctx, result.Changes)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := m.Store.Save(ctx, current); err != nil {
		m.Logger.Failure("cfmon:state", err.Error(), nil)
		errs = append(errs, err)
	}

	extra := map[string]interface{}{
		"regions": len(current),
		"changes": len(result.Changes),
		"alerts":  result.Sent,
	}
	if len(errs) > 0 {
		err = errors.Join(errs...)
		extra["error"] = err.Error()
		m.Logger.Failure("cfmon", "check finished with errors", extra)
		return result, err
	}

	m.Logger.Healthy("cfmon", "check finished", extra)
	return result, nil
}
