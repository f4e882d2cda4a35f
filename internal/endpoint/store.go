package endpoint

import (
	"time"

	"github.com/macrat/cfmon/internal/monitor"
)

// Report is the outcome of the last check.
type Report struct {
	Result monitor.Result

	// Error is the error of the last check, or nil if it succeeded.
	Error error
}

// Checked reports whether any check has finished.
func (r Report) Checked() bool {
	return !r.Result.CheckedAt.IsZero()
}

type Store interface {
	// Latest returns the report of the last check.
	Latest() Report

	// Schedule returns the check schedule in text.
	Schedule() string

	// StartedAt returns when the server started.
	StartedAt() time.Time
}
