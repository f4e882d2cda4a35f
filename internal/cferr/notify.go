package cferr

import (
	"sort"
	"strings"
)

// NotifyError is the error that reports which regions' alerts could not be delivered.
// It is always ErrNotify in errors.Is.
type NotifyError struct {
	causes map[string]error
}

// Add records a failed delivery for the region.
func (e *NotifyError) Add(region string, err error) {
	if e.causes == nil {
		e.causes = make(map[string]error)
	}
	e.causes[region] = err
}

// Regions returns the failed region codes in ascending order.
func (e *NotifyError) Regions() []string {
	rs := make([]string, 0, len(e.causes))
	for r := range e.causes {
		rs = append(rs, r)
	}
	sort.Strings(rs)
	return rs
}

// Cause returns the error of the region, or nil if it did not fail.
func (e *NotifyError) Cause(region string) error {
	return e.causes[region]
}

// Build returns the NotifyError itself if any region failed, or nil.
func (e *NotifyError) Build() error {
	if len(e.causes) == 0 {
		return nil
	}
	return e
}

// Error implements error interface.
func (e *NotifyError) Error() string {
	rs := e.Regions()

	ss := make([]string, 0, len(rs)+1)
	ss = append(ss, ErrNotify.Error()+": "+strings.Join(rs, ", "))
	for _, r := range rs {
		ss = append(ss, "  "+r+": "+e.causes[r].Error())
	}

	return strings.Join(ss, "\n")
}

// Is implement for errors.Is.
func (e *NotifyError) Is(err error) bool {
	return err == ErrNotify
}
