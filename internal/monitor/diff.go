package monitor

import (
	"github.com/macrat/cfmon/internal/region"
)

// ChangeEvent is a status change of a region between two snapshots.
type ChangeEvent struct {
	Code string

	// Previous is the previous status, or nil if the region was not in the previous snapshot.
	Previous *region.RegionStatus

	Current region.RegionStatus
}

// PreviousStatus returns the previous status label.
func (e ChangeEvent) PreviousStatus() (region.Status, bool) {
	if e.Previous == nil {
		return "", false
	}
	return e.Previous.Status, true
}

// Diff returns status changes from previous to current, sorted by region code.
//
// A region is changed if it is only in current, or if its status string is different.
// Regions only in previous are not reported.
func Diff(previous, current region.Snapshot) []ChangeEvent {
	var events []ChangeEvent

	for _, code := range current.Codes() {
		cur := current[code]

		prev, ok := previous[code]
		if !ok {
			events = append(events, ChangeEvent{Code: code, Current: cur})
			continue
		}

		if prev.Status != cur.Status {
			p := prev
			events = append(events, ChangeEvent{Code: code, Previous: &p, Current: cur})
		}
	}

	return events
}
