// Package region defines the monitored regions and their statuses.
package region

import (
	"regexp"
	"sort"
	"time"
)

// Status is the status label of a region as reported by Cloudflare, like "operational" or "major_outage".
// It is an open set; unknown values are kept as-is.
type Status string

const (
	StatusOperational         Status = "operational"
	StatusReRouted            Status = "re_routed"
	StatusPartiallyReRouted   Status = "partially_re_routed"
	StatusDegradedPerformance Status = "degraded_performance"
	StatusPartialOutage       Status = "partial_outage"
	StatusMajorOutage         Status = "major_outage"
	StatusUnderMaintenance    Status = "under_maintenance"
)

func (s Status) String() string {
	return string(s)
}

// Region is a monitored data-center location.
type Region struct {
	// Code is the airport-style code like "JNB".
	Code string `yaml:"code" json:"code"`

	// Location is the human-readable name like "Johannesburg, South Africa".
	Location string `yaml:"location" json:"location"`
}

// RegionStatus is the status of a region at some point.
type RegionStatus struct {
	Location string `json:"location"`
	Status   Status `json:"status"`

	// LastChanged is the time of the last status change that Cloudflare reported.
	// It is nil if unknown.
	LastChanged *time.Time `json:"last_changed,omitempty"`
}

// Snapshot is the status of all regions, keyed by region code.
type Snapshot map[string]RegionStatus

// Codes returns region codes in the snapshot in ascending order.
func (s Snapshot) Codes() []string {
	cs := make([]string, 0, len(s))
	for c := range s {
		cs = append(cs, c)
	}
	sort.Strings(cs)
	return cs
}

var codePattern = regexp.MustCompile(`\(([A-Z]{3})\)\s*$`)

// ParseCode extracts the region code from a Cloudflare component name like "Johannesburg, South Africa - (JNB)".
func ParseCode(componentName string) (code string, ok bool) {
	m := codePattern.FindStringSubmatch(componentName)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ValidCode reports whether the code looks like a region code.
func ValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || 'Z' < c {
			return false
		}
	}
	return true
}
