package monitor

import (
	"github.com/macrat/cfmon/internal/region"
)

// Severity is the ordinal alert level.
type Severity int8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String is make Severity a string
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "warning"
	}
}

// ParseSeverity parses severity string.
// Unsupported strings are parsed as SeverityWarning.
func ParseSeverity(raw string) Severity {
	switch raw {
	case "info":
		return SeverityInfo
	case "error":
		return SeverityError
	case "critical":
		return SeverityCritical
	default:
		return SeverityWarning
	}
}

// UnmarshalText is unmarshal text as Severity
//
// This function always returns nil.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}

// MarshalText is marshal Severity as text
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SeverityTable maps region statuses to severities.
// It is immutable after creation.
type SeverityTable struct {
	table    map[region.Status]Severity
	fallback Severity
}

// NewSeverityTable makes a SeverityTable.
// Statuses not in table are mapped to fallback.
func NewSeverityTable(table map[region.Status]Severity, fallback Severity) SeverityTable {
	t := make(map[region.Status]Severity, len(table))
	for k, v := range table {
		t[k] = v
	}
	return SeverityTable{table: t, fallback: fallback}
}

// Lookup returns the severity of the status.
// It never fails; unknown statuses get the fallback severity.
func (t SeverityTable) Lookup(s region.Status) Severity {
	if v, ok := t.table[s]; ok {
		return v
	}
	return t.fallback
}

// DefaultSeverities is the severity table for Cloudflare statuses.
var DefaultSeverities = NewSeverityTable(map[region.Status]Severity{
	region.StatusOperational:         SeverityInfo,
	region.StatusReRouted:            SeverityWarning,
	region.StatusPartiallyReRouted:   SeverityWarning,
	region.StatusDegradedPerformance: SeverityWarning,
	region.StatusPartialOutage:       SeverityError,
	region.StatusMajorOutage:         SeverityCritical,
	region.StatusUnderMaintenance:    SeverityInfo,
}, SeverityWarning)
