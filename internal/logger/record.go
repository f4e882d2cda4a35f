package logger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
)

// Status is the status of a log record.
type Status int8

const (
	// StatusUnknown means the result could not be determined.
	StatusUnknown Status = iota

	// StatusHealthy means the step succeeded and the target is fine.
	StatusHealthy

	// StatusDegrade means the target works but is partially impaired.
	StatusDegrade

	// StatusFailure means the step failed, or the target is in failure.
	StatusFailure

	// StatusAborted means the step was stopped before completion.
	StatusAborted
)

// String is make Status a string
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "HEALTHY"
	case StatusDegrade:
		return "DEGRADE"
	case StatusFailure:
		return "FAILURE"
	case StatusAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText is marshal Status as text
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Record is a line of the log.
type Record struct {
	Time   time.Time
	Status Status

	// Target is what this record is about, like "cloudflare:JNB" or "incidentio:JNB".
	Target string

	Message string

	// Extra is additional fields of the record.
	// The keys "time", "status", "target" and "message" are ignored.
	Extra map[string]interface{}
}

func (r Record) extraKeys() []string {
	ks := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		switch k {
		case "time", "status", "target", "message":
			continue
		}
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// MarshalJSON implements json.Marshaler.
// The extra fields are placed at the same level as the standard fields.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(r.Extra)+4)
	for _, k := range r.extraKeys() {
		m[k] = r.Extra[k]
	}
	m["time"] = r.Time.Format(time.RFC3339)
	m["status"] = r.Status
	m["target"] = r.Target
	m["message"] = r.Message

	return json.Marshal(m)
}

func escapeMessage(s string) string {
	for _, x := range []struct {
		From string
		To   string
	}{
		{`\`, `\\`},
		{"\t", `\t`},
		{"\n", `\n`},
	} {
		s = strings.ReplaceAll(s, x.From, x.To)
	}
	return s
}

func formatExtraValue(v interface{}) string {
	switch x := v.(type) {
	case time.Time:
		return humanize.Time(x)
	case *time.Time:
		if x == nil {
			return "unknown"
		}
		return humanize.Time(*x)
	case fmt.Stringer:
		return x.String()
	case string:
		return x
	}

	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(bs)
}

// String is make Record a human readable string for row in the log.
func (r Record) String() string {
	ss := []string{
		r.Time.Format(time.RFC3339),
		r.Status.String(),
		r.Target,
		escapeMessage(r.Message),
	}

	for _, k := range r.extraKeys() {
		ss = append(ss, k+"="+escapeMessage(formatExtraValue(r.Extra[k])))
	}

	return strings.Join(ss, "\t")
}
