// Package schedule parses the check schedule of the serve mode.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// MinInterval is the shortest interval allowed, to be kind to the Cloudflare status API.
const MinInterval = 30 * time.Second

var (
	// DefaultSchedule is the same cadence as the CI scheduler.
	DefaultSchedule = Schedule(IntervalSchedule{5 * time.Minute})
)

// Schedule is a schedule of checks.
type Schedule interface {
	cron.Schedule
	fmt.Stringer

	// RunOnStart reports whether the check should run immediately when the server starts.
	RunOnStart() bool
}

// Parse parses spec as interval like "5m" or "@every 5m", or as cron spec like "*/5 * * * *".
func Parse(spec string) (Schedule, error) {
	spec = strings.TrimSpace(spec)

	interval, isInterval := strings.CutPrefix(spec, "@every ")
	if !isInterval {
		_, err := time.ParseDuration(spec)
		isInterval = err == nil
	}
	if isInterval {
		s, err := ParseInterval(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
		}
		return s, nil
	}

	s, err := ParseCron(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// IntervalSchedule runs checks at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// ParseInterval parses an interval like "5m".
func ParseInterval(spec string) (IntervalSchedule, error) {
	d, err := time.ParseDuration(strings.TrimSpace(spec))
	if err != nil {
		return IntervalSchedule{}, err
	}
	if d < MinInterval {
		return IntervalSchedule{}, fmt.Errorf("interval must be %s or longer: %s", MinInterval, d)
	}
	return IntervalSchedule{d}, nil
}

func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s IntervalSchedule) String() string {
	return s.Interval.String()
}

func (s IntervalSchedule) RunOnStart() bool {
	return true
}

// CronSchedule runs checks at the times of a cron spec.
type CronSchedule struct {
	spec     string
	schedule cron.Schedule
}

var delimiter = regexp.MustCompile("[ \t]+")

// ParseCron parses 4 or 5 fields cron spec, or a descriptor like "@hourly".
func ParseCron(spec string) (CronSchedule, error) {
	switch spec {
	case "@daily":
		spec = "0 0 * * ?"
	case "@hourly":
		spec = "0 * * * ?"
	default:
		ss := delimiter.Split(strings.TrimSpace(spec), -1)
		if len(ss) == 4 {
			ss = append(ss, "?")
		}
		spec = strings.Join(ss, " ")
	}

	s, err := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional).Parse(spec)
	if err != nil {
		return CronSchedule{}, err
	}

	return CronSchedule{
		spec:     spec,
		schedule: s,
	}, nil
}

func (s CronSchedule) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s CronSchedule) String() string {
	return s.spec
}

func (s CronSchedule) RunOnStart() bool {
	return false
}
