package endpoint

import (
	_ "embed"
	"net/http"
	"text/template"
	"time"

	"github.com/goccy/go-json"
	"github.com/macrat/cfmon/internal/monitor"
	"github.com/macrat/cfmon/internal/region"
)

type changeJSON struct {
	Region         string           `json:"region"`
	Location       string           `json:"location"`
	PreviousStatus *region.Status   `json:"previous_status"`
	CurrentStatus  region.Status    `json:"current_status"`
	Severity       monitor.Severity `json:"severity"`
}

type statusJSON struct {
	CheckedAt  *time.Time      `json:"checked_at"`
	StartedAt  time.Time       `json:"started_at"`
	Schedule   string          `json:"schedule"`
	Healthy    bool            `json:"healthy"`
	Error      string          `json:"error,omitempty"`
	Regions    region.Snapshot `json:"regions"`
	Changes    []changeJSON    `json:"changes"`
	AlertsSent int             `json:"alerts_sent"`
}

func makeStatusJSON(s Store) statusJSON {
	rep := s.Latest()

	sj := statusJSON{
		StartedAt:  s.StartedAt(),
		Schedule:   s.Schedule(),
		Healthy:    rep.Checked() && rep.Error == nil,
		Regions:    rep.Result.Current,
		Changes:    []changeJSON{},
		AlertsSent: rep.Result.Sent,
	}
	if sj.Regions == nil {
		sj.Regions = region.Snapshot{}
	}
	if rep.Checked() {
		t := rep.Result.CheckedAt
		sj.CheckedAt = &t
	}
	if rep.Error != nil {
		sj.Error = rep.Error.Error()
	}

	for _, ev := range rep.Result.Changes {
		c := changeJSON{
			Region:        ev.Code,
			Location:      ev.Current.Location,
			CurrentStatus: ev.Current.Status,
			Severity:      monitor.DefaultSeverities.Lookup(ev.Current.Status),
		}
		if prev, ok := ev.PreviousStatus(); ok {
			c.PreviousStatus = &prev
		}
		sj.Changes = append(sj.Changes, c)
	}

	return sj
}

// StatusJSONEndpoint replies the last check in json format.
func StatusJSONEndpoint(s Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")

		enc := json.NewEncoder(w)
		enc.EncodeContext(r.Context(), makeStatusJSON(s))
	}
}

//go:embed templates/status.txt
var statusTextTemplate string

type statusRow struct {
	Code     string
	Location string
	Status   region.Status
	Severity monitor.Severity
}

type statusText struct {
	statusJSON
	Rows []statusRow
}

// StatusTextEndpoint replies the last check in plain text.
func StatusTextEndpoint(s Store) http.HandlerFunc {
	tmpl := template.Must(template.New("status.txt").Parse(statusTextTemplate))

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")

		st := statusText{statusJSON: makeStatusJSON(s)}
		for _, code := range st.Regions.Codes() {
			rs := st.Regions[code]
			st.Rows = append(st.Rows, statusRow{
				Code:     code,
				Location: rs.Location,
				Status:   rs.Status,
				Severity: monitor.DefaultSeverities.Lookup(rs.Status),
			})
		}

		tmpl.Execute(w, st)
	}
}
