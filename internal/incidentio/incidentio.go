// Package incidentio sends status change alerts to an incident.io HTTP alert source.
package incidentio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/macrat/cfmon/internal/cferr"
	"github.com/macrat/cfmon/internal/logger"
	"github.com/macrat/cfmon/internal/monitor"
	"github.com/macrat/cfmon/internal/region"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	StatusPageURL = "https://www.cloudflarestatus.com"
	Source        = "cfmon"

	// ErrorBodyLimit is the maximum bytes of the response body to include in an error message.
	ErrorBodyLimit = 1024
)

var (
	UserAgent = "cfmon"

	// CurrentTime returns current time.
	// This variable is for testing purpose.
	CurrentTime = time.Now

	dedupNamespace = uuid.NewMD5(uuid.NameSpaceURL, []byte(StatusPageURL))
)

// Metadata is the structured part of an alert.
type Metadata struct {
	Region         string           `json:"region"`
	Location       string           `json:"location"`
	PreviousStatus string           `json:"previous_status,omitempty"`
	CurrentStatus  string           `json:"current_status"`
	Severity       monitor.Severity `json:"severity"`
	ChangedAt      string           `json:"changed_at"`
	Source         string           `json:"source"`
}

// Payload is the request body of an incident.io HTTP alert.
type Payload struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	DeduplicationKey string   `json:"deduplication_key"`
	Status           string   `json:"status"`
	Metadata         Metadata `json:"metadata"`
	SourceURL        string   `json:"source_url"`

	// Timestamp is when the region changed, or when the change was found if Cloudflare did not tell.
	Timestamp string `json:"timestamp"`
}

// TitleStatus makes a status readable, like "Major Outage" for "major_outage".
func TitleStatus(s region.Status) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

// DeduplicationKey returns the stable key for the status of the region.
// Each status of a region has its own key, so a resolved alert does not close the alert of the previous status.
func DeduplicationKey(code string, s region.Status) string {
	return uuid.NewMD5(dedupNamespace, []byte(code+"-"+string(s))).String()
}

// NewPayload makes an alert payload for the event.
func NewPayload(ev monitor.ChangeEvent, severities monitor.SeverityTable) Payload {
	changedAt := CurrentTime().UTC()
	if ev.Current.LastChanged != nil {
		changedAt = ev.Current.LastChanged.UTC()
	}

	previous := "Unknown"
	prevStatus, hasPrevious := ev.PreviousStatus()
	if hasPrevious {
		previous = TitleStatus(prevStatus)
	}

	status := "firing"
	if ev.Current.Status == region.StatusOperational {
		status = "resolved"
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "Cloudflare region status change detected:\n\n")
	fmt.Fprintf(&desc, "**Region:** %s (%s)\n", ev.Current.Location, ev.Code)
	fmt.Fprintf(&desc, "**Previous Status:** %s\n", previous)
	fmt.Fprintf(&desc, "**Current Status:** %s\n", TitleStatus(ev.Current.Status))
	fmt.Fprintf(&desc, "**Changed At:** %s\n\n", changedAt.Format(time.RFC3339))
	fmt.Fprintf(&desc, "[View Cloudflare Status Page](%s)", StatusPageURL)

	return Payload{
		Title:            fmt.Sprintf("Cloudflare %s (%s): %s", ev.Current.Location, ev.Code, TitleStatus(ev.Current.Status)),
		Description:      desc.String(),
		DeduplicationKey: DeduplicationKey(ev.Code, ev.Current.Status),
		Status:           status,
		Metadata: Metadata{
			Region:         ev.Code,
			Location:       ev.Current.Location,
			PreviousStatus: string(prevStatus),
			CurrentStatus:  string(ev.Current.Status),
			Severity:       severities.Lookup(ev.Current.Status),
			ChangedAt:      changedAt.Format(time.RFC3339),
			Source:         Source,
		},
		SourceURL: StatusPageURL,
		Timestamp: changedAt.Format(time.RFC3339),
	}
}

// Notifier sends alerts to incident.io.
type Notifier struct {
	url        string
	token      string
	timeout    time.Duration
	client     *http.Client
	severities monitor.SeverityTable
	logger     *logger.Logger
}

// New makes a Notifier for the webhook url.
// The token is sent as a bearer token if it is not empty.
func New(url, token string, timeout time.Duration, severities monitor.SeverityTable, l *logger.Logger) *Notifier {
	return &Notifier{
		url:        url,
		token:      token,
		timeout:    timeout,
		severities: severities,
		logger:     l,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DisableKeepAlives:     true,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// Send sends an alert for the event.
func (n *Notifier) Send(ctx context.Context, ev monitor.ChangeEvent) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body, err := json.Marshal(NewPayload(ev, n.severities))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		bs, _ := io.ReadAll(io.LimitReader(resp.Body, ErrorBodyLimit))
		return HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(bs))}
	}

	return nil
}

// HTTPError is the error for non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("unexpected status: %s: %s", e.Status, e.Body)
}

// NotifyAll implements monitor.Notifier.
// A failure for an event does not stop sending the rest.
func (n *Notifier) NotifyAll(ctx context.Context, events []monitor.ChangeEvent) (sent int, err error) {
	errs := &cferr.NotifyError{}

	for _, ev := range events {
		target := "incidentio:" + ev.Code
		extra := map[string]interface{}{
			"severity":      n.severities.Lookup(ev.Current.Status),
			"region_status": ev.Current.Status,
		}

		if err := n.Send(ctx, ev); err != nil {
			if he, ok := err.(HTTPError); ok {
				extra["http_status"] = he.StatusCode
				extra["response"] = he.Body
			}
			n.logger.Failure(target, err.Error(), extra)
			errs.Add(ev.Code, err)
			continue
		}

		n.logger.Healthy(target, "alert sent", extra)
		sent++
	}

	return sent, errs.Build()
}
