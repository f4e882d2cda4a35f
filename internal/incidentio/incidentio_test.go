package incidentio_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/macrat/cfmon/internal/cferr"
	"github.com/macrat/cfmon/internal/incidentio"
	"github.com/macrat/cfmon/internal/logger"
	"github.com/macrat/cfmon/internal/monitor"
	"github.com/macrat/cfmon/internal/region"
)

type request struct {
	Authorization string
	ContentType   string
	Payload       incidentio.Payload
}

type DummyWebhook struct {
	sync.Mutex

	Server   *httptest.Server
	Requests []request
	Reject   map[string]bool
}

func RunDummyWebhook(t *testing.T) *DummyWebhook {
	t.Helper()

	w := &DummyWebhook{Reject: make(map[string]bool)}
	w.Server = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		var p incidentio.Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Lock()
		w.Requests = append(w.Requests, request{
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Payload:       p,
		})
		reject := w.Reject[p.Metadata.Region]
		w.Unlock()

		if reject {
			rw.WriteHeader(http.StatusUnprocessableEntity)
			rw.Write([]byte(`{"type":"validation_error"}`))
			return
		}
		rw.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(w.Server.Close)

	return w
}

func TestNewPayload(t *testing.T) {
	changed := time.Date(2026, 10, 15, 7, 45, 0, 0, time.UTC)

	p := incidentio.NewPayload(monitor.ChangeEvent{
		Code:     "JNB",
		Previous: &region.RegionStatus{Location: "Johannesburg, South Africa", Status: "operational"},
		Current:  region.RegionStatus{Location: "Johannesburg, South Africa", Status: "major_outage", LastChanged: &changed},
	}, monitor.DefaultSeverities)

	expected := incidentio.Payload{
		Title: "Cloudflare Johannesburg, South Africa (JNB): Major Outage",
		Description: "Cloudflare region status change detected:\n\n" +
			"**Region:** Johannesburg, South Africa (JNB)\n" +
			"**Previous Status:** Operational\n" +
			"**Current Status:** Major Outage\n" +
			"**Changed At:** 2026-10-15T07:45:00Z\n\n" +
			"[View Cloudflare Status Page](https://www.cloudflarestatus.com)",
		DeduplicationKey: incidentio.DeduplicationKey("JNB", "major_outage"),
		Status:           "firing",
		Metadata: incidentio.Metadata{
			Region:         "JNB",
			Location:       "Johannesburg, South Africa",
			PreviousStatus: "operational",
			CurrentStatus:  "major_outage",
			Severity:       monitor.SeverityCritical,
			ChangedAt:      "2026-10-15T07:45:00Z",
			Source:         "cfmon",
		},
		SourceURL: "https://www.cloudflarestatus.com",
		Timestamp: "2026-10-15T07:45:00Z",
	}

	if diff := cmp.Diff(expected, p); diff != "" {
		t.Errorf("unexpected payload\n%s", diff)
	}
}

func TestNewPayload_newRegion(t *testing.T) {
	orig := incidentio.CurrentTime
	incidentio.CurrentTime = func() time.Time {
		return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	}
	defer func() {
		incidentio.CurrentTime = orig
	}()

	p := incidentio.NewPayload(monitor.ChangeEvent{
		Code:    "LOS",
		Current: region.RegionStatus{Location: "Lagos, Nigeria", Status: "operational"},
	}, monitor.DefaultSeverities)

	if p.Status != "resolved" {
		t.Errorf("operational must be resolved but got %q", p.Status)
	}
	if p.Metadata.PreviousStatus != "" {
		t.Errorf("previous status must be empty but got %q", p.Metadata.PreviousStatus)
	}
	if p.Metadata.Severity != monitor.SeverityInfo {
		t.Errorf("unexpected severity: %s", p.Metadata.Severity)
	}
	if p.Metadata.ChangedAt != "2026-10-15T09:00:00Z" {
		t.Errorf("unexpected changed time: %s", p.Metadata.ChangedAt)
	}
	if p.Timestamp != "2026-10-15T09:00:00Z" {
		t.Errorf("unexpected timestamp: %s", p.Timestamp)
	}
	if !strings.Contains(p.Description, "**Previous Status:** Unknown\n") {
		t.Errorf("unexpected description:\n%s", p.Description)
	}
}

func TestDeduplicationKey(t *testing.T) {
	t.Parallel()

	a := incidentio.DeduplicationKey("JNB", "major_outage")
	if a != incidentio.DeduplicationKey("JNB", "major_outage") {
		t.Errorf("key must be stable")
	}
	if a == incidentio.DeduplicationKey("JNB", "partial_outage") {
		t.Errorf("key must depend on status")
	}
	if a == incidentio.DeduplicationKey("LOS", "major_outage") {
		t.Errorf("key must depend on region")
	}
}

func TestTitleStatus(t *testing.T) {
	t.Parallel()

	for in, want := range map[region.Status]string{
		"operational":         "Operational",
		"partially_re_routed": "Partially Re Routed",
		"something_new":       "Something New",
	} {
		if got := incidentio.TitleStatus(in); got != want {
			t.Errorf("%s: expected %q but got %q", in, want, got)
		}
	}
}

func TestNotifier_NotifyAll(t *testing.T) {
	t.Parallel()

	w := RunDummyWebhook(t)
	var log bytes.Buffer

	n := incidentio.New(w.Server.URL, "secret-token", 5*time.Second, monitor.DefaultSeverities, logger.New(&log, true))

	sent, err := n.NotifyAll(context.Background(), []monitor.ChangeEvent{
		{Code: "JNB", Previous: &region.RegionStatus{Status: "operational"}, Current: region.RegionStatus{Location: "Johannesburg, South Africa", Status: "major_outage"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if sent != 1 {
		t.Errorf("expected 1 alert sent but got %d", sent)
	}

	if len(w.Requests) != 1 {
		t.Fatalf("unexpected requests: %v", w.Requests)
	}
	if w.Requests[0].Authorization != "Bearer secret-token" {
		t.Errorf("unexpected authorization header: %q", w.Requests[0].Authorization)
	}
	if w.Requests[0].ContentType != "application/json" {
		t.Errorf("unexpected content type: %q", w.Requests[0].ContentType)
	}
	if w.Requests[0].Payload.Metadata.Severity != monitor.SeverityCritical {
		t.Errorf("unexpected severity: %s", w.Requests[0].Payload.Metadata.Severity)
	}
	if _, err := time.Parse(time.RFC3339, w.Requests[0].Payload.Timestamp); err != nil {
		t.Errorf("unexpected timestamp: %q", w.Requests[0].Payload.Timestamp)
	}
	if !strings.Contains(log.String(), `"message":"alert sent"`) {
		t.Errorf("delivery is not logged\n%s", log.String())
	}
}

func TestNotifier_NotifyAll_noToken(t *testing.T) {
	t.Parallel()

	w := RunDummyWebhook(t)

	n := incidentio.New(w.Server.URL, "", 5*time.Second, monitor.DefaultSeverities, logger.Discard)
	if _, err := n.NotifyAll(context.Background(), []monitor.ChangeEvent{{Code: "LOS", Current: region.RegionStatus{Status: "operational"}}}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if w.Requests[0].Authorization != "" {
		t.Errorf("expected no authorization header but got %q", w.Requests[0].Authorization)
	}
}

func TestNotifier_NotifyAll_partialFailure(t *testing.T) {
	t.Parallel()

	w := RunDummyWebhook(t)
	w.Reject["JNB"] = true
	var log bytes.Buffer

	n := incidentio.New(w.Server.URL, "token", 5*time.Second, monitor.DefaultSeverities, logger.New(&log, true))

	sent, err := n.NotifyAll(context.Background(), []monitor.ChangeEvent{
		{Code: "JNB", Current: region.RegionStatus{Status: "partial_outage"}},
		{Code: "LOS", Current: region.RegionStatus{Status: "major_outage"}},
	})

	if sent != 1 {
		t.Errorf("expected 1 alert sent but got %d", sent)
	}
	if len(w.Requests) != 2 {
		t.Errorf("expected 2 requests but got %d", len(w.Requests))
	}

	var ne *cferr.NotifyError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotifyError but got %v", err)
	}
	if diff := cmp.Diff([]string{"JNB"}, ne.Regions()); diff != "" {
		t.Errorf("unexpected failed regions\n%s", diff)
	}

	var he incidentio.HTTPError
	if !errors.As(ne.Cause("JNB"), &he) || he.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unexpected cause: %v", ne.Cause("JNB"))
	}

	for _, want := range []string{`"target":"incidentio:JNB"`, `"http_status":422`, `validation_error`} {
		if !strings.Contains(log.String(), want) {
			t.Errorf("log does not contain %s\n%s", want, log.String())
		}
	}
}

func TestNotifier_NotifyAll_unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	u := server.URL
	server.Close()

	n := incidentio.New(u, "", time.Second, monitor.DefaultSeverities, logger.Discard)

	sent, err := n.NotifyAll(context.Background(), []monitor.ChangeEvent{
		{Code: "JNB", Current: region.RegionStatus{Status: "partial_outage"}},
		{Code: "LOS", Current: region.RegionStatus{Status: "major_outage"}},
	})
	if sent != 0 {
		t.Errorf("expected nothing sent but got %d", sent)
	}
	if !errors.Is(err, cferr.ErrNotify) {
		t.Errorf("expected ErrNotify but got %v", err)
	}
}
