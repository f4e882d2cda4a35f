// Package testutil provides fakes of external services for tests of cfmon.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// StatusPage is a fake of the Cloudflare status API and the incident.io alert source.
type StatusPage struct {
	sync.Mutex

	Server *httptest.Server

	statuses map[string]string
	fail     bool
	reject   map[string]bool
	alerts   []map[string]interface{}
}

// StartStatusPage starts a StatusPage that reports statuses, a map of region code to component status.
// All regions are members of the "Africa" group.
func StartStatusPage(t testing.TB, statuses map[string]string) *StatusPage {
	t.Helper()

	p := &StatusPage{statuses: statuses, reject: make(map[string]bool)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/components.json", p.serveComponents)
	mux.HandleFunc("/webhook", p.serveWebhook)

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)

	return p
}

func (p *StatusPage) serveComponents(w http.ResponseWriter, r *http.Request) {
	p.Lock()
	defer p.Unlock()

	if p.fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
		return
	}

	cs := []map[string]interface{}{
		{"id": "africa", "name": "Africa", "status": "operational", "group": true, "group_id": nil},
	}
	for code, status := range p.statuses {
		cs = append(cs, map[string]interface{}{
			"id":         strings.ToLower(code),
			"name":       "Somewhere - (" + code + ")",
			"status":     status,
			"group":      false,
			"group_id":   "africa",
			"updated_at": "2026-10-15T07:45:00Z",
		})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"components": cs})
}

func (p *StatusPage) serveWebhook(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	var payload map[string]interface{}
	json.Unmarshal(raw, &payload)

	p.Lock()
	defer p.Unlock()

	p.alerts = append(p.alerts, payload)

	if p.reject[alertMetadata(payload, "region")] {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("something wrong"))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func alertMetadata(payload map[string]interface{}, key string) string {
	m, _ := payload["metadata"].(map[string]interface{})
	s, _ := m[key].(string)
	return s
}

// ComponentsURL returns URL of the fake components API.
func (p *StatusPage) ComponentsURL() string {
	return p.Server.URL + "/api/v2/components.json"
}

// WebhookURL returns URL of the fake alert source.
func (p *StatusPage) WebhookURL() string {
	return p.Server.URL + "/webhook"
}

// SetFail makes the components API respond 503.
func (p *StatusPage) SetFail(fail bool) {
	p.Lock()
	defer p.Unlock()

	p.fail = fail
}

// Reject makes the alert source respond 500 for the region.
func (p *StatusPage) Reject(code string) {
	p.Lock()
	defer p.Unlock()

	p.reject[code] = true
}

// Alerted returns the metadata field of received alerts, in received order.
func (p *StatusPage) Alerted(key string) []string {
	p.Lock()
	defer p.Unlock()

	var ss []string
	for _, a := range p.alerts {
		ss = append(ss, alertMetadata(a, key))
	}
	return ss
}
