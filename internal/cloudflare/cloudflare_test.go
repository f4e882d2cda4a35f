package cloudflare_test

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/macrat/cfmon/internal/cferr"
	"github.com/macrat/cfmon/internal/cloudflare"
	"github.com/macrat/cfmon/internal/region"
)

//go:embed testdata/components.json
var componentsJSON []byte

func RunDummyStatusServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/components.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(componentsJSON)
	})
	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream is down\n"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page": {}}`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	return httptest.NewServer(mux)
}

func ptime(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var testRegions = region.NewTable(
	region.Region{Code: "JNB", Location: "Johannesburg, South Africa"},
	region.Region{Code: "LOS", Location: "Lagos, Nigeria"},
	region.Region{Code: "NBO", Location: "Nairobi, Kenya"},
	region.Region{Code: "ACC", Location: "Accra, Ghana"},
)

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	server := RunDummyStatusServer()
	defer server.Close()

	c := cloudflare.New(server.URL+"/components.json", 5*time.Second)

	s, err := c.Fetch(context.Background(), testRegions)
	if err != nil {
		t.Fatalf("failed to fetch: %s", err)
	}

	expected := region.Snapshot{
		"JNB": {
			Location:    "Johannesburg, South Africa",
			Status:      region.StatusMajorOutage,
			LastChanged: ptime("2026-10-15T07:45:00Z"),
		},
		"LOS": {
			Location:    "Lagos, Nigeria",
			Status:      region.StatusOperational,
			LastChanged: ptime("2026-10-01T00:00:00Z"),
		},
		"NBO": {
			Location: "Nairobi, Kenya",
			Status:   region.StatusUnderMaintenance,
		},
	}

	if diff := cmp.Diff(expected, s); diff != "" {
		t.Errorf("unexpected snapshot\n%s", diff)
	}
}

func TestClient_Fetch_errors(t *testing.T) {
	t.Parallel()

	server := RunDummyStatusServer()
	t.Cleanup(server.Close)

	tests := []struct {
		Path    string
		Regions region.Table
		Message string
	}{
		{"/error", testRegions, "unexpected status: 502 Bad Gateway: upstream is down"},
		{"/broken", testRegions, "failed to parse response: "},
		{"/empty", testRegions, "failed to parse response: no components in the response"},
		{"/slow", testRegions, ""},
		{"/components.json", region.NewTable(region.Region{Code: "ACC", Location: "Accra, Ghana"}), "none of the 1 monitored regions found in 7 components"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Path, func(t *testing.T) {
			t.Parallel()

			c := cloudflare.New(server.URL+tt.Path, 500*time.Millisecond)

			_, err := c.Fetch(context.Background(), tt.Regions)
			if err == nil {
				t.Fatalf("expected error but got nil")
			}

			if !errors.Is(err, cferr.ErrFetch) {
				t.Errorf("expected ErrFetch but got %v", err)
			}

			if !strings.Contains(err.Error(), tt.Message) {
				t.Errorf("unexpected error message\nexpected: %s\n but got: %s", tt.Message, err)
			}
		})
	}
}

func TestClient_Fetch_connectionRefused(t *testing.T) {
	t.Parallel()

	server := RunDummyStatusServer()
	u := server.URL
	server.Close()

	_, err := cloudflare.New(u+"/components.json", time.Second).Fetch(context.Background(), testRegions)
	if !errors.Is(err, cferr.ErrFetch) {
		t.Errorf("expected ErrFetch but got %v", err)
	}
}

func TestClient_userAgent(t *testing.T) {
	t.Parallel()

	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write(componentsJSON)
	}))
	defer server.Close()

	if _, err := cloudflare.New(server.URL, time.Second).Components(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if ua != cloudflare.UserAgent {
		t.Errorf("unexpected user agent: %q", ua)
	}
}

func TestGroups(t *testing.T) {
	t.Parallel()

	cs := []cloudflare.Component{
		{ID: "g1", Name: "Africa", Group: true},
		{ID: "g2", Name: "Europe", Group: true},
		{ID: "c1", Name: "Lagos, Nigeria - (LOS)", GroupID: "g1"},
		{ID: "c2", Name: "Amsterdam, Netherlands - (AMS)", GroupID: "g2"},
		{ID: "c3", Name: "Cloudflare API"},
		{ID: "c4", Name: "Johannesburg, South Africa - (JNB)", GroupID: "g1"},
	}

	gs := cloudflare.Groups(cs, []string{"Africa", "Asia"})

	expected := map[string][]cloudflare.Component{
		"Africa": {cs[2], cs[5]},
		"Asia":   nil,
	}
	if diff := cmp.Diff(expected, gs); diff != "" {
		t.Errorf("unexpected groups\n%s", diff)
	}
}

func TestComponent_Code(t *testing.T) {
	t.Parallel()

	if _, ok := (cloudflare.Component{Name: "Group (ABC)", Group: true}).Code(); ok {
		t.Errorf("group component must not have a region code")
	}
	if code, ok := (cloudflare.Component{Name: "Accra, Ghana - (ACC)"}).Code(); !ok || code != "ACC" {
		t.Errorf("unexpected code: %q %v", code, ok)
	}
}
