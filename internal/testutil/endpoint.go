package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/macrat/cfmon/internal/endpoint"
)

// ReportStore is an endpoint.Store that always returns Report.
type ReportStore struct {
	Report endpoint.Report
}

func (s ReportStore) Latest() endpoint.Report {
	return s.Report
}

func (s ReportStore) Schedule() string {
	return "5m0s"
}

func (s ReportStore) StartedAt() time.Time {
	return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
}

// StartTestServer starts the endpoint server that shows rep.
func StartTestServer(t testing.TB, rep endpoint.Report) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(endpoint.New(ReportStore{rep}))
	t.Cleanup(srv.Close)

	return srv
}
