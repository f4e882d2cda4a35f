package logger_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/macrat/cfmon/internal/logger"
	"github.com/macrat/cfmon/internal/region"
)

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, false)

	l.Print(logger.Record{
		Time:    time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Status:  logger.StatusFailure,
		Target:  "incidentio:JNB",
		Message: "unexpected status",
		Extra: map[string]interface{}{
			"http_status": 500,
			"status":      "must be ignored",
		},
	})

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse log: %s\n%s", err, buf.String())
	}

	expected := map[string]interface{}{
		"time":        "2026-01-02T15:04:05Z",
		"status":      "FAILURE",
		"target":      "incidentio:JNB",
		"message":     "unexpected status",
		"http_status": float64(500),
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("unexpected log record\n%s", diff)
	}
}

func TestLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewText(&buf)

	l.Print(logger.Record{
		Time:    time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Status:  logger.StatusHealthy,
		Target:  "cloudflare:JNB",
		Message: "operational\nfine",
		Extra: map[string]interface{}{
			"location": "Johannesburg, South Africa",
			"count":    3,
		},
	})

	expected := "2026-01-02T15:04:05Z\tHEALTHY\tcloudflare:JNB\toperational\\nfine\tcount=3\tlocation=Johannesburg, South Africa\n"
	if buf.String() != expected {
		t.Errorf("unexpected log\nexpected: %q\n but got: %q", expected, buf.String())
	}
}

func TestLogger_Text_regionStatus(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewText(&buf)

	l.Print(logger.Record{
		Time:    time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Status:  logger.StatusFailure,
		Target:  "incidentio:JNB",
		Message: "unexpected status",
		Extra: map[string]interface{}{
			"region_status": region.StatusMajorOutage,
		},
	})

	expected := "2026-01-02T15:04:05Z\tFAILURE\tincidentio:JNB\tunexpected status\tregion_status=major_outage\n"
	if buf.String() != expected {
		t.Errorf("unexpected log\nexpected: %q\n but got: %q", expected, buf.String())
	}
}

func TestLogger_fillTime(t *testing.T) {
	orig := logger.CurrentTime
	logger.CurrentTime = func() time.Time {
		return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	}
	defer func() {
		logger.CurrentTime = orig
	}()

	var buf bytes.Buffer
	logger.NewText(&buf).Degrade("cfmon:state", "hello", nil)

	if !strings.HasPrefix(buf.String(), "2026-10-15T00:00:00Z\tDEGRADE\tcfmon:state\thello") {
		t.Errorf("unexpected log: %q", buf.String())
	}
}
