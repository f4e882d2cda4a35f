package endpoint

import (
	"fmt"
	"net/http"
)

// HealthzEndpoint is the http.HandlerFunc for /healthz page.
func HealthzEndpoint(s Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")

		rep := s.Latest()

		switch {
		case !rep.Checked():
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "UNKNOWN")
			fmt.Fprintln(w, "not checked yet")
		case rep.Error != nil:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintln(w, "FAILURE")
			fmt.Fprintln(w, rep.Error)
		default:
			fmt.Fprintln(w, "HEALTHY")
		}
	}
}
