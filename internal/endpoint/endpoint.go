// Package endpoint serves the status of the last check over HTTP.
package endpoint

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
)

func New(s Store) http.Handler {
	m := http.NewServeMux()

	m.Handle("/status", http.RedirectHandler("/status.txt", http.StatusMovedPermanently))
	m.HandleFunc("/status.txt", StatusTextEndpoint(s))
	m.HandleFunc("/status.json", StatusJSONEndpoint(s))

	m.HandleFunc("/healthz", HealthzEndpoint(s))

	m.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/status.txt", http.StatusFound)
		} else {
			http.NotFound(w, r)
		}
	})

	return gziphandler.GzipHandler(m)
}
