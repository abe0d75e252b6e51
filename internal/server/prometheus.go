// prometheus.go - Prometheus text exposition of the in-process counters.
package server

import (
	"fmt"
	"net/http"
	"strings"
)

// promMetricsHandler serves the counters at /metrics in Prometheus format.
func (s *Server) promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	snap := getMetrics().Snapshot()

	var out strings.Builder

	writeCounter := func(name, help string, v int64) {
		fmt.Fprintf(&out, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&out, "# TYPE %s counter\n", name)
		fmt.Fprintf(&out, "%s %d\n\n", name, v)
	}

	fmt.Fprintf(&out, "# HELP pd_info Application version info\n")
	fmt.Fprintf(&out, "# TYPE pd_info gauge\n")
	fmt.Fprintf(&out, "pd_info{version=%q,commit=%q} 1\n\n", s.cfg.Build.Version, s.cfg.Build.Commit)

	writeCounter("pd_requests_total", "Total number of HTTP requests", snap.RequestsTotal)
	writeCounter("pd_request_errors_4xx", "HTTP requests answered with a 4xx status", snap.RequestErrors4xx)
	writeCounter("pd_request_errors_5xx", "HTTP requests answered with a 5xx status", snap.RequestErrors5xx)

	writeCounter("pd_uploads_total", "Total number of photos uploaded", snap.UploadsTotal)
	writeCounter("pd_upload_bytes_total", "Total bytes of photos uploaded", snap.UploadBytesTotal)
	writeCounter("pd_photos_served_total", "Total number of photo images served", snap.PhotosServed)
	writeCounter("pd_downloads_total", "Total number of photo downloads", snap.DownloadsTotal)

	writeCounter("pd_sweep_runs_total", "Total number of expiry sweeper runs", snap.SweepRuns)
	writeCounter("pd_photos_swept_total", "Total number of expired photos removed", snap.PhotosSwept)

	writeCounter("pd_shares_issued_total", "Total number of share tokens issued", snap.SharesIssued)
	writeCounter("pd_shares_resolved_total", "Total number of share tokens resolved", snap.SharesResolved)

	writeCounter("pd_login_attempts_total", "Total number of admin login attempts", snap.LoginAttempts)
	writeCounter("pd_login_success_total", "Total number of successful admin logins", snap.LoginSuccess)
	writeCounter("pd_login_failures_total", "Total number of failed admin logins", snap.LoginFailures)

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.String()))
}
