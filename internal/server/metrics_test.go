package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	m := &Metrics{}

	m.RecordUpload(1024)
	m.RecordUpload(2048)
	m.RecordServe()
	m.RecordDownload()
	m.RecordSweep(3)
	m.RecordShareIssued()
	m.RecordShareResolved()
	m.RecordLoginAttempt(true)
	m.RecordLoginAttempt(false)
	m.RecordRequest(200)
	m.RecordRequest(404)
	m.RecordRequest(500)

	snap := m.Snapshot()
	if snap.UploadsTotal != 2 || snap.UploadBytesTotal != 3072 {
		t.Errorf("uploads = %d/%d bytes, want 2/3072", snap.UploadsTotal, snap.UploadBytesTotal)
	}
	if snap.PhotosServed != 1 || snap.DownloadsTotal != 1 {
		t.Errorf("served/downloads = %d/%d, want 1/1", snap.PhotosServed, snap.DownloadsTotal)
	}
	if snap.SweepRuns != 1 || snap.PhotosSwept != 3 {
		t.Errorf("sweeps = %d runs/%d swept, want 1/3", snap.SweepRuns, snap.PhotosSwept)
	}
	if snap.SharesIssued != 1 || snap.SharesResolved != 1 {
		t.Errorf("shares = %d/%d, want 1/1", snap.SharesIssued, snap.SharesResolved)
	}
	if snap.LoginAttempts != 2 || snap.LoginSuccess != 1 || snap.LoginFailures != 1 {
		t.Errorf("logins = %d/%d/%d", snap.LoginAttempts, snap.LoginSuccess, snap.LoginFailures)
	}
	if snap.RequestsTotal != 3 || snap.RequestErrors4xx != 1 || snap.RequestErrors5xx != 1 {
		t.Errorf("requests = %d/%d/%d", snap.RequestsTotal, snap.RequestErrors4xx, snap.RequestErrors5xx)
	}
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := &Metrics{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRequest(200)
			m.Snapshot()
		}()
	}
	wg.Wait()

	if got := m.Snapshot().RequestsTotal; got != 50 {
		t.Errorf("RequestsTotal = %d, want 50", got)
	}
}

func TestPromMetricsHandler(t *testing.T) {
	s := &Server{cfg: Config{Build: BuildInfo{Version: "1.2.3", Commit: "abc1234"}}}

	rec := httptest.NewRecorder()
	s.promMetricsHandler(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`pd_info{version="1.2.3",commit="abc1234"} 1`,
		"# TYPE pd_requests_total counter",
		"pd_sweep_runs_total",
		"pd_shares_issued_total",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
