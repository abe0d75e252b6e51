package server

import (
	"sync"
)

// Metrics holds in-process application counters.
type Metrics struct {
	mu sync.RWMutex

	// Photo lifecycle
	uploadsTotal     int64
	uploadBytesTotal int64
	photosServed     int64
	downloadsTotal   int64
	photosSwept      int64
	sweepRuns        int64

	// Sharing
	sharesIssued   int64
	sharesResolved int64

	// Auth
	loginAttempts int64
	loginSuccess  int64
	loginFailures int64

	// System
	requestsTotal    int64
	requestErrors4xx int64
	requestErrors5xx int64
}

var globalMetrics = &Metrics{}

func getMetrics() *Metrics {
	return globalMetrics
}

// RecordUpload records a stored photo.
func (m *Metrics) RecordUpload(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadsTotal++
	m.uploadBytesTotal += bytes
}

// RecordServe records a photo image served or redirected.
func (m *Metrics) RecordServe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photosServed++
}

// RecordDownload records an attachment download.
func (m *Metrics) RecordDownload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadsTotal++
}

// RecordSweep records one sweeper run and the photos it removed.
func (m *Metrics) RecordSweep(removed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepRuns++
	m.photosSwept += int64(removed)
}

// RecordShareIssued records a share token created.
func (m *Metrics) RecordShareIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sharesIssued++
}

// RecordShareResolved records a share token successfully resolved.
func (m *Metrics) RecordShareResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sharesResolved++
}

// RecordLoginAttempt records a login attempt and its outcome.
func (m *Metrics) RecordLoginAttempt(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginAttempts++
	if success {
		m.loginSuccess++
	} else {
		m.loginFailures++
	}
}

// RecordRequest records an HTTP request by status class.
func (m *Metrics) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++

	if statusCode >= 500 {
		m.requestErrors5xx++
	} else if statusCode >= 400 {
		m.requestErrors4xx++
	}
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	UploadsTotal     int64 `json:"uploads_total"`
	UploadBytesTotal int64 `json:"upload_bytes_total"`
	PhotosServed     int64 `json:"photos_served_total"`
	DownloadsTotal   int64 `json:"downloads_total"`
	PhotosSwept      int64 `json:"photos_swept_total"`
	SweepRuns        int64 `json:"sweep_runs_total"`

	SharesIssued   int64 `json:"shares_issued_total"`
	SharesResolved int64 `json:"shares_resolved_total"`

	LoginAttempts int64 `json:"login_attempts_total"`
	LoginSuccess  int64 `json:"login_success_total"`
	LoginFailures int64 `json:"login_failures_total"`

	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors4xx int64 `json:"request_errors_4xx"`
	RequestErrors5xx int64 `json:"request_errors_5xx"`
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		UploadsTotal:     m.uploadsTotal,
		UploadBytesTotal: m.uploadBytesTotal,
		PhotosServed:     m.photosServed,
		DownloadsTotal:   m.downloadsTotal,
		PhotosSwept:      m.photosSwept,
		SweepRuns:        m.sweepRuns,
		SharesIssued:     m.sharesIssued,
		SharesResolved:   m.sharesResolved,
		LoginAttempts:    m.loginAttempts,
		LoginSuccess:     m.loginSuccess,
		LoginFailures:    m.loginFailures,
		RequestsTotal:    m.requestsTotal,
		RequestErrors4xx: m.requestErrors4xx,
		RequestErrors5xx: m.requestErrors5xx,
	}
}
