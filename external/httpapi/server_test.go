package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/boothscan/internal/offline"
	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/foxseedlab/boothscan/internal/scan"
)

type mockScanService struct {
	attempts []scan.Attempt
	result   scan.Result
	report   offline.SyncReport
	syncErr  error
	pending  int
	online   bool
}

func (m *mockScanService) Submit(_ context.Context, a scan.Attempt) scan.Result {
	m.attempts = append(m.attempts, a)
	return m.result
}

func (m *mockScanService) SyncPendingScans(_ context.Context) (offline.SyncReport, error) {
	return m.report, m.syncErr
}

func (m *mockScanService) PendingCount(_ context.Context) (int, error) {
	return m.pending, nil
}

func (m *mockScanService) Online() bool { return m.online }

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth_ReportsConnectivity(t *testing.T) {
	h := NewServer(":0", &mockScanService{online: false}).Router()

	rec := serve(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Status != "ok" || got.Online {
		t.Fatalf("unexpected health %+v", got)
	}
}

func TestSubmitScan_PassesAttemptAndReturnsResult(t *testing.T) {
	location := "booth-1"
	svc := &mockScanService{result: scan.Result{
		Success: true,
		Status:  repository.ScanStatusExpected,
		Message: "Ada checked in to Keynote.",
		Scan: &repository.ScanRecord{
			ID:         "scan-1",
			AttendeeID: "attendee-a",
			LocationID: &location,
			ScanType:   repository.ScanTypeRegular,
			ScanStatus: repository.ScanStatusExpected,
		},
		Details: &scan.Details{IsRegistered: true, SessionName: "Keynote"},
	}}
	h := NewServer(":0", svc).Router()

	rec := serve(t, h, http.MethodPost, "/scans", `{"attendee_id":"attendee-a","location_id":"booth-1","device_id":"gate-1","scanned_at":"2026-10-17T09:30:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.attempts) != 1 {
		t.Fatalf("expected one attempt, got %d", len(svc.attempts))
	}
	a := svc.attempts[0]
	if a.AttendeeID != "attendee-a" || a.LocationID != "booth-1" || a.DeviceID != "gate-1" {
		t.Fatalf("unexpected attempt %+v", a)
	}
	if !a.ScannedAt.Equal(time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected scanned_at %s", a.ScannedAt)
	}

	var got scanResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Status != "EXPECTED" || got.Scan == nil || got.Scan.ID != "scan-1" || got.Details == nil || !got.Details.IsRegistered {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestSubmitScan_FailureStatusCodes(t *testing.T) {
	cases := map[scan.Failure]int{
		scan.FailureInvalidInput: http.StatusBadRequest,
		scan.FailureNotFound:     http.StatusNotFound,
		scan.FailureDuplicate:    http.StatusConflict,
		scan.FailureStorage:      http.StatusBadGateway,
	}
	for failure, want := range cases {
		svc := &mockScanService{result: scan.Result{Failure: failure, Status: repository.ScanStatusOutOfSchedule}}
		rec := serve(t, NewServer(":0", svc).Router(), http.MethodPost, "/scans", `{"attendee_id":"a","location_id":"b"}`)
		if rec.Code != want {
			t.Fatalf("expected %d for %s, got %d", want, failure, rec.Code)
		}
	}
}

func TestSubmitScan_RejectsMalformedBody(t *testing.T) {
	svc := &mockScanService{}
	h := NewServer(":0", svc).Router()

	for _, body := range []string{`{`, `{"attendee":"a"}`, `{"attendee_id":"a","location_id":"b","scanned_at":"yesterday"}`} {
		rec := serve(t, h, http.MethodPost, "/scans", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}
	if len(svc.attempts) != 0 {
		t.Fatal("expected no attempt to reach the service")
	}
}

func TestSync_ReturnsReport(t *testing.T) {
	svc := &mockScanService{report: offline.SyncReport{Attempted: 3, Synced: 2, Failed: 1}}
	rec := serve(t, NewServer(":0", svc).Router(), http.MethodPost, "/scans/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got offline.SyncReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got != svc.report {
		t.Fatalf("unexpected report %+v", got)
	}
}

func TestSync_ListFailure(t *testing.T) {
	svc := &mockScanService{syncErr: errors.New("database is locked")}
	rec := serve(t, NewServer(":0", svc).Router(), http.MethodPost, "/scans/sync", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestPendingCount(t *testing.T) {
	rec := serve(t, NewServer(":0", &mockScanService{pending: 4}).Router(), http.MethodGet, "/scans/pending", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"count":4}` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
