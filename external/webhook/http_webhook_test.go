package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/boothscan/internal/alert"
)

func TestSendFlaggedScan_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendFlaggedScan(context.Background(), alert.FlaggedScan{ScanID: "scan-1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendFlaggedScan_Success(t *testing.T) {
	var got alert.FlaggedScan
	var headers http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	scannedAt := time.Date(2026, 5, 1, 9, 31, 0, 0, time.UTC)
	err := sender.SendFlaggedScan(context.Background(), alert.FlaggedScan{
		SchemaVersion:        alert.FlaggedScanSchemaVersion,
		ScanID:               "scan-1",
		AttendeeName:         "Ada",
		Status:               "WRONG_BOOTH",
		ExpectedLocationName: "Booth-1",
		ScannedAt:            scannedAt,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.ScanID != "scan-1" || got.ExpectedLocationName != "Booth-1" || !got.ScannedAt.Equal(scannedAt) {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if ct := headers.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if key := headers.Get("Idempotency-Key"); key != "scan-1" {
		t.Fatalf("expected idempotency key scan-1, got %q", key)
	}
	if ev := headers.Get("X-Boothscan-Event"); ev != "flagged_scan" {
		t.Fatalf("unexpected event header: %q", ev)
	}
	if v := headers.Get("X-Boothscan-Schema-Version"); v != alert.FlaggedScanSchemaVersion {
		t.Fatalf("unexpected schema version header: %q", v)
	}
}

func TestSendFlaggedScan_RetryUsesSameIdempotencyKey(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	flagged := alert.FlaggedScan{ScanID: "scan-7", Status: "WRONG_BOOTH"}
	for i := 0; i < 2; i++ {
		if err := sender.SendFlaggedScan(context.Background(), flagged); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	if len(keys) != 2 || keys[0] != "scan-7" || keys[1] != keys[0] {
		t.Fatalf("expected both deliveries keyed on scan-7, got %v", keys)
	}
}

func TestSendFlaggedScan_MissingScanID(t *testing.T) {
	sender := NewHTTPSender("http://127.0.0.1:1")
	if err := sender.SendFlaggedScan(context.Background(), alert.FlaggedScan{}); err == nil {
		t.Fatal("expected error for flagged scan without id")
	}
}

func TestSendFlaggedScan_Non2xxIncludesResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("unknown booth\n"))
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendFlaggedScan(context.Background(), alert.FlaggedScan{ScanID: "scan-1"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "unknown booth") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}
