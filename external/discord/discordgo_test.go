package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/boothscan/internal/alert"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestAlertChannel(t *testing.T, rt roundTripFunc) *AlertChannel {
	t.Helper()
	c, err := NewAlertChannel("test-token", "alerts-1")
	if err != nil {
		t.Fatalf("failed to create alert channel: %v", err)
	}
	c.session.Client = &http.Client{Transport: rt}
	c.session.MaxRestRetries = 0
	return c
}

func TestSendFlaggedScan_PostsToConfiguredChannel(t *testing.T) {
	var gotContent string
	c := newTestAlertChannel(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", req.Method)
		}
		if !strings.HasSuffix(req.URL.Path, "/channels/alerts-1/messages") {
			t.Errorf("unexpected request path: %s", req.URL.Path)
		}
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode message body: %v", err)
		}
		gotContent = body.Content
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(`{"id":"m1","channel_id":"alerts-1","content":"ok"}`)),
			Header:     make(http.Header),
		}, nil
	})

	err := c.SendFlaggedScan(context.Background(), alert.FlaggedScan{
		ScanID:               "scan-1",
		AttendeeName:         "Ada",
		Status:               "WRONG_BOOTH",
		LocationName:         "Booth-2",
		ExpectedLocationName: "Booth-1",
		ScannedAt:            time.Date(2026, 5, 1, 9, 31, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotContent, "Expected at: Booth-1") || !strings.Contains(gotContent, "Scanned at: Booth-2") {
		t.Fatalf("unexpected message content: %q", gotContent)
	}
}

func TestSendFlaggedScan_ReturnsRESTError(t *testing.T) {
	c := newTestAlertChannel(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Status:     "403 Forbidden",
			Body:       io.NopCloser(strings.NewReader(`{"message":"Missing Access","code":50001}`)),
			Header:     make(http.Header),
		}, nil
	})

	err := c.SendFlaggedScan(context.Background(), alert.FlaggedScan{ScanID: "scan-1"})
	if err == nil {
		t.Fatal("expected error for forbidden response")
	}
}

func TestFormatFlaggedScan_RegistrationRequired(t *testing.T) {
	got := formatFlaggedScan(alert.FlaggedScan{
		Status:               "WRONG_BOOTH",
		AttendeeName:         "Walk-in (abcdef12)",
		SessionName:          "Workshop",
		RegistrationRequired: true,
		ScannedAt:            time.Date(2026, 5, 1, 9, 31, 0, 0, time.UTC),
	})
	if !strings.Contains(got, "Registration is required") || !strings.Contains(got, "Session: Workshop") {
		t.Fatalf("unexpected message: %q", got)
	}
	if strings.Contains(got, "Expected at:") {
		t.Fatalf("did not expect expected-location line: %q", got)
	}
}
