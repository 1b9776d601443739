package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/foxseedlab/boothscan/internal/alert"
)

const (
	requestTimeout   = 10 * time.Second
	errorBodyLimit   = 512
	eventFlaggedScan = "flagged_scan"

	headerIdempotencyKey = "Idempotency-Key"
	headerEvent          = "X-Boothscan-Event"
	headerSchemaVersion  = "X-Boothscan-Schema-Version"
)

// HTTPSender posts flagged scans to an operator webhook. Each delivery is
// keyed on the scan id so receivers can drop retries of the same alert.
type HTTPSender struct {
	webhookURL string
	client     *http.Client
}

func NewHTTPSender(webhookURL string) alert.Sender {
	return &HTTPSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

func (s *HTTPSender) SendFlaggedScan(ctx context.Context, flagged alert.FlaggedScan) error {
	if s.webhookURL == "" {
		return nil
	}
	if flagged.ScanID == "" {
		return fmt.Errorf("flagged scan has no scan id")
	}

	body, err := json.Marshal(flagged)
	if err != nil {
		return fmt.Errorf("failed to encode flagged scan %s: %w", flagged.ScanID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerIdempotencyKey, flagged.ScanID)
	req.Header.Set(headerEvent, eventFlaggedScan)
	req.Header.Set(headerSchemaVersion, flagged.SchemaVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver flagged scan %s: %w", flagged.ScanID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("webhook rejected flagged scan %s with status %d: %s", flagged.ScanID, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
