package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/foxseedlab/boothscan/internal/offline"
	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/foxseedlab/boothscan/internal/scan"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

// ScanService is what the API needs from the offline coordinator.
type ScanService interface {
	Submit(ctx context.Context, attempt scan.Attempt) scan.Result
	SyncPendingScans(ctx context.Context) (offline.SyncReport, error)
	PendingCount(ctx context.Context) (int, error)
	Online() bool
}

type Server struct {
	addr    string
	service ScanService
}

func NewServer(addr string, service ScanService) *Server {
	return &Server{addr: addr, service: service}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Post("/scans", s.handleSubmitScan)
	r.Post("/scans/sync", s.handleSync)
	r.Get("/scans/pending", s.handlePendingCount)

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Online: s.service.Online()})
}

func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	var req submitScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	attempt, err := req.attempt()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scanned_at")
		return
	}

	res := s.service.Submit(r.Context(), attempt)
	writeJSON(w, statusForFailure(res.Failure), toScanResultResponse(res))
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.SyncPendingScans(r.Context())
	if err != nil {
		slog.Error("manual sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sync_failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.PendingCount(r.Context())
	if err != nil {
		slog.Error("failed to count pending scans", "error", err)
		writeError(w, http.StatusInternalServerError, "queue_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, pendingCountResponse{Count: n})
}

func statusForFailure(f scan.Failure) int {
	switch f {
	case scan.FailureNone:
		return http.StatusOK
	case scan.FailureInvalidInput:
		return http.StatusBadRequest
	case scan.FailureNotFound:
		return http.StatusNotFound
	case scan.FailureDuplicate:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Online bool   `json:"online"`
}

type pendingCountResponse struct {
	Count int `json:"count"`
}

type submitScanRequest struct {
	EventID    string `json:"event_id"`
	AttendeeID string `json:"attendee_id"`
	LocationID string `json:"location_id"`
	SessionID  string `json:"session_id"`
	DeviceID   string `json:"device_id"`
	ScannedAt  string `json:"scanned_at"`
}

func (req submitScanRequest) attempt() (scan.Attempt, error) {
	a := scan.Attempt{
		EventID:    req.EventID,
		AttendeeID: req.AttendeeID,
		LocationID: req.LocationID,
		SessionID:  req.SessionID,
		DeviceID:   req.DeviceID,
	}
	if ts := strings.TrimSpace(req.ScannedAt); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return scan.Attempt{}, err
		}
		a.ScannedAt = parsed
	}
	return a, nil
}

type scanResultResponse struct {
	Success             bool             `json:"success"`
	Status              string           `json:"status"`
	Message             string           `json:"message"`
	Scan                *scanRecordJSON  `json:"scan,omitempty"`
	WasOffline          bool             `json:"was_offline"`
	AttendeeAutoCreated bool             `json:"attendee_auto_created"`
	Failure             string           `json:"failure,omitempty"`
	Details             *scanDetailsJSON `json:"details,omitempty"`
}

type scanRecordJSON struct {
	ID                 string    `json:"id"`
	EventID            string    `json:"event_id"`
	AttendeeID         string    `json:"attendee_id"`
	AttendeeName       string    `json:"attendee_name"`
	LocationID         *string   `json:"location_id,omitempty"`
	LocationName       string    `json:"location_name,omitempty"`
	SessionID          *string   `json:"session_id,omitempty"`
	ScannedAt          time.Time `json:"scanned_at"`
	Notes              string    `json:"notes,omitempty"`
	DeviceID           string    `json:"device_id,omitempty"`
	ScanType           string    `json:"scan_type"`
	ScanStatus         string    `json:"scan_status"`
	ExpectedLocationID *string   `json:"expected_location_id,omitempty"`
}

type scanDetailsJSON struct {
	IsRegistered         bool   `json:"is_registered"`
	ExpectedLocationID   string `json:"expected_location_id,omitempty"`
	ExpectedLocationName string `json:"expected_location_name,omitempty"`
	AttendeePhoto        string `json:"attendee_photo,omitempty"`
	SessionName          string `json:"session_name,omitempty"`
	ConflictSessionName  string `json:"conflict_session_name,omitempty"`
}

func toScanResultResponse(res scan.Result) scanResultResponse {
	out := scanResultResponse{
		Success:             res.Success,
		Status:              string(res.Status),
		Message:             res.Message,
		WasOffline:          res.WasOffline,
		AttendeeAutoCreated: res.AttendeeAutoCreated,
		Failure:             string(res.Failure),
	}
	if res.Scan != nil {
		out.Scan = toScanRecordJSON(res.Scan)
	}
	if d := res.Details; d != nil {
		out.Details = &scanDetailsJSON{
			IsRegistered:         d.IsRegistered,
			ExpectedLocationID:   d.ExpectedLocationID,
			ExpectedLocationName: d.ExpectedLocationName,
			AttendeePhoto:        d.AttendeePhoto,
			SessionName:          d.SessionName,
			ConflictSessionName:  d.ConflictSessionName,
		}
	}
	return out
}

func toScanRecordJSON(r *repository.ScanRecord) *scanRecordJSON {
	return &scanRecordJSON{
		ID:                 r.ID,
		EventID:            r.EventID,
		AttendeeID:         r.AttendeeID,
		AttendeeName:       r.AttendeeName,
		LocationID:         r.LocationID,
		LocationName:       r.LocationName,
		SessionID:          r.SessionID,
		ScannedAt:          r.ScannedAt,
		Notes:              r.Notes,
		DeviceID:           r.DeviceID,
		ScanType:           string(r.ScanType),
		ScanStatus:         string(r.ScanStatus),
		ExpectedLocationID: r.ExpectedLocationID,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}
