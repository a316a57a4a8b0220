package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwatch/internal/analytics"
	"spendwatch/internal/core"
)

// handleDashboard serves GET /api/v1/dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	params, err := ParseDashboardParams(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	cacheKey := s.reportCacheKey(params.OrgID, params.Range, params.Filter, core.DayKey(core.StartOfDay(now)))

	if report, found := s.reportCache.Get(cacheKey); found {
		slog.DebugContext(r.Context(), "Report cache hit",
			"org_id", params.OrgID,
			"range", params.Range,
			"filter", params.Filter)
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.computeReport(r.Context(), params, now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard report failed",
			"org_id", params.OrgID,
			"range", params.Range,
			"filter", params.Filter,
			"error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to compute dashboard")
		return
	}

	s.reportCache.Set(cacheKey, report)
	writeJSON(w, http.StatusOK, report)
}

// computeReport loads the current and previous windows concurrently, then
// runs the analytics over the result. A timeout keeps slow reads from
// pinning the handler.
func (s *Server) computeReport(ctx context.Context, params DashboardParams, now time.Time) (analytics.Report, error) {
	window := core.ResolveWindow(params.Range, now)

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	var (
		rows    []core.SpendRecord
		prevSum int64
	)
	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error {
		var err error
		rows, err = s.source.FetchRows(gctx, params.OrgID, params.Filter, window.Start, window.End)
		return err
	})
	g.Go(func() error {
		var err error
		prevSum, err = s.source.FetchPreviousSum(gctx, params.OrgID, params.Filter, window.PrevStart, window.PrevEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.Report{}, err
	}

	return analytics.Compute(rows, prevSum, window, params.Range, now), nil
}

// createRecordRequest is the JSON body of POST /api/v1/records.
type createRecordRequest struct {
	OrgID       string `json:"orgId"`
	AccountID   string `json:"accountId"`
	Provider    string `json:"provider"`
	Service     string `json:"service"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
}

// handleCreateRecord serves POST /api/v1/records. It writes one spend
// record and drops the org's cached reports so the next read is fresh.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.OrgID == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, core.ErrEmptyOrg.Error())
		return
	}

	provider, err := core.ParseProvider(req.Provider)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}

	rec := core.SpendRecord{
		Date:        day,
		Provider:    provider,
		Service:     req.Service,
		AmountCents: req.AmountCents,
	}
	if err := rec.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.writer.UpsertRecord(r.Context(), req.OrgID, req.AccountID, rec); err != nil {
		slog.ErrorContext(r.Context(), "Record upsert failed",
			"org_id", req.OrgID,
			"provider", provider,
			"error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to store record")
		return
	}

	s.invalidateReports(req.OrgID)

	slog.InfoContext(r.Context(), "Spend record stored",
		"org_id", req.OrgID,
		"provider", provider,
		"service", rec.Service,
		"date", req.Date,
		"amount_cents", rec.AmountCents)

	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}
