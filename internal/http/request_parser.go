package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"spendwatch/internal/core"
)

var errMissingOrg = errors.New("org query parameter is required")

// DashboardParams holds the validated query parameters of a dashboard read.
type DashboardParams struct {
	OrgID  string
	Range  core.RangeKey
	Filter core.ProviderFilter
}

// ParseDashboardParams validates org, dateRange and providerFilter query
// parameters. Missing dateRange defaults to MTD, missing providerFilter
// to ALL; anything unrecognized is an error rather than a silent default.
func ParseDashboardParams(query url.Values) (DashboardParams, error) {
	params := DashboardParams{
		Range:  core.RangeMTD,
		Filter: core.FilterAll,
	}

	params.OrgID = strings.TrimSpace(query.Get("org"))
	if params.OrgID == "" {
		return DashboardParams{}, errMissingOrg
	}

	if v := strings.TrimSpace(query.Get("dateRange")); v != "" {
		key, err := core.ParseRangeKey(v)
		if err != nil {
			return DashboardParams{}, err
		}
		params.Range = key
	}

	if v := strings.TrimSpace(query.Get("providerFilter")); v != "" {
		filter, err := core.ParseProviderFilter(v)
		if err != nil {
			return DashboardParams{}, err
		}
		params.Filter = filter
	}

	return params, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
