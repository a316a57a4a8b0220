package core

import (
	"errors"
	"strings"
	"time"
)

// Provider identifies the cloud vendor a spend record belongs to.
type Provider string

const (
	ProviderVercel Provider = "VERCEL"
	ProviderAWS    Provider = "AWS"
	ProviderGCP    Provider = "GCP"
	ProviderOther  Provider = "OTHER"
)

// ProviderFilter widens Provider with the ALL wildcard used by the API
// boundary and the storage queries.
type ProviderFilter string

const FilterAll ProviderFilter = "ALL"

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrUnknownFilter   = errors.New("unknown provider filter")
	ErrInvalidDate     = errors.New("invalid record date")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrEmptyService    = errors.New("empty service name")
	ErrEmptyOrg        = errors.New("empty organization id")
)

// ParseProvider maps a case-insensitive provider name to the closed enum.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToUpper(strings.TrimSpace(s))); p {
	case ProviderVercel, ProviderAWS, ProviderGCP, ProviderOther:
		return p, nil
	default:
		return "", ErrUnknownProvider
	}
}

// ParseProviderFilter accepts ALL or any concrete provider except OTHER,
// matching the query surface of the dashboard API.
func ParseProviderFilter(s string) (ProviderFilter, error) {
	switch f := ProviderFilter(strings.ToUpper(strings.TrimSpace(s))); f {
	case FilterAll,
		ProviderFilter(ProviderVercel),
		ProviderFilter(ProviderAWS),
		ProviderFilter(ProviderGCP):
		return f, nil
	default:
		return "", ErrUnknownFilter
	}
}

// DisplayName returns the canonical UI name for the provider.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderVercel:
		return "Vercel"
	case ProviderAWS:
		return "AWS"
	case ProviderGCP:
		return "GCP"
	default:
		return "Other"
	}
}

// ID returns the lower-cased identifier used in API payloads.
func (p Provider) ID() string {
	return strings.ToLower(string(p))
}

// Matches reports whether a record provider passes the filter.
func (f ProviderFilter) Matches(p Provider) bool {
	return f == FilterAll || Provider(f) == p
}

// SpendRecord is one calendar day of spend for a single service. Records
// are pre-scoped to an organization by whoever supplies them; the analytics
// engine treats them as an unordered multiset and sums duplicates.
type SpendRecord struct {
	Date        time.Time // UTC midnight
	Provider    Provider
	Service     string
	AmountCents int64
}

// Validate enforces the storage-boundary invariants. The analytics engine
// assumes records have already passed here.
func (r SpendRecord) Validate() error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if !r.Date.Equal(StartOfDay(r.Date)) {
		return ErrInvalidDate
	}
	if _, err := ParseProvider(string(r.Provider)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Service) == "" {
		return ErrEmptyService
	}
	if r.AmountCents < 0 {
		return ErrNegativeAmount
	}
	return nil
}
