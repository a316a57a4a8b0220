// Package memory holds an in-memory ledger store. It is the default dev
// backend and the test double for the HTTP and worker layers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"spendwatch/internal/core"
)

type row struct {
	accountID string
	rec       core.SpendRecord
}

// Store keeps per-organization rows behind a mutex. It implements the
// ledger RowSource, RecordWriter, and OrgLister ports.
type Store struct {
	mu   sync.Mutex
	rows map[string][]row
}

func New() *Store {
	return &Store{rows: make(map[string][]row)}
}

// UpsertRecord validates the record and stores it, replacing any existing
// row with the same (account, provider, service, day) identity.
func (s *Store) UpsertRecord(_ context.Context, orgID, accountID string, rec core.SpendRecord) error {
	if orgID == "" {
		return core.ErrEmptyOrg
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.rows[orgID]
	for i, existing := range rows {
		if existing.accountID == accountID &&
			existing.rec.Provider == rec.Provider &&
			existing.rec.Service == rec.Service &&
			existing.rec.Date.Equal(rec.Date) {
			rows[i].rec.AmountCents = rec.AmountCents
			return nil
		}
	}
	s.rows[orgID] = append(rows, row{accountID: accountID, rec: rec})
	return nil
}

// FetchRows returns copies of the organization's records inside the
// inclusive day window, optionally narrowed to one provider.
func (s *Store) FetchRows(_ context.Context, orgID string, filter core.ProviderFilter, start, end time.Time) ([]core.SpendRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.SpendRecord
	for _, r := range s.rows[orgID] {
		if !inWindow(r.rec.Date, start, end) || !filter.Matches(r.rec.Provider) {
			continue
		}
		out = append(out, r.rec)
	}
	return out, nil
}

// FetchPreviousSum returns the total spend inside the window under the
// same scoping rules as FetchRows.
func (s *Store) FetchPreviousSum(_ context.Context, orgID string, filter core.ProviderFilter, start, end time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, r := range s.rows[orgID] {
		if inWindow(r.rec.Date, start, end) && filter.Matches(r.rec.Provider) {
			sum += r.rec.AmountCents
		}
	}
	return sum, nil
}

// ListOrgs returns the organizations with at least one row, sorted.
func (s *Store) ListOrgs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orgs := make([]string, 0, len(s.rows))
	for org, rows := range s.rows {
		if len(rows) > 0 {
			orgs = append(orgs, org)
		}
	}
	sort.Strings(orgs)
	return orgs, nil
}

func inWindow(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}
