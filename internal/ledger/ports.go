// Package ledger defines the ports between the analytics boundary and the
// stores that hold the spend ledger.
package ledger

import (
	"context"
	"time"

	"spendwatch/internal/core"
)

// Ports for outbound ledger adapters.
type (
	// RowSource supplies the two independent reads behind a dashboard
	// request: the raw rows of the current window and the aggregate sum of
	// the preceding window. The two calls are unrelated and may run
	// concurrently.
	RowSource interface {
		// FetchRows returns every record for the organization whose day
		// falls inside [start, end], optionally narrowed to one provider.
		FetchRows(ctx context.Context, orgID string, filter core.ProviderFilter, start, end time.Time) ([]core.SpendRecord, error)

		// FetchPreviousSum returns the total spend inside [start, end]
		// under the same scoping rules.
		FetchPreviousSum(ctx context.Context, orgID string, filter core.ProviderFilter, start, end time.Time) (int64, error)
	}

	// RecordWriter ingests daily spend rows. Writes are idempotent per
	// (organization, account, provider, service, day): replaying a message
	// overwrites the amount instead of duplicating the row.
	RecordWriter interface {
		UpsertRecord(ctx context.Context, orgID, accountID string, rec core.SpendRecord) error
	}

	// OrgLister enumerates organizations with ledger activity; the
	// periodic anomaly scan walks this list.
	OrgLister interface {
		ListOrgs(ctx context.Context) ([]string, error)
	}
)
