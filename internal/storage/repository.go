// Package storage holds the SQLite-backed spend ledger.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendwatch/internal/core"

	_ "modernc.org/sqlite"
)

const dayFormat = "2006-01-02"

// SQLiteRepository implements the ledger ports over a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertRecord implements ledger.RecordWriter. Replaying a record for the
// same (org, account, provider, service, day) overwrites the amount, so
// ingestion stays idempotent under message redelivery.
func (r *SQLiteRepository) UpsertRecord(ctx context.Context, orgID, accountID string, rec core.SpendRecord) error {
	if orgID == "" {
		return core.ErrEmptyOrg
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validate record: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO spend_records (org_id, account_id, provider, service_name, spend_date, amount_cents)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (org_id, account_id, provider, service_name, spend_date)
		DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = CURRENT_TIMESTAMP`,
		orgID, accountID, string(rec.Provider), rec.Service, core.DayKey(rec.Date), rec.AmountCents)
	if err != nil {
		return fmt.Errorf("upsert spend record: %w", err)
	}

	slog.DebugContext(ctx, "Spend record upserted",
		"org_id", orgID,
		"provider", rec.Provider,
		"service", rec.Service,
		"date", core.DayKey(rec.Date),
		"amount_cents", rec.AmountCents)

	return nil
}

// FetchRows implements ledger.RowSource.
func (r *SQLiteRepository) FetchRows(ctx context.Context, orgID string, filter core.ProviderFilter, start, end time.Time) ([]core.SpendRecord, error) {
	query := `
		SELECT provider, service_name, spend_date, amount_cents
		FROM spend_records
		WHERE org_id = ? AND spend_date BETWEEN ? AND ?`
	args := []any{orgID, core.DayKey(start), core.DayKey(end)}
	if filter != core.FilterAll {
		query += ` AND provider = ?`
		args = append(args, string(filter))
	}
	query += ` ORDER BY spend_date, provider, service_name`

	dbRows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query spend records: %w", err)
	}
	defer dbRows.Close()

	var out []core.SpendRecord
	for dbRows.Next() {
		var (
			provider, service, date string
			cents                   int64
		)
		if err := dbRows.Scan(&provider, &service, &date, &cents); err != nil {
			return nil, fmt.Errorf("scan spend record: %w", err)
		}
		day, err := time.ParseInLocation(dayFormat, date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse spend date %q: %w", date, err)
		}
		out = append(out, core.SpendRecord{
			Date:        day,
			Provider:    core.Provider(provider),
			Service:     service,
			AmountCents: cents,
		})
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spend records: %w", err)
	}
	return out, nil
}

// FetchPreviousSum implements ledger.RowSource.
func (r *SQLiteRepository) FetchPreviousSum(ctx context.Context, orgID string, filter core.ProviderFilter, start, end time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM spend_records
		WHERE org_id = ? AND spend_date BETWEEN ? AND ?`
	args := []any{orgID, core.DayKey(start), core.DayKey(end)}
	if filter != core.FilterAll {
		query += ` AND provider = ?`
		args = append(args, string(filter))
	}

	var sum int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum spend records: %w", err)
	}
	return sum, nil
}

// ListOrgs implements ledger.OrgLister.
func (r *SQLiteRepository) ListOrgs(ctx context.Context) ([]string, error) {
	dbRows, err := r.db.QueryContext(ctx, `SELECT DISTINCT org_id FROM spend_records ORDER BY org_id`)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer dbRows.Close()

	var orgs []string
	for dbRows.Next() {
		var org string
		if err := dbRows.Scan(&org); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, nil
}
