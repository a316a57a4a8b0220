// Package services holds the application-level use cases that sit between
// the transports and the ledger.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwatch/internal/amqp"
	"spendwatch/internal/core"
	"spendwatch/internal/ledger"
)

// IngestProcessor turns queued billing messages into ledger rows.
type IngestProcessor struct {
	writer ledger.RecordWriter
}

func NewIngestProcessor(writer ledger.RecordWriter) *IngestProcessor {
	return &IngestProcessor{writer: writer}
}

// HandleRecordMessage processes a single spend record message. A returned
// error means the message should be requeued, so only transient failures
// may propagate; malformed payloads are rejected up front.
func (p *IngestProcessor) HandleRecordMessage(ctx context.Context, msg *amqp.SpendRecordMessage) error {
	provider, err := core.ParseProvider(msg.Provider)
	if err != nil {
		slog.WarnContext(ctx, "Dropping message with unknown provider",
			"org_id", msg.OrgID,
			"provider", msg.Provider)
		return nil
	}

	day, err := time.ParseInLocation("2006-01-02", msg.Date, time.UTC)
	if err != nil {
		slog.WarnContext(ctx, "Dropping message with malformed date",
			"org_id", msg.OrgID,
			"date", msg.Date)
		return nil
	}

	rec := core.SpendRecord{
		Date:        day,
		Provider:    provider,
		Service:     msg.Service,
		AmountCents: msg.AmountCents,
	}
	if err := rec.Validate(); err != nil {
		slog.WarnContext(ctx, "Dropping invalid spend record",
			"org_id", msg.OrgID,
			"error", err)
		return nil
	}
	if msg.OrgID == "" {
		slog.WarnContext(ctx, "Dropping spend record without organization")
		return nil
	}

	if err := p.writer.UpsertRecord(ctx, msg.OrgID, msg.AccountID, rec); err != nil {
		return fmt.Errorf("upsert spend record: %w", err)
	}

	slog.InfoContext(ctx, "Ingested spend record",
		"org_id", msg.OrgID,
		"provider", provider,
		"service", rec.Service,
		"date", msg.Date,
		"amount_cents", rec.AmountCents)

	return nil
}
