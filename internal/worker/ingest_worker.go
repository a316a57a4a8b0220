// Package worker runs the background jobs behind the dashboard: queue
// ingestion and the periodic anomaly scan.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwatch/internal/amqp"
	"spendwatch/internal/analytics"
	"spendwatch/internal/core"
	"spendwatch/internal/ledger"
	"spendwatch/internal/services"
)

// AlertPublisher emits anomaly alerts. Satisfied by the AMQP client.
type AlertPublisher interface {
	PublishAnomalyAlert(ctx context.Context, msg *amqp.AnomalyAlertMessage) error
}

// IngestWorker consumes billing messages into the ledger and periodically
// scans every organization for spend anomalies.
type IngestWorker struct {
	processor *services.IngestProcessor
	source    ledger.RowSource
	orgs      ledger.OrgLister
	alerts    AlertPublisher
}

func NewIngestWorker(processor *services.IngestProcessor, source ledger.RowSource, orgs ledger.OrgLister, alerts AlertPublisher) *IngestWorker {
	return &IngestWorker{
		processor: processor,
		source:    source,
		orgs:      orgs,
		alerts:    alerts,
	}
}

// HandleRecordMessage adapts the processor to the AMQP consume loop.
func (w *IngestWorker) HandleRecordMessage(ctx context.Context, msg *amqp.SpendRecordMessage) error {
	return w.processor.HandleRecordMessage(ctx, msg)
}

// RunAnomalyScan checks today's spend for every organization against its
// trailing seven days and publishes an alert for each anomaly found.
func (w *IngestWorker) RunAnomalyScan(ctx context.Context, now time.Time) error {
	orgs, err := w.orgs.ListOrgs(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}

	today := core.StartOfDay(now)
	start := core.AddDays(today, -6)

	scanned := 0
	alerted := 0
	for _, org := range orgs {
		anomalous, todayCents, meanCents, err := w.scanOrg(ctx, org, start, today)
		if err != nil {
			slog.ErrorContext(ctx, "Anomaly scan failed for organization",
				"org_id", org,
				"error", err)
			continue
		}
		scanned++
		if !anomalous {
			continue
		}

		alert := amqp.NewAnomalyAlertMessage(org, core.DayKey(today), todayCents, meanCents)
		if err := w.alerts.PublishAnomalyAlert(ctx, alert); err != nil {
			slog.ErrorContext(ctx, "Failed to publish anomaly alert",
				"org_id", org,
				"error", err)
			continue
		}
		alerted++
	}

	slog.InfoContext(ctx, "Anomaly scan completed",
		"organizations", scanned,
		"alerts", alerted)

	return nil
}

func (w *IngestWorker) scanOrg(ctx context.Context, org string, start, today time.Time) (bool, int64, int64, error) {
	rows, err := w.source.FetchRows(ctx, org, core.FilterAll, start, today)
	if err != nil {
		return false, 0, 0, fmt.Errorf("fetch trailing rows: %w", err)
	}

	buckets := make([]int64, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		index[core.DayKey(core.AddDays(start, i))] = i
	}
	for _, row := range rows {
		if i, ok := index[core.DayKey(row.Date)]; ok {
			buckets[i] += row.AmountCents
		}
	}

	todayCents := buckets[6]
	if !analytics.IsAnomalous(todayCents, buckets) {
		return false, 0, 0, nil
	}

	var sum int64
	for _, b := range buckets {
		sum += b
	}
	return true, todayCents, sum / 7, nil
}
