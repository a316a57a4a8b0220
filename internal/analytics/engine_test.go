package analytics

import (
	"reflect"
	"testing"
	"time"

	"spendwatch/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, p core.Provider, service string, cents int64) core.SpendRecord {
	return core.SpendRecord{Date: date, Provider: p, Service: service, AmountCents: cents}
}

func TestComputeEmptyLedger(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.RangeMTD, now)

	rep := Compute(nil, 0, window, core.RangeMTD, now)

	if rep.TotalCents != 0 {
		t.Fatalf("total: got %d", rep.TotalCents)
	}
	if rep.TrendPercent != nil {
		t.Fatalf("trend: expected null, got %v", *rep.TrendPercent)
	}
	if rep.ForecastCents == nil || *rep.ForecastCents != 0 {
		t.Fatalf("forecast: expected 0 for empty MTD, got %v", rep.ForecastCents)
	}
	if rep.DailyBurnCents != 0 || rep.Anomalies != 0 {
		t.Fatalf("burn/anomalies: got %d/%d", rep.DailyBurnCents, rep.Anomalies)
	}
	if len(rep.Evolution) != 15 {
		t.Fatalf("evolution: got %d points, want 15", len(rep.Evolution))
	}
	for _, p := range rep.Evolution {
		if p.Total != 0 || p.AWS != 0 || p.Vercel != 0 || p.GCP != 0 {
			t.Fatalf("evolution day %s not zero-filled: %+v", p.Date, p)
		}
	}
	if len(rep.ProviderBreakdown) != 0 || len(rep.Categories) != 0 {
		t.Fatalf("breakdowns should be empty: %+v %+v", rep.ProviderBreakdown, rep.Categories)
	}
}

func TestComputeTrend(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)
	rows := []core.SpendRecord{rec(day(2025, 3, 14), core.ProviderAWS, "EC2", 7500)}

	rep := Compute(rows, 5000, window, core.Range7D, now)
	if rep.TrendPercent == nil || *rep.TrendPercent != 50 {
		t.Fatalf("trend: got %v, want 50", rep.TrendPercent)
	}

	// Growth from a zero baseline is capped at +100%.
	rep = Compute(rows, 0, window, core.Range7D, now)
	if rep.TrendPercent == nil || *rep.TrendPercent != 100 {
		t.Fatalf("trend from zero baseline: got %v, want 100", rep.TrendPercent)
	}

	// A shrinking period reports a negative trend.
	rep = Compute(rows, 15000, window, core.Range7D, now)
	if rep.TrendPercent == nil || *rep.TrendPercent != -50 {
		t.Fatalf("trend: got %v, want -50", rep.TrendPercent)
	}
}

func TestComputeForecastFlatPacing(t *testing.T) {
	// Ten elapsed days at a flat 1000 cents/day project linearly to the
	// full month.
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.RangeMTD, now)
	var rows []core.SpendRecord
	for d := 1; d <= 10; d++ {
		rows = append(rows, rec(day(2025, 3, d), core.ProviderVercel, "Bandwidth", 1000))
	}

	rep := Compute(rows, 0, window, core.RangeMTD, now)
	if rep.ForecastCents == nil || *rep.ForecastCents != 31000 {
		t.Fatalf("forecast: got %v, want 31000", rep.ForecastCents)
	}
	if *rep.ForecastCents < rep.TotalCents {
		t.Fatalf("forecast %d below total %d", *rep.ForecastCents, rep.TotalCents)
	}
}

func TestComputeForecastOnlyForMTD(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	for _, key := range []core.RangeKey{core.Range7D, core.Range30D} {
		window := core.ResolveWindow(key, now)
		rep := Compute([]core.SpendRecord{rec(day(2025, 3, 14), core.ProviderAWS, "EC2", 100)}, 0, window, key, now)
		if rep.ForecastCents != nil {
			t.Fatalf("%s: forecast should be null, got %d", key, *rep.ForecastCents)
		}
	}
}

func TestComputeDailyBurn(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range30D, now)

	// 7 days ending today at 1000/day, plus an older row that must not
	// count toward the trailing-7-day burn.
	var rows []core.SpendRecord
	for d := 9; d <= 15; d++ {
		rows = append(rows, rec(day(2025, 3, d), core.ProviderGCP, "Cloud Run", 1000))
	}
	rows = append(rows, rec(day(2025, 3, 1), core.ProviderGCP, "Cloud Run", 99999))

	rep := Compute(rows, 0, window, core.Range30D, now)
	if rep.DailyBurnCents != 1000 {
		t.Fatalf("burn: got %d, want 1000", rep.DailyBurnCents)
	}
}

func TestComputeAnomalyToday(t *testing.T) {
	// Six quiet days then a 10x spike today: today is flagged, yesterday
	// is not, so the count is exactly 1.
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)

	var rows []core.SpendRecord
	for d := 9; d <= 14; d++ {
		rows = append(rows, rec(day(2025, 3, d), core.ProviderAWS, "EC2", 1000))
	}
	rows = append(rows, rec(day(2025, 3, 15), core.ProviderAWS, "EC2", 10000))

	rep := Compute(rows, 0, window, core.Range7D, now)
	if rep.Anomalies != 1 {
		t.Fatalf("anomalies: got %d, want 1", rep.Anomalies)
	}
}

func TestComputeAnomalyYesterday(t *testing.T) {
	// The same 10x spike one day earlier: yesterday is flagged against the
	// trailing window, today is quiet, and the count is still 1.
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)

	var rows []core.SpendRecord
	for d := 9; d <= 13; d++ {
		rows = append(rows, rec(day(2025, 3, d), core.ProviderAWS, "EC2", 1000))
	}
	rows = append(rows, rec(day(2025, 3, 14), core.ProviderAWS, "EC2", 10000))
	rows = append(rows, rec(day(2025, 3, 15), core.ProviderAWS, "EC2", 1000))

	rep := Compute(rows, 0, window, core.Range7D, now)
	if rep.Anomalies != 1 {
		t.Fatalf("anomalies: got %d, want 1", rep.Anomalies)
	}
}

func TestComputeAnomalyFlatHistory(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)
	var rows []core.SpendRecord
	for d := 9; d <= 15; d++ {
		rows = append(rows, rec(day(2025, 3, d), core.ProviderAWS, "EC2", 1000))
	}
	rep := Compute(rows, 0, window, core.Range7D, now)
	if rep.Anomalies != 0 {
		t.Fatalf("flat history must not flag, got %d", rep.Anomalies)
	}
}

func TestComputeEvolutionIncludesOtherInTotal(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)
	rows := []core.SpendRecord{
		rec(day(2025, 3, 14), core.ProviderAWS, "EC2", 100),
		rec(day(2025, 3, 14), core.ProviderOther, "Mystery", 50),
	}

	rep := Compute(rows, 0, window, core.Range7D, now)
	var pt *EvolutionPoint
	for i := range rep.Evolution {
		if rep.Evolution[i].Date == "2025-03-14" {
			pt = &rep.Evolution[i]
		}
	}
	if pt == nil {
		t.Fatal("missing evolution point for 2025-03-14")
	}
	// OTHER is hidden from the per-provider fields but counted in the total.
	if pt.AWS != 100 || pt.Vercel != 0 || pt.GCP != 0 {
		t.Fatalf("provider fields: %+v", pt)
	}
	if pt.Total != 150 {
		t.Fatalf("total: got %d, want 150", pt.Total)
	}
	if pt.Label != "14/03" {
		t.Fatalf("label: got %q", pt.Label)
	}
}

func TestComputeProviderBreakdown(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)
	rows := []core.SpendRecord{
		rec(day(2025, 3, 13), core.ProviderAWS, "EC2", 300),
		rec(day(2025, 3, 14), core.ProviderAWS, "EC2", 200),
		rec(day(2025, 3, 14), core.ProviderAWS, "S3", 100),
		rec(day(2025, 3, 14), core.ProviderVercel, "Bandwidth", 900),
	}

	rep := Compute(rows, 0, window, core.Range7D, now)
	if len(rep.ProviderBreakdown) != 2 {
		t.Fatalf("got %d providers", len(rep.ProviderBreakdown))
	}
	// Providers sorted by total descending.
	if rep.ProviderBreakdown[0].ID != "vercel" || rep.ProviderBreakdown[0].Name != "Vercel" || rep.ProviderBreakdown[0].Total != 900 {
		t.Fatalf("first provider: %+v", rep.ProviderBreakdown[0])
	}
	aws := rep.ProviderBreakdown[1]
	if aws.ID != "aws" || aws.Total != 600 {
		t.Fatalf("aws: %+v", aws)
	}
	// Services sorted by amount descending, with same-day rows summed.
	if len(aws.Services) != 2 || aws.Services[0].Name != "EC2" || aws.Services[0].Cents != 500 || aws.Services[1].Cents != 100 {
		t.Fatalf("aws services: %+v", aws.Services)
	}
}

func TestComputeCategories(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)
	rows := []core.SpendRecord{
		rec(day(2025, 3, 14), core.ProviderAWS, "S3", 100),
		rec(day(2025, 3, 14), core.ProviderAWS, "Lambda", 200),
		rec(day(2025, 3, 14), core.ProviderOther, "Mystery", 50),
	}

	rep := Compute(rows, 0, window, core.Range7D, now)
	want := []CategorySpend{
		{Label: "Compute", Cents: 200},
		{Label: "Storage", Cents: 100},
		{Label: "Other", Cents: 50},
	}
	if !reflect.DeepEqual(rep.Categories, want) {
		t.Fatalf("categories: got %+v, want %+v", rep.Categories, want)
	}
}

// Row order never changes any output: summation is commutative and every
// collection is sorted deterministically.
func TestComputeOrderInvariance(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)
	rows := []core.SpendRecord{
		rec(day(2025, 3, 12), core.ProviderAWS, "EC2", 300),
		rec(day(2025, 3, 13), core.ProviderVercel, "Bandwidth", 250),
		rec(day(2025, 3, 14), core.ProviderGCP, "Cloud SQL", 700),
		rec(day(2025, 3, 14), core.ProviderOther, "Mystery", 10),
		rec(day(2025, 3, 15), core.ProviderAWS, "S3", 40),
	}
	reversed := make([]core.SpendRecord, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	a := Compute(rows, 1234, window, core.Range7D, now)
	b := Compute(reversed, 1234, window, core.Range7D, now)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("reports differ under row reordering:\n%+v\n%+v", a, b)
	}
}

// Duplicate rows for the same (provider, service, day) are summed, not
// deduplicated: idempotent ingestion is the storage layer's concern.
func TestComputeSumsDuplicates(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	window := core.ResolveWindow(core.Range7D, now)
	rows := []core.SpendRecord{
		rec(day(2025, 3, 14), core.ProviderAWS, "EC2", 100),
		rec(day(2025, 3, 14), core.ProviderAWS, "EC2", 100),
	}
	rep := Compute(rows, 0, window, core.Range7D, now)
	if rep.TotalCents != 200 {
		t.Fatalf("total: got %d, want 200", rep.TotalCents)
	}
}
