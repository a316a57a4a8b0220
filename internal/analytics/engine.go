package analytics

import (
	"math"
	"sort"
	"time"

	"spendwatch/internal/core"
)

// EvolutionPoint is one calendar day of the per-provider spend series.
// The aws/vercel/gcp fields are the displayed subtotals; OTHER spend is
// invisible in the series but still counts toward Total.
type EvolutionPoint struct {
	Date   string `json:"date"`  // YYYY-MM-DD
	Label  string `json:"label"` // DD/MM
	AWS    int64  `json:"aws"`
	Vercel int64  `json:"vercel"`
	GCP    int64  `json:"gcp"`
	Total  int64  `json:"total"`
}

// ServiceSpend is one service's total within a provider breakdown.
type ServiceSpend struct {
	Name  string `json:"name"`
	Cents int64  `json:"cents"`
}

// ProviderSpend is one provider's slice of the breakdown, services sorted
// by amount descending.
type ProviderSpend struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Total    int64          `json:"total"`
	Services []ServiceSpend `json:"services"`
}

// CategorySpend is one non-zero category in canonical order.
type CategorySpend struct {
	Label string `json:"label"`
	Cents int64  `json:"cents"`
}

// Report is the full dashboard payload for one organization, window, and
// provider filter. All monetary fields are integer minor units.
type Report struct {
	TotalCents        int64            `json:"totalCents"`
	TrendPercent      *float64         `json:"trendPercent"`
	ForecastCents     *int64           `json:"forecastCents"`
	DailyBurnCents    int64            `json:"dailyBurnCents"`
	Anomalies         int              `json:"anomalies"`
	Evolution         []EvolutionPoint `json:"evolution"`
	ProviderBreakdown []ProviderSpend  `json:"providerBreakdown"`
	Categories        []CategorySpend  `json:"categories"`
}

// Compute turns ledger rows for the current window plus the previous-window
// aggregate into the dashboard report. Rows must be pre-scoped to one
// organization, the window, and an optional provider filter by the caller;
// the transform itself is pure and has no failure modes over typed inputs.
func Compute(rows []core.SpendRecord, previousSumCents int64, window core.DateWindow, key core.RangeKey, now time.Time) Report {
	var total int64
	for _, r := range rows {
		total += r.AmountCents
	}

	rep := Report{TotalCents: total}

	// Trend vs the equal-length preceding window. Growth from a zero
	// baseline is reported as a capped +100%, not infinity; two zero
	// periods give no signal at all.
	switch {
	case previousSumCents > 0:
		t := (float64(total)/float64(previousSumCents) - 1) * 100
		rep.TrendPercent = &t
	case total > 0:
		t := 100.0
		rep.TrendPercent = &t
	}

	// Linear month-end forecast, only meaningful for MTD. daysElapsed is
	// at least 1 on the first of the month, so the division is safe.
	if key == core.RangeMTD {
		daysElapsed := core.StartOfDay(now).Day()
		f := int64(math.Round(float64(total) / float64(daysElapsed) * float64(core.DaysInMonth(now))))
		rep.ForecastCents = &f
	}

	// Trailing 7 days ending today, a fixed lookback independent of the
	// requested range. The same buckets serve as the anomaly baseline,
	// tested against today and yesterday.
	burn := burnBuckets(rows, now)
	var burnSum int64
	for _, v := range burn {
		burnSum += v
	}
	rep.DailyBurnCents = int64(math.Round(float64(burnSum) / 7))

	if IsAnomalous(burn[6], burn) {
		rep.Anomalies++
	}
	if IsAnomalous(burn[5], burn) {
		rep.Anomalies++
	}

	rep.Evolution = evolution(rows, window)
	rep.ProviderBreakdown = providerBreakdown(rows)
	rep.Categories = categoryBreakdown(rows)

	return rep
}

// burnBuckets sums rows per day over the 7 days ending today, oldest first.
// Days with no rows stay zero.
func burnBuckets(rows []core.SpendRecord, now time.Time) []int64 {
	today := core.StartOfDay(now)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		index[core.DayKey(core.AddDays(today, i-6))] = i
	}

	buckets := make([]int64, 7)
	for _, r := range rows {
		if i, ok := index[core.DayKey(r.Date)]; ok {
			buckets[i] += r.AmountCents
		}
	}
	return buckets
}

func evolution(rows []core.SpendRecord, window core.DateWindow) []EvolutionPoint {
	type dayBuckets struct {
		aws, vercel, gcp, other int64
	}
	byDay := make(map[string]*dayBuckets)
	for _, r := range rows {
		k := core.DayKey(r.Date)
		b := byDay[k]
		if b == nil {
			b = &dayBuckets{}
			byDay[k] = b
		}
		switch r.Provider {
		case core.ProviderAWS:
			b.aws += r.AmountCents
		case core.ProviderVercel:
			b.vercel += r.AmountCents
		case core.ProviderGCP:
			b.gcp += r.AmountCents
		default:
			b.other += r.AmountCents
		}
	}

	points := make([]EvolutionPoint, 0, window.Days())
	for d := window.Start; !d.After(window.End); d = core.AddDays(d, 1) {
		k := core.DayKey(d)
		p := EvolutionPoint{Date: k, Label: d.Format("02/01")}
		if b := byDay[k]; b != nil {
			p.AWS = b.aws
			p.Vercel = b.vercel
			p.GCP = b.gcp
			p.Total = b.aws + b.vercel + b.gcp + b.other
		}
		points = append(points, p)
	}
	return points
}

func providerBreakdown(rows []core.SpendRecord) []ProviderSpend {
	byProvider := make(map[core.Provider]map[string]int64)
	for _, r := range rows {
		services := byProvider[r.Provider]
		if services == nil {
			services = make(map[string]int64)
			byProvider[r.Provider] = services
		}
		services[r.Service] += r.AmountCents
	}

	breakdown := make([]ProviderSpend, 0, len(byProvider))
	for provider, services := range byProvider {
		item := ProviderSpend{
			ID:       provider.ID(),
			Name:     provider.DisplayName(),
			Services: make([]ServiceSpend, 0, len(services)),
		}
		for name, cents := range services {
			item.Services = append(item.Services, ServiceSpend{Name: name, Cents: cents})
			item.Total += cents
		}
		sort.Slice(item.Services, func(i, j int) bool {
			if item.Services[i].Cents != item.Services[j].Cents {
				return item.Services[i].Cents > item.Services[j].Cents
			}
			return item.Services[i].Name < item.Services[j].Name
		})
		breakdown = append(breakdown, item)
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].ID < breakdown[j].ID
	})
	return breakdown
}

func categoryBreakdown(rows []core.SpendRecord) []CategorySpend {
	totals := make(map[Category]int64)
	for _, r := range rows {
		totals[Classify(r.Service)] += r.AmountCents
	}

	out := make([]CategorySpend, 0, len(totals))
	for _, c := range categoryOrder {
		if cents := totals[c]; cents > 0 {
			out = append(out, CategorySpend{Label: string(c), Cents: cents})
		}
	}
	return out
}
