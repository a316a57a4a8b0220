// Package analytics turns a flat ledger of daily spend records into the
// dashboard metrics: totals, trend, forecast, burn rate, anomalies, and
// breakdowns. Everything in here is a pure transform over its inputs.
package analytics

import "strings"

// Category is one of the fixed spend categories services are classified into.
type Category string

const (
	CategoryCompute       Category = "Compute"
	CategoryNetwork       Category = "Network"
	CategoryDatabase      Category = "Database"
	CategoryStorage       Category = "Storage"
	CategoryObservability Category = "Observability"
	CategoryAutomation    Category = "Automation"
	CategoryOther         Category = "Other"
)

// categoryOrder is the canonical display order for category breakdowns.
var categoryOrder = []Category{
	CategoryCompute,
	CategoryNetwork,
	CategoryDatabase,
	CategoryStorage,
	CategoryObservability,
	CategoryAutomation,
	CategoryOther,
}

type categoryRule struct {
	category Category
	patterns []string
}

// categoryRules is the fixed rule table. Rules are checked in order and the
// first matching pattern wins; patterns are lower-case substrings. Automation
// precedes Compute so "step functions" is not swallowed by "function".
var categoryRules = []categoryRule{
	{CategoryAutomation, []string{"step functions", "eventbridge", "cron", "scheduler", "workflow"}},
	{CategoryCompute, []string{"lambda", "ec2", "function", "fargate", "compute", "app engine", "container"}},
	{CategoryNetwork, []string{"cloudfront", "load balancer", "cdn", "bandwidth", "route 53", "vpc", "dns", "gateway"}},
	{CategoryDatabase, []string{"rds", "dynamo", "firestore", "aurora", "bigtable", "spanner", "database", "sql"}},
	{CategoryStorage, []string{"s3", "glacier", "bucket", "blob", "storage"}},
	{CategoryObservability, []string{"cloudwatch", "datadog", "logging", "monitor", "trace", "x-ray"}},
}

// Classify maps a free-text service name to a spend category. Matching is
// case-insensitive and total: names that match no rule fall back to Other.
func Classify(service string) Category {
	lower := strings.ToLower(service)
	for _, rule := range categoryRules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
