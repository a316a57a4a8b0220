package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseProvider(t *testing.T) {
	cases := []struct {
		in   string
		want Provider
		ok   bool
	}{
		{"AWS", ProviderAWS, true},
		{"vercel", ProviderVercel, true},
		{" gcp ", ProviderGCP, true},
		{"OTHER", ProviderOther, true},
		{"azure", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseProvider(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got %q, %v", i, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrUnknownProvider) {
			t.Fatalf("case %d: expected ErrUnknownProvider, got %v", i, err)
		}
	}
}

func TestParseProviderFilter(t *testing.T) {
	if f, err := ParseProviderFilter("all"); err != nil || f != FilterAll {
		t.Fatalf("got %q, %v", f, err)
	}
	if _, err := ParseProviderFilter("OTHER"); err == nil {
		t.Fatal("OTHER is not a valid filter")
	}
	if _, err := ParseProviderFilter("bogus"); err == nil {
		t.Fatal("expected error")
	}
}

func TestProviderNames(t *testing.T) {
	cases := []struct {
		p    Provider
		name string
		id   string
	}{
		{ProviderVercel, "Vercel", "vercel"},
		{ProviderAWS, "AWS", "aws"},
		{ProviderGCP, "GCP", "gcp"},
		{ProviderOther, "Other", "other"},
	}
	for _, tc := range cases {
		if tc.p.DisplayName() != tc.name || tc.p.ID() != tc.id {
			t.Fatalf("%s: got %q/%q", tc.p, tc.p.DisplayName(), tc.p.ID())
		}
	}
}

func TestFilterMatches(t *testing.T) {
	if !FilterAll.Matches(ProviderOther) {
		t.Fatal("ALL should match everything")
	}
	f := ProviderFilter(ProviderAWS)
	if !f.Matches(ProviderAWS) || f.Matches(ProviderGCP) {
		t.Fatal("AWS filter should match only AWS")
	}
}

func TestSpendRecordValidate(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	good := SpendRecord{Date: day, Provider: ProviderAWS, Service: "Lambda", AmountCents: 100}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Zero amounts are allowed.
	if err := (SpendRecord{Date: day, Provider: ProviderGCP, Service: "Cloud Run", AmountCents: 0}).Validate(); err != nil {
		t.Fatalf("zero amount should validate, got %v", err)
	}

	bads := []SpendRecord{
		{Provider: ProviderAWS, Service: "Lambda", AmountCents: 1},                                                            // zero date
		{Date: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), Provider: ProviderAWS, Service: "Lambda", AmountCents: 1},       // not day-aligned
		{Date: day, Provider: "AZURE", Service: "Lambda", AmountCents: 1},
		{Date: day, Provider: ProviderAWS, Service: "  ", AmountCents: 1},
		{Date: day, Provider: ProviderAWS, Service: "Lambda", AmountCents: -1},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
