package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCompanies() []Company {
	return []Company{
		{Ticker: "APEX0", CompanyName: "ApexTech", Sector: "Information Technology", Industry: "Consumer Electronics", ExposureLevel: "High", ImportsIntoUS: true, InvestmentUSD: 85e6, RevenueUSD: 385e9, COGSUSD: 200e9, AffectedCOGSPct: 0.4, FiscalYear: 2024, Confidence: 0.92},
		{Ticker: "QTRX0", CompanyName: "Quantrix Semiconductors", Sector: "Information Technology", Industry: "Semiconductors", ExposureLevel: "High", ImportsIntoUS: true, InvestmentUSD: 60e6, RevenueUSD: 100e9, COGSUSD: 50e9, AffectedCOGSPct: 0.3, FiscalYear: 2024, Confidence: 0.88},
		{Ticker: "VRDN0", CompanyName: "Veridian Software", Sector: "Information Technology", Industry: "Application Software", ExposureLevel: "Low", InvestmentUSD: 40e6, RevenueUSD: 40e9, COGSUSD: 10e9, AffectedCOGSPct: 0.05, FiscalYear: 2024, Confidence: 0.7},
		{Ticker: "NWRT0", CompanyName: "Northwind Retail", Sector: "Consumer Discretionary", Industry: "Broadline Retail", ExposureLevel: "High", ImportsIntoUS: true, InvestmentUSD: 78e6, RevenueUSD: 150e9, COGSUSD: 100e9, AffectedCOGSPct: 0.2, FiscalYear: 2024, Confidence: 0.89},
		{Ticker: "STGB0", CompanyName: "Stonegate Bancorp", Sector: "Financials", Industry: "Regional Banks", ExposureLevel: "None", InvestmentUSD: 50e6, RevenueUSD: 30e9, FiscalYear: 2024, Confidence: 0.56},
	}
}

// TestSearchCriteria_Matches validates each predicate in isolation
// against the first sample company
func TestSearchCriteria_Matches(t *testing.T) {
	apex := sampleCompanies()[0]

	tests := []struct {
		name     string
		criteria SearchCriteria
		want     bool
	}{
		{"zero_criteria_matches_all", SearchCriteria{}, true},
		{"sector_case_insensitive", SearchCriteria{Sector: "information technology"}, true},
		{"sector_mismatch", SearchCriteria{Sector: "Financials"}, false},
		{"sector_substring_not_enough", SearchCriteria{Sector: "Information"}, false},
		{"industry_case_insensitive", SearchCriteria{Industry: "consumer electronics"}, true},
		{"exposure_level_case_insensitive", SearchCriteria{ExposureLevel: "high"}, true},
		{"imports_yes_keeps_importers", SearchCriteria{ImportsFilter: "yes"}, true},
		{"imports_yes_uppercase", SearchCriteria{ImportsFilter: "YES"}, true},
		{"imports_no_drops_importers", SearchCriteria{ImportsFilter: "no"}, false},
		{"imports_other_value_ignored", SearchCriteria{ImportsFilter: "maybe"}, true},
		{"min_revenue_inclusive", SearchCriteria{MinRevenue: 385e9}, true},
		{"min_revenue_above", SearchCriteria{MinRevenue: 385e9 + 1}, false},
		{"max_revenue_inclusive", SearchCriteria{MaxRevenue: 385e9}, true},
		{"max_revenue_below", SearchCriteria{MaxRevenue: 100e9}, false},
		{"min_affected_pct_inclusive", SearchCriteria{MinAffectedCOGSPct: 0.4}, true},
		{"min_affected_pct_above", SearchCriteria{MinAffectedCOGSPct: 0.41}, false},
		{"name_substring_case_insensitive", SearchCriteria{CompanyName: "apex"}, true},
		{"name_substring_miss", SearchCriteria{CompanyName: "northwind"}, false},
		{"ticker_exact_case_insensitive", SearchCriteria{Ticker: "apex0"}, true},
		{"ticker_prefix_not_enough", SearchCriteria{Ticker: "APEX"}, false},
		{"conjunction_all_must_hold", SearchCriteria{Sector: "Information Technology", ImportsFilter: "no"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(apex))
		})
	}
}

func TestFilter_KeepsDatasetOrder(t *testing.T) {
	got := Filter(sampleCompanies(), SearchCriteria{Sector: "Information Technology"})
	require.Len(t, got, 3)
	assert.Equal(t, "APEX0", got[0].Ticker)
	assert.Equal(t, "QTRX0", got[1].Ticker)
	assert.Equal(t, "VRDN0", got[2].Ticker)
}

// TestFilter_NoCriteriaReturnsDetachedCopy validates that callers can
// reorder the result without disturbing the input slice
func TestFilter_NoCriteriaReturnsDetachedCopy(t *testing.T) {
	records := sampleCompanies()
	got := Filter(records, SearchCriteria{})
	require.Equal(t, records, got)

	got[0].Ticker = "MUTATED"
	assert.Equal(t, "APEX0", records[0].Ticker, "filter result must not alias the input")
}

func TestFilter_ZeroBoundsAreUnset(t *testing.T) {
	records := sampleCompanies()
	got := Filter(records, SearchCriteria{MinRevenue: 0, MaxRevenue: 0, MinAffectedCOGSPct: 0})
	assert.Len(t, got, len(records))
}

func TestFilter_ImportsTernary(t *testing.T) {
	records := sampleCompanies()
	assert.Len(t, Filter(records, SearchCriteria{ImportsFilter: "yes"}), 3)
	assert.Len(t, Filter(records, SearchCriteria{ImportsFilter: "no"}), 2)
	assert.Len(t, Filter(records, SearchCriteria{ImportsFilter: "all"}), 5)
}

func TestFilter_NoMatches(t *testing.T) {
	assert.Empty(t, Filter(sampleCompanies(), SearchCriteria{Sector: "Utilities"}))
}

func TestFilter_RevenueRange(t *testing.T) {
	got := Filter(sampleCompanies(), SearchCriteria{MinRevenue: 50e9, MaxRevenue: 200e9})
	require.Len(t, got, 2)
	assert.Equal(t, "QTRX0", got[0].Ticker)
	assert.Equal(t, "NWRT0", got[1].Ticker)
}
