package portfolio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSectorBreakdown validates grouping, rollups, and the
// investment-descending sector order
func TestSectorBreakdown(t *testing.T) {
	aggs := SectorBreakdown(sampleCompanies())
	require.Len(t, aggs, 3)

	assert.Equal(t, "Information Technology", aggs[0].Sector)
	assert.Equal(t, "Consumer Discretionary", aggs[1].Sector)
	assert.Equal(t, "Financials", aggs[2].Sector)

	it := aggs[0]
	assert.Equal(t, 3, it.CompanyCount)
	assert.Equal(t, 2, it.ImportersCount)
	assert.InDelta(t, 185e6, it.TotalInvestmentUSD, 1)
	assert.InDelta(t, 525e9, it.TotalRevenueUSD, 1)
	assert.InDelta(t, 260e9, it.TotalCOGSUSD, 1)

	affected := 200e9*0.4 + 50e9*0.3 + 10e9*0.05
	assert.InDelta(t, affected, it.TotalAffectedCOGSUSD, 1)
	assert.InDelta(t, affected/260e9, it.AverageExposurePct, 1e-9)

	require.Len(t, it.TopExposedCompanies, 3)
	assert.Equal(t, "APEX0", it.TopExposedCompanies[0].Ticker)
	assert.Equal(t, "QTRX0", it.TopExposedCompanies[1].Ticker)
	assert.Equal(t, "VRDN0", it.TopExposedCompanies[2].Ticker)
}

func TestSectorBreakdown_ZeroCOGSSector(t *testing.T) {
	aggs := SectorBreakdown(sampleCompanies())
	fin := aggs[2]
	require.Equal(t, "Financials", fin.Sector)
	assert.Zero(t, fin.TotalCOGSUSD)
	assert.Zero(t, fin.AverageExposurePct, "zero-COGS sector must report zero exposure")
}

func TestSectorBreakdown_TopFiveTrimmed(t *testing.T) {
	var records []Company
	for i := 0; i < 7; i++ {
		records = append(records, Company{
			Ticker:          fmt.Sprintf("T%d", i),
			Sector:          "Industrials",
			AffectedCOGSPct: float64(i) / 10,
		})
	}

	aggs := SectorBreakdown(records)
	require.Len(t, aggs, 1)

	top := aggs[0].TopExposedCompanies
	require.Len(t, top, 5)
	assert.Equal(t, "T6", top[0].Ticker)
	assert.Equal(t, "T2", top[4].Ticker)
}

func TestSectorBreakdown_StableTies(t *testing.T) {
	records := []Company{
		{Ticker: "AAA0", Sector: "Energy", AffectedCOGSPct: 0.2},
		{Ticker: "BBB0", Sector: "Energy", AffectedCOGSPct: 0.2},
		{Ticker: "CCC0", Sector: "Energy", AffectedCOGSPct: 0.2},
	}

	top := SectorBreakdown(records)[0].TopExposedCompanies
	require.Len(t, top, 3)
	assert.Equal(t, "AAA0", top[0].Ticker, "ties keep dataset order")
	assert.Equal(t, "CCC0", top[2].Ticker)
}

func TestSectorBreakdown_Empty(t *testing.T) {
	assert.Empty(t, SectorBreakdown(nil))
}

// TestSummarizePortfolio validates totals, the level breakdown, the
// exposure-descending sector ranking, and the top exposed list
func TestSummarizePortfolio(t *testing.T) {
	s := SummarizePortfolio(sampleCompanies())

	assert.Equal(t, 5, s.Overview.TotalCompanies)
	assert.Equal(t, 3, s.Overview.ImportersCount)
	assert.InDelta(t, 313e6, s.Overview.TotalInvestmentUSD, 1)
	assert.InDelta(t, 705e9, s.Overview.TotalRevenueUSD, 1)
	assert.InDelta(t, 360e9, s.Overview.TotalCOGSUSD, 1)

	affected := 200e9*0.4 + 50e9*0.3 + 10e9*0.05 + 100e9*0.2
	assert.InDelta(t, affected, s.Overview.TotalAffectedCOGSUSD, 1)
	assert.InDelta(t, affected/360e9, s.Overview.OverallExposurePct, 1e-9)

	assert.Equal(t, 3, s.LevelBreakdown.High)
	assert.Equal(t, 0, s.LevelBreakdown.Medium)
	assert.Equal(t, 1, s.LevelBreakdown.Low)
	assert.Equal(t, 1, s.LevelBreakdown.None)

	require.Len(t, s.SectorRanking, 3)
	assert.Equal(t, "Information Technology", s.SectorRanking[0].Sector)
	assert.Equal(t, "Consumer Discretionary", s.SectorRanking[1].Sector)
	assert.Equal(t, "Financials", s.SectorRanking[2].Sector)
	assert.Zero(t, s.SectorRanking[2].ExposurePct)

	require.Len(t, s.TopExposed, 5)
	assert.Equal(t, "APEX0", s.TopExposed[0].Ticker)
	assert.Equal(t, "QTRX0", s.TopExposed[1].Ticker)
	assert.Equal(t, "NWRT0", s.TopExposed[2].Ticker)
	assert.True(t, s.TopExposed[0].ImportsIntoUS)
}

func TestSummarizePortfolio_UnrecognizedLevelCountedInTotalsOnly(t *testing.T) {
	records := []Company{
		{Ticker: "AAA0", ExposureLevel: "High"},
		{Ticker: "BBB0", ExposureLevel: "Severe"},
	}

	s := SummarizePortfolio(records)
	assert.Equal(t, 2, s.Overview.TotalCompanies)

	bucketed := s.LevelBreakdown.High + s.LevelBreakdown.Medium + s.LevelBreakdown.Low + s.LevelBreakdown.None
	assert.Equal(t, 1, bucketed, "unrecognized level belongs in no bucket")
}

func TestSummarizePortfolio_LevelsCaseInsensitive(t *testing.T) {
	records := []Company{
		{ExposureLevel: "HIGH"},
		{ExposureLevel: "medium"},
		{ExposureLevel: "Low"},
		{ExposureLevel: "none"},
	}

	s := SummarizePortfolio(records)
	assert.Equal(t, 1, s.LevelBreakdown.High)
	assert.Equal(t, 1, s.LevelBreakdown.Medium)
	assert.Equal(t, 1, s.LevelBreakdown.Low)
	assert.Equal(t, 1, s.LevelBreakdown.None)
}

func TestSummarizePortfolio_TopTenTrimmed(t *testing.T) {
	var records []Company
	for i := 0; i < 12; i++ {
		records = append(records, Company{
			Ticker:          fmt.Sprintf("T%02d", i),
			AffectedCOGSPct: float64(i) / 100,
		})
	}

	s := SummarizePortfolio(records)
	require.Len(t, s.TopExposed, 10)
	assert.Equal(t, "T11", s.TopExposed[0].Ticker)
	assert.Equal(t, "T02", s.TopExposed[9].Ticker)
}

func TestSummarizePortfolio_Empty(t *testing.T) {
	s := SummarizePortfolio(nil)

	assert.Zero(t, s.Overview.TotalCompanies)
	assert.Zero(t, s.Overview.OverallExposurePct)
	assert.NotNil(t, s.SectorRanking)
	assert.NotNil(t, s.TopExposed)
	assert.Empty(t, s.SectorRanking)
	assert.Empty(t, s.TopExposed)
}

func TestSafeRatio(t *testing.T) {
	assert.Equal(t, 0.5, safeRatio(1, 2))
	assert.Zero(t, safeRatio(1, 0))
	assert.Zero(t, safeRatio(1, -2))
}
