// Package portfolio implements the in-memory query and aggregation engine
// over the S&P 500 tariff-exposure dataset.
package portfolio

// Company is one row of the tariff-exposure dataset.
type Company struct {
	Ticker          string  `json:"ticker"`
	CompanyName     string  `json:"company_name"`
	Sector          string  `json:"sector"`
	Industry        string  `json:"industry"`
	ExposureLevel   string  `json:"exposure_level"`
	ImportsIntoUS   bool    `json:"imports_into_us"`
	InvestmentUSD   float64 `json:"investment_usd"`
	RevenueUSD      float64 `json:"revenue_usd"`
	COGSUSD         float64 `json:"cogs_usd"`
	AffectedCOGSPct float64 `json:"affected_cogs_pct"`
	FiscalYear      int     `json:"fiscal_year"`
	Confidence      float64 `json:"confidence"`
}

// AffectedCOGSUSD is the dollar amount of cost of goods sold estimated to
// be impacted by tariffs.
func (c Company) AffectedCOGSUSD() float64 {
	return c.COGSUSD * c.AffectedCOGSPct
}

// SectorAggregate holds the per-sector rollup produced by SectorBreakdown.
type SectorAggregate struct {
	Sector               string    `json:"sector"`
	CompanyCount         int       `json:"company_count"`
	TotalInvestmentUSD   float64   `json:"total_investment_usd"`
	TotalRevenueUSD      float64   `json:"total_revenue_usd"`
	TotalCOGSUSD         float64   `json:"total_cogs_usd"`
	TotalAffectedCOGSUSD float64   `json:"total_affected_cogs_usd"`
	AverageExposurePct   float64   `json:"average_exposure_pct"`
	ImportersCount       int       `json:"importers_count"`
	TopExposedCompanies  []Company `json:"top_exposed_companies"`
}

// PortfolioTotals are the whole-portfolio sums reported by the exposure
// summary.
type PortfolioTotals struct {
	TotalCompanies       int     `json:"total_companies"`
	TotalInvestmentUSD   float64 `json:"total_investment_usd"`
	TotalRevenueUSD      float64 `json:"total_revenue_usd"`
	TotalCOGSUSD         float64 `json:"total_cogs_usd"`
	TotalAffectedCOGSUSD float64 `json:"total_affected_cogs_usd"`
	OverallExposurePct   float64 `json:"overall_exposure_pct"`
	ImportersCount       int     `json:"importers_count"`
}

// ExposureLevelBreakdown counts companies per recognized exposure bucket.
// Records with an unrecognized level are counted in the totals but appear
// in none of the buckets.
type ExposureLevelBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	None   int `json:"none"`
}

// SectorExposure is one entry of the sector exposure ranking.
type SectorExposure struct {
	Sector      string  `json:"sector"`
	ExposurePct float64 `json:"exposure_pct"`
}

// CompanyExposure is the trimmed projection used for the summary's top
// exposed companies list.
type CompanyExposure struct {
	Ticker          string  `json:"ticker"`
	CompanyName     string  `json:"company_name"`
	Sector          string  `json:"sector"`
	ExposureLevel   string  `json:"exposure_level"`
	AffectedCOGSPct float64 `json:"affected_cogs_pct"`
	ImportsIntoUS   bool    `json:"imports_into_us"`
}

// PortfolioSummary bundles everything SummarizePortfolio computes.
type PortfolioSummary struct {
	Overview       PortfolioTotals
	LevelBreakdown ExposureLevelBreakdown
	TopExposed     []CompanyExposure
	SectorRanking  []SectorExposure
}

// DerivedMetrics are the per-company figures computed on lookup.
type DerivedMetrics struct {
	AffectedCOGSUSD          float64 `json:"affected_cogs_usd"`
	PotentialTariffImpactUSD float64 `json:"potential_tariff_impact_usd"`
	RevenueToCOGSRatio       float64 `json:"revenue_to_cogs_ratio"`
	ExposureRiskScore        float64 `json:"exposure_risk_score"`
}
