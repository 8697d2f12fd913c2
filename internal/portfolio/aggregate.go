package portfolio

import (
	"sort"
	"strings"
)

const (
	topExposedPerSector = 5
	topExposedInSummary = 10
)

// SectorBreakdown groups records by sector and rolls up totals, weighted
// exposure, importer counts, and the most exposed companies per sector.
// The returned list is ordered by total investment, descending. All sort
// steps are stable, so ties keep dataset order.
func SectorBreakdown(records []Company) []SectorAggregate {
	type bucket struct {
		companies  []Company
		investment float64
		revenue    float64
		cogs       float64
		affected   float64
		importers  int
	}

	buckets := make(map[string]*bucket)
	var order []string

	for _, r := range records {
		b, ok := buckets[r.Sector]
		if !ok {
			b = &bucket{}
			buckets[r.Sector] = b
			order = append(order, r.Sector)
		}
		b.companies = append(b.companies, r)
		b.investment += r.InvestmentUSD
		b.revenue += r.RevenueUSD
		b.cogs += r.COGSUSD
		b.affected += r.AffectedCOGSUSD()
		if r.ImportsIntoUS {
			b.importers++
		}
	}

	aggregates := make([]SectorAggregate, 0, len(order))
	for _, sector := range order {
		b := buckets[sector]
		aggregates = append(aggregates, SectorAggregate{
			Sector:               sector,
			CompanyCount:         len(b.companies),
			TotalInvestmentUSD:   b.investment,
			TotalRevenueUSD:      b.revenue,
			TotalCOGSUSD:         b.cogs,
			TotalAffectedCOGSUSD: b.affected,
			AverageExposurePct:   safeRatio(b.affected, b.cogs),
			ImportersCount:       b.importers,
			TopExposedCompanies:  topByAffectedPct(b.companies, topExposedPerSector),
		})
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].TotalInvestmentUSD > aggregates[j].TotalInvestmentUSD
	})
	return aggregates
}

// SummarizePortfolio computes whole-portfolio totals, the exposure-level
// breakdown, the per-sector exposure ranking, and the most exposed
// companies across the entire set.
func SummarizePortfolio(records []Company) PortfolioSummary {
	var summary PortfolioSummary

	overview := &summary.Overview
	overview.TotalCompanies = len(records)

	type sectorTotals struct {
		cogs     float64
		affected float64
	}
	sectors := make(map[string]*sectorTotals)
	var order []string

	for _, r := range records {
		overview.TotalInvestmentUSD += r.InvestmentUSD
		overview.TotalRevenueUSD += r.RevenueUSD
		overview.TotalCOGSUSD += r.COGSUSD
		overview.TotalAffectedCOGSUSD += r.AffectedCOGSUSD()
		if r.ImportsIntoUS {
			overview.ImportersCount++
		}

		switch strings.ToLower(r.ExposureLevel) {
		case "high":
			summary.LevelBreakdown.High++
		case "medium":
			summary.LevelBreakdown.Medium++
		case "low":
			summary.LevelBreakdown.Low++
		case "none":
			summary.LevelBreakdown.None++
		}

		st, ok := sectors[r.Sector]
		if !ok {
			st = &sectorTotals{}
			sectors[r.Sector] = st
			order = append(order, r.Sector)
		}
		st.cogs += r.COGSUSD
		st.affected += r.AffectedCOGSUSD()
	}

	overview.OverallExposurePct = safeRatio(overview.TotalAffectedCOGSUSD, overview.TotalCOGSUSD)

	summary.SectorRanking = make([]SectorExposure, 0, len(order))
	for _, sector := range order {
		st := sectors[sector]
		summary.SectorRanking = append(summary.SectorRanking, SectorExposure{
			Sector:      sector,
			ExposurePct: safeRatio(st.affected, st.cogs),
		})
	}
	sort.SliceStable(summary.SectorRanking, func(i, j int) bool {
		return summary.SectorRanking[i].ExposurePct > summary.SectorRanking[j].ExposurePct
	})

	top := topByAffectedPct(records, topExposedInSummary)
	summary.TopExposed = make([]CompanyExposure, 0, len(top))
	for _, r := range top {
		summary.TopExposed = append(summary.TopExposed, CompanyExposure{
			Ticker:          r.Ticker,
			CompanyName:     r.CompanyName,
			Sector:          r.Sector,
			ExposureLevel:   r.ExposureLevel,
			AffectedCOGSPct: r.AffectedCOGSPct,
			ImportsIntoUS:   r.ImportsIntoUS,
		})
	}

	return summary
}

// topByAffectedPct returns up to n records ordered by affected COGS
// percentage, descending, without disturbing the input slice.
func topByAffectedPct(records []Company, n int) []Company {
	sorted := make([]Company, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AffectedCOGSPct > sorted[j].AffectedCOGSPct
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// safeRatio guards the zero-denominator case: aggregate ratios report 0
// rather than a non-finite value.
func safeRatio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}
