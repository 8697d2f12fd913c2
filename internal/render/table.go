// Package render prints portfolio query results as terminal tables for
// the local inspection subcommands.
package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/data-power-io/tariffscope/internal/portfolio"
)

func newWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleColoredDark)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

func rightAligned(numbers ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(numbers))
	for _, n := range numbers {
		cfgs = append(cfgs, table.ColumnConfig{
			Number:      n,
			Align:       text.AlignRight,
			AlignHeader: text.AlignRight,
		})
	}
	return cfgs
}

// Companies renders one row per company.
func Companies(w io.Writer, companies []portfolio.Company) {
	if len(companies) == 0 {
		fmt.Fprintln(w, "No companies matched.")
		return
	}

	tw := newWriter(w)
	tw.AppendHeader(table.Row{"TICKER", "COMPANY", "SECTOR", "EXPOSURE", "IMPORTS", "REVENUE", "AFFECTED COGS", "CONFIDENCE"})
	tw.SetColumnConfigs(rightAligned(6, 7, 8))

	for _, c := range companies {
		tw.AppendRow(table.Row{
			c.Ticker,
			c.CompanyName,
			c.Sector,
			c.ExposureLevel,
			yesNo(c.ImportsIntoUS),
			money(c.RevenueUSD),
			percent(c.AffectedCOGSPct),
			fmt.Sprintf("%.2f", c.Confidence),
		})
	}
	tw.Render()
}

// Sectors renders the per-sector rollup ordered as given.
func Sectors(w io.Writer, sectors []portfolio.SectorAggregate) {
	if len(sectors) == 0 {
		fmt.Fprintln(w, "No sectors found.")
		return
	}

	tw := newWriter(w)
	tw.AppendHeader(table.Row{"SECTOR", "COMPANIES", "IMPORTERS", "INVESTMENT", "REVENUE", "AFFECTED COGS", "AVG EXPOSURE"})
	tw.SetColumnConfigs(rightAligned(2, 3, 4, 5, 6, 7))

	for _, s := range sectors {
		tw.AppendRow(table.Row{
			s.Sector,
			s.CompanyCount,
			s.ImportersCount,
			money(s.TotalInvestmentUSD),
			money(s.TotalRevenueUSD),
			money(s.TotalAffectedCOGSUSD),
			percent(s.AverageExposurePct),
		})
	}
	tw.Render()
}

// Summary renders the portfolio-wide exposure summary as a set of tables.
func Summary(w io.Writer, s portfolio.PortfolioSummary) {
	fmt.Fprintln(w, text.Bold.Sprint("PORTFOLIO OVERVIEW"))
	overview := newWriter(w)
	overview.AppendRow(table.Row{"Companies", s.Overview.TotalCompanies})
	overview.AppendRow(table.Row{"Importers", s.Overview.ImportersCount})
	overview.AppendRow(table.Row{"Total investment", money(s.Overview.TotalInvestmentUSD)})
	overview.AppendRow(table.Row{"Total revenue", money(s.Overview.TotalRevenueUSD)})
	overview.AppendRow(table.Row{"Total COGS", money(s.Overview.TotalCOGSUSD)})
	overview.AppendRow(table.Row{"Affected COGS", money(s.Overview.TotalAffectedCOGSUSD)})
	overview.AppendRow(table.Row{"Overall exposure", percent(s.Overview.OverallExposurePct)})
	overview.Render()
	fmt.Fprintln(w)

	fmt.Fprintln(w, text.Bold.Sprint("EXPOSURE LEVELS"))
	levels := newWriter(w)
	levels.AppendHeader(table.Row{"HIGH", "MEDIUM", "LOW", "NONE"})
	levels.SetColumnConfigs(rightAligned(1, 2, 3, 4))
	levels.AppendRow(table.Row{
		s.LevelBreakdown.High,
		s.LevelBreakdown.Medium,
		s.LevelBreakdown.Low,
		s.LevelBreakdown.None,
	})
	levels.Render()
	fmt.Fprintln(w)

	fmt.Fprintln(w, text.Bold.Sprint("SECTOR EXPOSURE RANKING"))
	ranking := newWriter(w)
	ranking.AppendHeader(table.Row{"SECTOR", "EXPOSURE"})
	ranking.SetColumnConfigs(rightAligned(2))
	for _, r := range s.SectorRanking {
		ranking.AppendRow(table.Row{r.Sector, percent(r.ExposurePct)})
	}
	ranking.Render()
	fmt.Fprintln(w)

	fmt.Fprintln(w, text.Bold.Sprint("TOP EXPOSED COMPANIES"))
	top := newWriter(w)
	top.AppendHeader(table.Row{"TICKER", "COMPANY", "SECTOR", "EXPOSURE", "AFFECTED COGS", "IMPORTS"})
	top.SetColumnConfigs(rightAligned(5))
	for _, c := range s.TopExposed {
		top.AppendRow(table.Row{
			c.Ticker,
			c.CompanyName,
			c.Sector,
			c.ExposureLevel,
			percent(c.AffectedCOGSPct),
			yesNo(c.ImportsIntoUS),
		})
	}
	top.Render()
}

// money formats dollar amounts compactly, scaling to millions or
// billions for readability.
func money(v float64) string {
	switch {
	case v >= 1e9 || v <= -1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6 || v <= -1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
