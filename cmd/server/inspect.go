package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/data-power-io/tariffscope/internal/logging"
	"github.com/data-power-io/tariffscope/internal/portfolio"
	"github.com/data-power-io/tariffscope/internal/render"
)

// Inspection subcommands run the query engine locally against the
// configured dataset and print tables instead of serving tools.

func newQueryCmd() *cobra.Command {
	var (
		criteria portfolio.SearchCriteria
		limit    int
		sortBy   string
		asc      bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter the portfolio and print matching companies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, err := localEngine(cmd)
			if err != nil {
				return err
			}

			res := engine.Search(cmd.Context(), criteria, limit, sortBy, !asc)
			render.Companies(cmd.OutOrStdout(), res.Companies)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d matches shown\n", res.ReturnedCount, res.TotalMatches)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&criteria.Sector, "sector", "", "filter by sector (case-insensitive exact)")
	flags.StringVar(&criteria.Industry, "industry", "", "filter by industry (case-insensitive exact)")
	flags.StringVar(&criteria.ExposureLevel, "exposure-level", "", "filter by exposure level (high, medium, low, none)")
	flags.StringVar(&criteria.ImportsFilter, "imports", "", "filter by importer status (yes or no)")
	flags.Float64Var(&criteria.MinRevenue, "min-revenue", 0, "minimum revenue in USD")
	flags.Float64Var(&criteria.MaxRevenue, "max-revenue", 0, "maximum revenue in USD")
	flags.Float64Var(&criteria.MinAffectedCOGSPct, "min-affected-cogs", 0, "minimum affected COGS percentage (0.15 = 15%)")
	flags.StringVar(&criteria.CompanyName, "name", "", "filter by company name (case-insensitive substring)")
	flags.StringVar(&criteria.Ticker, "ticker", "", "filter by ticker (case-insensitive exact)")
	flags.IntVar(&limit, "limit", 20, "maximum number of rows to print")
	flags.StringVar(&sortBy, "sort-by", "", "sort by field (revenue_usd, affected_cogs_pct, confidence, investment_usd)")
	flags.BoolVar(&asc, "asc", false, "sort ascending instead of descending")

	return cmd
}

func newSectorsCmd() *cobra.Command {
	var sector string

	cmd := &cobra.Command{
		Use:   "sectors",
		Short: "Print the per-sector exposure rollup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := localEngine(cmd)
			if err != nil {
				return err
			}

			sectors := portfolio.SectorBreakdown(store.Records(cmd.Context()))
			if sector != "" {
				filtered := sectors[:0]
				for _, s := range sectors {
					if strings.EqualFold(s.Sector, sector) {
						filtered = append(filtered, s)
					}
				}
				sectors = filtered
			}

			render.Sectors(cmd.OutOrStdout(), sectors)
			return nil
		},
	}

	cmd.Flags().StringVar(&sector, "sector", "", "show a single sector (case-insensitive exact)")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the portfolio-wide exposure summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := localEngine(cmd)
			if err != nil {
				return err
			}

			render.Summary(cmd.OutOrStdout(), portfolio.SummarizePortfolio(store.Records(cmd.Context())))
			return nil
		},
	}
}

func localEngine(cmd *cobra.Command) (*portfolio.Engine, *portfolio.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogDevelopment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := buildStore(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return portfolio.NewEngine(store, logger), store, nil
}
