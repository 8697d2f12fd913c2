package portfolio

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssumedTariffRate is the flat rate applied to affected COGS when
// estimating the potential tariff impact.
const AssumedTariffRate = 0.25

// Response status tags. Soft outcomes (validation failures, misses) are
// reported through these, never as Go errors.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// Envelope is the uniform response wrapper: a per-call opaque request id,
// the outcome status, and the elapsed wall time in milliseconds rounded
// to two decimals.
type Envelope struct {
	RequestID        string  `json:"request_id"`
	Status           string  `json:"status"`
	ProcessingTimeMS float64 `json:"processing_time_ms"`
}

// SearchResult is the payload of a portfolio search. TotalMatches counts
// the filtered set before the limit is applied.
type SearchResult struct {
	Envelope
	TotalMatches  int       `json:"total_matches"`
	ReturnedCount int       `json:"returned_count"`
	Companies     []Company `json:"companies"`
}

// DetailsResult is the payload of a single-company lookup. Company and
// CalculatedMetrics are set on success; Message on error or miss.
type DetailsResult struct {
	Envelope
	Company           *Company        `json:"company,omitempty"`
	CalculatedMetrics *DerivedMetrics `json:"calculated_metrics,omitempty"`
	Message           string          `json:"message,omitempty"`
}

// SectorAnalysisData is the success payload of a sector analysis.
type SectorAnalysisData struct {
	SectorCount int               `json:"sector_count"`
	Sectors     []SectorAggregate `json:"sectors"`
}

// SectorResult wraps a sector analysis outcome. The embedded payload is
// nil on a miss, which keeps its fields out of the serialized response.
type SectorResult struct {
	Envelope
	Message string `json:"message,omitempty"`
	*SectorAnalysisData
}

// SummaryResult is the payload of the whole-portfolio exposure summary.
type SummaryResult struct {
	Envelope
	PortfolioOverview      PortfolioTotals        `json:"portfolio_overview"`
	ExposureLevelBreakdown ExposureLevelBreakdown `json:"exposure_level_breakdown"`
	TopExposedCompanies    []CompanyExposure      `json:"top_exposed_companies"`
	SectorExposureRanking  []SectorExposure       `json:"sector_exposure_ranking"`
}

// SortFields are the columns search results may be ordered by. Any other
// sort key is ignored and dataset order is kept.
var SortFields = []string{"revenue_usd", "affected_cogs_pct", "confidence", "investment_usd"}

func sortValue(c Company, field string) (float64, bool) {
	switch field {
	case "revenue_usd":
		return c.RevenueUSD, true
	case "affected_cogs_pct":
		return c.AffectedCOGSPct, true
	case "confidence":
		return c.Confidence, true
	case "investment_usd":
		return c.InvestmentUSD, true
	}
	return 0, false
}

// Engine orchestrates the four query operations over an injected record
// store. All operations are read-only and safe for concurrent use.
type Engine struct {
	store  *Store
	logger *zap.Logger
}

// NewEngine creates an engine over the given store.
func NewEngine(store *Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Search filters the portfolio, optionally sorts by one of SortFields,
// and truncates to limit. A limit of zero or less yields an empty list;
// TotalMatches always reflects the pre-truncation count.
func (e *Engine) Search(ctx context.Context, criteria SearchCriteria, limit int, sortBy string, sortDesc bool) *SearchResult {
	id, start := newRequest()
	e.logger.Info("portfolio search requested",
		zap.String("request_id", id),
		zap.String("sector", criteria.Sector),
		zap.String("industry", criteria.Industry),
		zap.String("exposure_level", criteria.ExposureLevel),
		zap.Int("limit", limit))

	matches := Filter(e.store.Records(ctx), criteria)
	total := len(matches)

	if _, ok := sortValue(Company{}, sortBy); ok {
		sort.SliceStable(matches, func(i, j int) bool {
			vi, _ := sortValue(matches[i], sortBy)
			vj, _ := sortValue(matches[j], sortBy)
			if sortDesc {
				return vi > vj
			}
			return vi < vj
		})
	}

	switch {
	case limit <= 0:
		matches = []Company{}
	case len(matches) > limit:
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []Company{}
	}

	result := &SearchResult{
		Envelope:      newEnvelope(id, StatusSuccess, start),
		TotalMatches:  total,
		ReturnedCount: len(matches),
		Companies:     matches,
	}
	e.logger.Info("portfolio search completed",
		zap.String("request_id", id),
		zap.Int("total_matches", total),
		zap.Int("returned", len(matches)),
		zap.Float64("elapsed_ms", result.ProcessingTimeMS))
	return result
}

// CompanyDetails looks a company up by exact ticker first, then by name
// substring, both case-insensitive, first match in dataset order. At
// least one identifier is required.
func (e *Engine) CompanyDetails(ctx context.Context, ticker, companyName string) *DetailsResult {
	id, start := newRequest()
	e.logger.Info("company lookup requested",
		zap.String("request_id", id),
		zap.String("ticker", ticker),
		zap.String("company_name", companyName))

	if ticker == "" && companyName == "" {
		e.logger.Warn("company lookup missing identifiers", zap.String("request_id", id))
		return &DetailsResult{
			Envelope: newEnvelope(id, StatusError, start),
			Message:  "Must provide either ticker or company_name",
		}
	}

	records := e.store.Records(ctx)

	var found *Company
	if ticker != "" {
		for i := range records {
			if strings.EqualFold(records[i].Ticker, ticker) {
				found = &records[i]
				break
			}
		}
	}
	if found == nil && companyName != "" {
		want := strings.ToLower(companyName)
		for i := range records {
			if strings.Contains(strings.ToLower(records[i].CompanyName), want) {
				found = &records[i]
				break
			}
		}
	}

	if found == nil {
		e.logger.Info("company lookup miss",
			zap.String("request_id", id),
			zap.String("ticker", ticker),
			zap.String("company_name", companyName))
		return &DetailsResult{
			Envelope: newEnvelope(id, StatusNotFound, start),
			Message:  fmt.Sprintf("No company found matching ticker='%s' or name='%s'", ticker, companyName),
		}
	}

	company := *found
	affected := company.AffectedCOGSUSD()
	risk := 0.0
	if company.ImportsIntoUS {
		risk = company.AffectedCOGSPct
	}

	result := &DetailsResult{
		Envelope: newEnvelope(id, StatusSuccess, start),
		Company:  &company,
		CalculatedMetrics: &DerivedMetrics{
			AffectedCOGSUSD:          affected,
			PotentialTariffImpactUSD: affected * AssumedTariffRate,
			RevenueToCOGSRatio:       safeRatio(company.RevenueUSD, company.COGSUSD),
			ExposureRiskScore:        risk,
		},
	}
	e.logger.Info("company lookup completed",
		zap.String("request_id", id),
		zap.String("ticker", company.Ticker),
		zap.Float64("elapsed_ms", result.ProcessingTimeMS))
	return result
}

// SectorAnalysis aggregates per sector, optionally restricted to one
// sector. A supplied sector with no matching companies is a miss.
func (e *Engine) SectorAnalysis(ctx context.Context, sector string) *SectorResult {
	id, start := newRequest()
	e.logger.Info("sector analysis requested",
		zap.String("request_id", id),
		zap.String("sector", sector))

	records := e.store.Records(ctx)
	if sector != "" {
		records = Filter(records, SearchCriteria{Sector: sector})
		if len(records) == 0 {
			e.logger.Info("sector analysis miss",
				zap.String("request_id", id),
				zap.String("sector", sector))
			return &SectorResult{
				Envelope: newEnvelope(id, StatusNotFound, start),
				Message:  fmt.Sprintf("No companies found in sector '%s'", sector),
			}
		}
	}

	aggregates := SectorBreakdown(records)
	if aggregates == nil {
		aggregates = []SectorAggregate{}
	}

	result := &SectorResult{
		Envelope: newEnvelope(id, StatusSuccess, start),
		SectorAnalysisData: &SectorAnalysisData{
			SectorCount: len(aggregates),
			Sectors:     aggregates,
		},
	}
	e.logger.Info("sector analysis completed",
		zap.String("request_id", id),
		zap.Int("sectors", len(aggregates)),
		zap.Float64("elapsed_ms", result.ProcessingTimeMS))
	return result
}

// ExposureSummary reports whole-portfolio totals, the exposure-level
// breakdown, the sector exposure ranking, and the most exposed companies.
func (e *Engine) ExposureSummary(ctx context.Context) *SummaryResult {
	id, start := newRequest()
	e.logger.Info("exposure summary requested", zap.String("request_id", id))

	summary := SummarizePortfolio(e.store.Records(ctx))

	result := &SummaryResult{
		Envelope:               newEnvelope(id, StatusSuccess, start),
		PortfolioOverview:      summary.Overview,
		ExposureLevelBreakdown: summary.LevelBreakdown,
		TopExposedCompanies:    summary.TopExposed,
		SectorExposureRanking:  summary.SectorRanking,
	}
	e.logger.Info("exposure summary completed",
		zap.String("request_id", id),
		zap.Int("companies", summary.Overview.TotalCompanies),
		zap.Int("importers", summary.Overview.ImportersCount),
		zap.Float64("elapsed_ms", result.ProcessingTimeMS))
	return result
}

func newRequest() (string, time.Time) {
	return uuid.NewString()[:8], time.Now()
}

func newEnvelope(id, status string, start time.Time) Envelope {
	return Envelope{
		RequestID:        "rq_" + id,
		Status:           status,
		ProcessingTimeMS: round2(time.Since(start).Seconds() * 1000),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
