package mcp

import (
	"context"
	"encoding/json"

	"github.com/data-power-io/tariffscope/internal/portfolio"
)

// Tool names advertised through tools/list.
const (
	toolQueryPortfolio  = "query_sp500_portfolio"
	toolCompanyDetails  = "get_company_details"
	toolSectorAnalysis  = "get_sector_analysis"
	toolExposureSummary = "get_exposure_summary"
)

// Boundary defaults applied when a parameter is absent. An explicit zero
// is honored as sent.
const defaultSearchLimit = 20

var toolOrder = []string{
	toolQueryPortfolio,
	toolCompanyDetails,
	toolSectorAnalysis,
	toolExposureSummary,
}

// ToolNames returns the advertised tool names in catalog order.
func ToolNames() []string {
	names := make([]string, len(toolOrder))
	copy(names, toolOrder)
	return names
}

// queryArgs mirrors the query_sp500_portfolio parameters. Limit and
// SortDesc are pointers so that an absent value can take the documented
// default while an explicit zero/false is kept.
type queryArgs struct {
	Sector             string  `json:"sector"`
	Industry           string  `json:"industry"`
	ExposureLevel      string  `json:"exposure_level"`
	ImportsFilter      string  `json:"imports_filter"`
	MinRevenue         float64 `json:"min_revenue"`
	MaxRevenue         float64 `json:"max_revenue"`
	MinAffectedCOGSPct float64 `json:"min_affected_cogs_pct"`
	CompanyName        string  `json:"company_name"`
	Ticker             string  `json:"ticker"`
	Limit              *int    `json:"limit"`
	SortBy             string  `json:"sort_by"`
	SortDesc           *bool   `json:"sort_desc"`
}

type detailsArgs struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
}

type sectorArgs struct {
	Sector string `json:"sector"`
}

// toolCatalog builds the advertised tool descriptors. Schemas stay flat
// (scalar properties only, no unions or nullable types) for
// compatibility with strict host-side validators.
func toolCatalog() []Tool {
	return []Tool{
		{
			Name: toolQueryPortfolio,
			Description: `Query the SP500 portfolio dataset with flexible filtering options.

Use this tool when the user asks about:
- Companies in specific sectors (e.g., "tech companies", "consumer discretionary")
- Companies in specific industries (e.g., "software", "semiconductors")
- Exposure levels (e.g., "high exposure", "companies at risk")
- Companies that import into the US
- Financial metrics (revenue, COGS, margins)
- Specific companies by name or ticker

Returns matching companies with all their data fields.
All filter parameters are optional - use empty strings to skip filtering.`,
			InputSchema: objectSchema(map[string]any{
				"sector":                stringParam("Filter by sector (e.g., 'Information Technology', 'Consumer Discretionary'). Use empty string to skip."),
				"industry":              stringParam("Filter by industry (e.g., 'Software', 'Semiconductors', 'Retail'). Use empty string to skip."),
				"exposure_level":        stringParam("Filter by exposure level: 'high', 'medium', 'low', or 'none'. Use empty string to skip."),
				"imports_filter":        stringParam("Filter by import status: 'yes' for importers, 'no' for non-importers, empty string to skip."),
				"min_revenue":           numberParam("Minimum revenue in USD. Use 0 to skip."),
				"max_revenue":           numberParam("Maximum revenue in USD. Use 0 to skip."),
				"min_affected_cogs_pct": numberParam("Minimum percentage of COGS affected by tariffs (0.0 to 1.0). Use 0 to skip."),
				"company_name":          stringParam("Search by company name (partial match). Use empty string to skip."),
				"ticker":                stringParam("Filter by ticker symbol. Use empty string to skip."),
				"limit":                 integerParam("Maximum number of results to return. Defaults to 20."),
				"sort_by":               stringParam("Sort results by field: 'revenue_usd', 'affected_cogs_pct', 'confidence', 'investment_usd'. Use empty string for default."),
				"sort_desc":             booleanParam("Sort in descending order. Defaults to true."),
			}),
		},
		{
			Name: toolCompanyDetails,
			Description: `Get detailed information about a specific company by ticker or name.

Use this when the user asks about a specific company:
- "Tell me about ApexTech"
- "What's the exposure for APEX0?"
- "Show me details for Northwind Retail"

Provide either ticker OR company_name (at least one must be non-empty).`,
			InputSchema: objectSchema(map[string]any{
				"ticker":       stringParam("Company ticker symbol. Use empty string if searching by name."),
				"company_name": stringParam("Company name (partial match allowed). Use empty string if searching by ticker."),
			}),
		},
		{
			Name: toolSectorAnalysis,
			Description: `Analyze portfolio holdings by sector with aggregated metrics.

Use this when the user asks about:
- "Which sectors are most exposed?"
- "Show me sector breakdown"
- "Analyze by sector"
- "What's the technology sector exposure?"

Leave sector empty to analyze all sectors, or specify a sector name to analyze just that sector.`,
			InputSchema: objectSchema(map[string]any{
				"sector": stringParam("Specific sector to analyze. Use empty string for all sectors."),
			}),
		},
		{
			Name: toolExposureSummary,
			Description: `Get comprehensive summary of tariff exposure across the entire SP500 portfolio.

Use this when the user asks about:
- "What's the overall exposure?"
- "Give me a portfolio summary"
- "How exposed is the portfolio to tariffs?"
- "Show me the exposure breakdown"

This tool takes no parameters and returns a complete portfolio overview.`,
			InputSchema: objectSchema(map[string]any{}),
		},
	}
}

// dispatchTool decodes the arguments, runs the engine operation, and
// returns the envelope to serialize along with its status tag.
func (s *Server) dispatchTool(ctx context.Context, name string, raw json.RawMessage) (any, string, *Error) {
	switch name {
	case toolQueryPortfolio:
		var args queryArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, "", &Error{Code: CodeInvalidParams, Message: "Invalid arguments"}
		}
		limit := defaultSearchLimit
		if args.Limit != nil {
			limit = *args.Limit
		}
		sortDesc := true
		if args.SortDesc != nil {
			sortDesc = *args.SortDesc
		}
		criteria := portfolio.SearchCriteria{
			Sector:             args.Sector,
			Industry:           args.Industry,
			ExposureLevel:      args.ExposureLevel,
			ImportsFilter:      args.ImportsFilter,
			MinRevenue:         args.MinRevenue,
			MaxRevenue:         args.MaxRevenue,
			MinAffectedCOGSPct: args.MinAffectedCOGSPct,
			CompanyName:        args.CompanyName,
			Ticker:             args.Ticker,
		}
		res := s.engine.Search(ctx, criteria, limit, args.SortBy, sortDesc)
		return res, res.Status, nil

	case toolCompanyDetails:
		var args detailsArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, "", &Error{Code: CodeInvalidParams, Message: "Invalid arguments"}
		}
		res := s.engine.CompanyDetails(ctx, args.Ticker, args.CompanyName)
		return res, res.Status, nil

	case toolSectorAnalysis:
		var args sectorArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, "", &Error{Code: CodeInvalidParams, Message: "Invalid arguments"}
		}
		res := s.engine.SectorAnalysis(ctx, args.Sector)
		return res, res.Status, nil

	case toolExposureSummary:
		res := s.engine.ExposureSummary(ctx)
		return res, res.Status, nil
	}

	return nil, "", &Error{Code: CodeServerError, Message: "Unknown tool: " + name}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func objectSchema(props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             []string{},
		"additionalProperties": false,
	}
}

func stringParam(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func numberParam(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func integerParam(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func booleanParam(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}
