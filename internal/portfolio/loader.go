package portfolio

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/data-power-io/tariffscope/internal/metrics"
)

// Store owns the immutable record cache. The first successful non-empty
// load is kept for the lifetime of the process; while the cache is empty
// every access retries the source. Loading is lock-free: a concurrent
// first access may fetch twice, but the source is read-only and the
// result deterministic, so the duplicate is harmless.
type Store struct {
	source Source
	logger *zap.Logger
	cache  atomic.Pointer[[]Company]
}

// NewStore wraps a dataset source. The logger must not be nil.
func NewStore(source Source, logger *zap.Logger) *Store {
	return &Store{source: source, logger: logger}
}

// Records returns the cached dataset, loading it on first access. Load
// failures degrade to an empty slice; callers observe zero matches, never
// an error.
func (s *Store) Records(ctx context.Context) []Company {
	if cached := s.cache.Load(); cached != nil {
		return *cached
	}

	records := s.load(ctx)
	if len(records) > 0 {
		s.cache.Store(&records)
	}
	return records
}

// Warm eagerly loads the dataset and returns the record count.
func (s *Store) Warm(ctx context.Context) int {
	return len(s.Records(ctx))
}

func (s *Store) load(ctx context.Context) []Company {
	body, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Warn("dataset unavailable, continuing with empty portfolio",
			zap.String("source", s.source.Describe()),
			zap.Error(err))
		metrics.RecordDatasetLoad(s.source.Describe(), "error", 0)
		return nil
	}
	defer body.Close()

	records := parseRecords(body, s.logger)
	s.logger.Info("portfolio dataset loaded",
		zap.String("source", s.source.Describe()),
		zap.Int("records", len(records)))
	metrics.RecordDatasetLoad(s.source.Describe(), "success", len(records))
	return records
}

// parseRecords reads the CSV stream. The header row names the fields;
// column order does not matter and unknown columns are ignored. Malformed
// values degrade per field, never per file: numerics that fail to parse
// (or parse non-finite) become 0 and booleans anything but TRUE.
func parseRecords(r io.Reader, logger *zap.Logger) []Company {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		logger.Warn("failed to read CSV header", zap.Error(err))
		return nil
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "﻿")
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var records []Company
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn("skipping malformed CSV row", zap.Error(err))
				continue
			}
			logger.Warn("failed to read CSV row", zap.Error(err))
			break
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, Company{
			Ticker:          field("ticker"),
			CompanyName:     field("company_name"),
			Sector:          field("sector"),
			Industry:        field("industry"),
			ExposureLevel:   field("exposure_level"),
			ImportsIntoUS:   parseFlag(field("imports_into_us")),
			InvestmentUSD:   parseAmount(field("investment_usd")),
			RevenueUSD:      parseAmount(field("revenue_usd")),
			COGSUSD:         parseAmount(field("cogs_usd")),
			AffectedCOGSPct: parseAmount(field("affected_cogs_pct")),
			FiscalYear:      int(parseAmount(field("fiscal_year"))),
			Confidence:      parseAmount(field("confidence")),
		})
	}

	return records
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseFlag(s string) bool {
	return strings.EqualFold(s, "TRUE")
}
