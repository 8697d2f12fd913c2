package portfolio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testHeader = "ticker,company_name,sector,industry,exposure_level,imports_into_us,investment_usd,revenue_usd,cogs_usd,affected_cogs_pct,fiscal_year,confidence"

// testCSV assembles a dataset from the standard header and the given rows.
func testCSV(rows ...string) string {
	return testHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

// staticSource serves a fixed CSV payload.
type staticSource struct {
	data string
}

func (s staticSource) Fetch(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.data)), nil
}

func (s staticSource) Describe() string { return "static" }

// flakySource fails the first `failures` fetches, then serves data. It
// counts every fetch so tests can observe cache behavior.
type flakySource struct {
	data     string
	failures int
	fetches  int
}

func (s *flakySource) Fetch(context.Context) (io.ReadCloser, error) {
	s.fetches++
	if s.failures > 0 {
		s.failures--
		return nil, fmt.Errorf("source down")
	}
	return io.NopCloser(strings.NewReader(s.data)), nil
}

func (s *flakySource) Describe() string { return "flaky" }

// TestParseRecords_MapsColumns validates the CSV column to field mapping
func TestParseRecords_MapsColumns(t *testing.T) {
	data := testCSV("APEX0,ApexTech,Information Technology,Consumer Electronics,High,TRUE,85000000,385000000000,200000000000,0.4,2024,0.92")

	records := parseRecords(strings.NewReader(data), zap.NewNop())
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, "APEX0", c.Ticker)
	assert.Equal(t, "ApexTech", c.CompanyName)
	assert.Equal(t, "Information Technology", c.Sector)
	assert.Equal(t, "Consumer Electronics", c.Industry)
	assert.Equal(t, "High", c.ExposureLevel)
	assert.True(t, c.ImportsIntoUS)
	assert.Equal(t, 85000000.0, c.InvestmentUSD)
	assert.Equal(t, 385000000000.0, c.RevenueUSD)
	assert.Equal(t, 200000000000.0, c.COGSUSD)
	assert.Equal(t, 0.4, c.AffectedCOGSPct)
	assert.Equal(t, 2024, c.FiscalYear)
	assert.Equal(t, 0.92, c.Confidence)
}

// TestParseRecords_DegradesPerField validates that a bad value zeroes one
// field without dropping the row
func TestParseRecords_DegradesPerField(t *testing.T) {
	data := testCSV("QTRX0,Quantrix,Information Technology,Semiconductors,High,sometimes,n/a,NaN,50000000000,0.3,2024.0,0.88")

	records := parseRecords(strings.NewReader(data), zap.NewNop())
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, "QTRX0", c.Ticker)
	assert.False(t, c.ImportsIntoUS, "non-TRUE flag should be false")
	assert.Zero(t, c.InvestmentUSD, "unparseable numeric should be zero")
	assert.Zero(t, c.RevenueUSD, "NaN should be zero")
	assert.Equal(t, 50000000000.0, c.COGSUSD)
	assert.Equal(t, 0.3, c.AffectedCOGSPct)
	assert.Equal(t, 2024, c.FiscalYear, "fractional year should truncate")
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 42.5, parseAmount("42.5"))
	assert.Equal(t, -12.0, parseAmount("-12"))
	assert.Equal(t, 1500.0, parseAmount("1.5e3"))
	assert.Zero(t, parseAmount(""))
	assert.Zero(t, parseAmount("n/a"))
	assert.Zero(t, parseAmount("NaN"))
	assert.Zero(t, parseAmount("+Inf"))
	assert.Zero(t, parseAmount("-Inf"))
}

func TestParseFlag(t *testing.T) {
	assert.True(t, parseFlag("TRUE"))
	assert.True(t, parseFlag("true"))
	assert.True(t, parseFlag("True"))
	assert.False(t, parseFlag("FALSE"))
	assert.False(t, parseFlag("1"))
	assert.False(t, parseFlag("yes"))
	assert.False(t, parseFlag("T"))
	assert.False(t, parseFlag(""))
}

// TestParseRecords_HeaderNormalization validates BOM stripping, case
// folding, and surrounding whitespace in header names
func TestParseRecords_HeaderNormalization(t *testing.T) {
	data := "﻿TICKER, Company_Name ,SECTOR,notes\nAPEX0,ApexTech,Information Technology,ignored\n"

	records := parseRecords(strings.NewReader(data), zap.NewNop())
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, "APEX0", c.Ticker)
	assert.Equal(t, "ApexTech", c.CompanyName)
	assert.Equal(t, "Information Technology", c.Sector)
	assert.Zero(t, c.RevenueUSD, "absent column should yield the zero value")
}

func TestParseRecords_ColumnOrderIndependent(t *testing.T) {
	data := "revenue_usd,ticker\n1000,APEX0\n"

	records := parseRecords(strings.NewReader(data), zap.NewNop())
	require.Len(t, records, 1)
	assert.Equal(t, "APEX0", records[0].Ticker)
	assert.Equal(t, 1000.0, records[0].RevenueUSD)
}

// TestParseRecords_SkipsMalformedRows validates that a row the CSV reader
// rejects is skipped and parsing continues
func TestParseRecords_SkipsMalformedRows(t *testing.T) {
	data := testCSV(
		"APEX0,ApexTech,Information Technology,Consumer Electronics,High,TRUE,1,2,3,0.4,2024,0.9",
		`BAD"ROW,Broken,Information Technology,X,High,TRUE,1,2,3,0.4,2024,0.9`,
		"QTRX0,Quantrix,Information Technology,Semiconductors,High,TRUE,1,2,3,0.3,2024,0.9",
	)

	records := parseRecords(strings.NewReader(data), zap.NewNop())
	require.Len(t, records, 2)
	assert.Equal(t, "APEX0", records[0].Ticker)
	assert.Equal(t, "QTRX0", records[1].Ticker)
}

func TestParseRecords_ShortRowFillsZeroValues(t *testing.T) {
	data := testHeader + "\nAPEX0,ApexTech\n"

	records := parseRecords(strings.NewReader(data), zap.NewNop())
	require.Len(t, records, 1)

	c := records[0]
	assert.Equal(t, "APEX0", c.Ticker)
	assert.Equal(t, "ApexTech", c.CompanyName)
	assert.Empty(t, c.Sector)
	assert.Zero(t, c.RevenueUSD)
	assert.False(t, c.ImportsIntoUS)
}

func TestParseRecords_EmptyInput(t *testing.T) {
	assert.Empty(t, parseRecords(strings.NewReader(""), zap.NewNop()))
	assert.Empty(t, parseRecords(strings.NewReader(testHeader+"\n"), zap.NewNop()))
}

// TestStore_CachesFirstNonEmptyLoad validates that the first non-empty
// load is kept and later accesses skip the source
func TestStore_CachesFirstNonEmptyLoad(t *testing.T) {
	row := "APEX0,ApexTech,Information Technology,Consumer Electronics,High,TRUE,1,2,3,0.4,2024,0.9"
	src := &flakySource{data: testCSV(row), failures: 1}
	store := NewStore(src, zap.NewNop())
	ctx := context.Background()

	assert.Empty(t, store.Records(ctx), "load should fail while the source is down")
	assert.Equal(t, 1, src.fetches)

	require.Len(t, store.Records(ctx), 1, "recovered source should load")
	assert.Equal(t, 2, src.fetches)

	require.Len(t, store.Records(ctx), 1)
	assert.Equal(t, 2, src.fetches, "cached access should not fetch again")
}

func TestStore_DoesNotCacheEmptyDataset(t *testing.T) {
	src := &flakySource{data: testHeader + "\n"}
	store := NewStore(src, zap.NewNop())
	ctx := context.Background()

	assert.Empty(t, store.Records(ctx))
	assert.Empty(t, store.Records(ctx))
	assert.Equal(t, 2, src.fetches, "empty loads should retry the source")
}

func TestStore_Warm(t *testing.T) {
	rowA := "APEX0,ApexTech,Information Technology,Consumer Electronics,High,TRUE,1,2,3,0.4,2024,0.9"
	rowB := "QTRX0,Quantrix,Information Technology,Semiconductors,High,TRUE,1,2,3,0.3,2024,0.9"
	store := NewStore(staticSource{data: testCSV(rowA, rowB)}, zap.NewNop())

	assert.Equal(t, 2, store.Warm(context.Background()))
}

func TestFileSource_LoadsDataset(t *testing.T) {
	store := NewStore(FileSource{Path: "testdata/portfolio.csv"}, zap.NewNop())

	records := store.Records(context.Background())
	require.Len(t, records, 7)
	assert.Equal(t, "APEX0", records[0].Ticker)
	assert.Equal(t, "Orchard Diagnostics", records[6].CompanyName)
}

func TestFileSource_MissingFile(t *testing.T) {
	store := NewStore(FileSource{Path: "testdata/absent.csv"}, zap.NewNop())
	assert.Empty(t, store.Records(context.Background()))
}
