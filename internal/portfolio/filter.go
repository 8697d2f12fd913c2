package portfolio

import "strings"

// SearchCriteria is a conjunction of optional per-field constraints. The
// zero value of every field means "no constraint": empty strings skip the
// string predicates and numeric bounds apply only when greater than zero,
// so a bound of exactly zero is indistinguishable from unset. This
// mirrors the tool boundary, where empty-string/zero sentinels stand in
// for absent parameters.
type SearchCriteria struct {
	Sector        string
	Industry      string
	ExposureLevel string

	// ImportsFilter is ternary: "yes" keeps importers, "no" keeps
	// non-importers, anything else keeps all.
	ImportsFilter string

	MinRevenue         float64
	MaxRevenue         float64
	MinAffectedCOGSPct float64

	// CompanyName matches as a case-insensitive substring; Ticker as a
	// case-insensitive exact symbol.
	CompanyName string
	Ticker      string
}

type predicate func(Company) bool

// predicates builds the active constraint set. Only supplied criteria
// contribute; an empty criteria value produces no predicate.
func (c SearchCriteria) predicates() []predicate {
	var preds []predicate

	if c.Sector != "" {
		want := c.Sector
		preds = append(preds, func(r Company) bool { return strings.EqualFold(r.Sector, want) })
	}
	if c.Industry != "" {
		want := c.Industry
		preds = append(preds, func(r Company) bool { return strings.EqualFold(r.Industry, want) })
	}
	if c.ExposureLevel != "" {
		want := c.ExposureLevel
		preds = append(preds, func(r Company) bool { return strings.EqualFold(r.ExposureLevel, want) })
	}
	switch strings.ToLower(c.ImportsFilter) {
	case "yes":
		preds = append(preds, func(r Company) bool { return r.ImportsIntoUS })
	case "no":
		preds = append(preds, func(r Company) bool { return !r.ImportsIntoUS })
	}
	if c.MinRevenue > 0 {
		floor := c.MinRevenue
		preds = append(preds, func(r Company) bool { return r.RevenueUSD >= floor })
	}
	if c.MaxRevenue > 0 {
		ceil := c.MaxRevenue
		preds = append(preds, func(r Company) bool { return r.RevenueUSD <= ceil })
	}
	if c.MinAffectedCOGSPct > 0 {
		floor := c.MinAffectedCOGSPct
		preds = append(preds, func(r Company) bool { return r.AffectedCOGSPct >= floor })
	}
	if c.CompanyName != "" {
		want := strings.ToLower(c.CompanyName)
		preds = append(preds, func(r Company) bool {
			return strings.Contains(strings.ToLower(r.CompanyName), want)
		})
	}
	if c.Ticker != "" {
		want := c.Ticker
		preds = append(preds, func(r Company) bool { return strings.EqualFold(r.Ticker, want) })
	}

	return preds
}

// Matches reports whether the record satisfies every supplied criterion.
func (c SearchCriteria) Matches(r Company) bool {
	for _, pred := range c.predicates() {
		if !pred(r) {
			return false
		}
	}
	return true
}

// Filter returns the subsequence of records satisfying the criteria, in
// dataset order.
func Filter(records []Company, c SearchCriteria) []Company {
	preds := c.predicates()
	if len(preds) == 0 {
		out := make([]Company, len(records))
		copy(out, records)
		return out
	}

	var out []Company
	for _, r := range records {
		ok := true
		for _, pred := range preds {
			if !pred(r) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}
