package service

import (
	"context"
	"fmt"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
)

// dayFormat keys the clicksOverTime histogram; days are UTC.
const dayFormat = "2006-01-02"

// locationUnknown buckets visits with no geo match. Distinct from the
// classifier's label defaults: absence of data, not an "unknown" label
// stored on the visit.
const locationUnknown = "unknown"

// AnalyticsSummary is the aggregated view over one link's visit log.
type AnalyticsSummary struct {
	TotalClicks    int64            `json:"totalClicks"`
	DeviceStats    map[string]int64 `json:"deviceStats"`
	BrowserStats   map[string]int64 `json:"browserStats"`
	LocationStats  map[string]int64 `json:"locationStats"`
	ClicksOverTime map[string]int64 `json:"clicksOverTime"`
}

// Aggregator folds a link's visit log into summary statistics. Each
// call is a full O(n) scan over one consistent read of the log; there
// is no incremental state to drift.
type Aggregator struct {
	visits repository.VisitRepository
}

// NewAggregator returns an aggregator reading from the given repository.
func NewAggregator(visits repository.VisitRepository) *Aggregator {
	return &Aggregator{visits: visits}
}

// Aggregate reads the link's visit log once and folds it. An empty log
// yields zero clicks and empty maps, never an error. TotalClicks is
// the length of the snapshot read here, so the counts in one summary
// are always mutually consistent even under concurrent appends.
func (a *Aggregator) Aggregate(ctx context.Context, link *model.Link) (*AnalyticsSummary, error) {
	visits, err := a.visits.ListByLink(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate %q: %w", link.ShortCode, err)
	}

	summary := &AnalyticsSummary{
		TotalClicks:    int64(len(visits)),
		DeviceStats:    make(map[string]int64),
		BrowserStats:   make(map[string]int64),
		LocationStats:  make(map[string]int64),
		ClicksOverTime: make(map[string]int64),
	}

	for _, v := range visits {
		summary.DeviceStats[v.DeviceClass]++
		summary.BrowserStats[v.BrowserFamily]++

		location := locationUnknown
		if v.GeoCountry != nil {
			location = *v.GeoCountry
		}
		summary.LocationStats[location]++

		summary.ClicksOverTime[v.Timestamp.UTC().Format(dayFormat)]++
	}

	return summary, nil
}
