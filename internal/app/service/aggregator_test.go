package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
)

type mockVisitRepository struct {
	appendFn func(ctx context.Context, linkID uint, visit *model.Visit) error
	listFn   func(ctx context.Context, linkID uint) ([]model.Visit, error)
}

func (m *mockVisitRepository) AppendAtomic(ctx context.Context, linkID uint, visit *model.Visit) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, linkID, visit)
	}
	return nil
}

func (m *mockVisitRepository) ListByLink(ctx context.Context, linkID uint) ([]model.Visit, error) {
	if m.listFn != nil {
		return m.listFn(ctx, linkID)
	}
	return nil, nil
}

func strptr(s string) *string { return &s }

func TestAggregator_EmptyLog(t *testing.T) {
	visits := &mockVisitRepository{
		listFn: func(ctx context.Context, linkID uint) ([]model.Visit, error) {
			return []model.Visit{}, nil
		},
	}

	agg := NewAggregator(visits)
	summary, err := agg.Aggregate(context.Background(), &model.Link{ID: 1, ShortCode: "abc"})
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}

	if summary.TotalClicks != 0 {
		t.Fatalf("expected 0 clicks, got %d", summary.TotalClicks)
	}
	if len(summary.DeviceStats) != 0 || len(summary.BrowserStats) != 0 ||
		len(summary.LocationStats) != 0 || len(summary.ClicksOverTime) != 0 {
		t.Fatalf("expected all stat maps empty, got %+v", summary)
	}
}

func TestAggregator_FoldsBreakdowns(t *testing.T) {
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	visits := &mockVisitRepository{
		listFn: func(ctx context.Context, linkID uint) ([]model.Visit, error) {
			return []model.Visit{
				{DeviceClass: model.DeviceMobile, BrowserFamily: "Chrome", GeoCountry: strptr("France"), Timestamp: day},
				{DeviceClass: model.DeviceMobile, BrowserFamily: "Safari", GeoCountry: strptr("France"), Timestamp: day.Add(2 * time.Hour)},
				{DeviceClass: model.DeviceDesktop, BrowserFamily: "Chrome", Timestamp: day.AddDate(0, 0, 1)},
			}, nil
		},
	}

	agg := NewAggregator(visits)
	summary, err := agg.Aggregate(context.Background(), &model.Link{ID: 1})
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}

	if summary.TotalClicks != 3 {
		t.Fatalf("expected 3 clicks, got %d", summary.TotalClicks)
	}
	if summary.DeviceStats[model.DeviceMobile] != 2 || summary.DeviceStats[model.DeviceDesktop] != 1 {
		t.Fatalf("unexpected device stats: %+v", summary.DeviceStats)
	}
	if summary.BrowserStats["Chrome"] != 2 || summary.BrowserStats["Safari"] != 1 {
		t.Fatalf("unexpected browser stats: %+v", summary.BrowserStats)
	}
	if summary.LocationStats["France"] != 2 {
		t.Fatalf("expected 2 visits from France, got %+v", summary.LocationStats)
	}
	// Absent geo lands in the explicit unknown bucket.
	if summary.LocationStats["unknown"] != 1 {
		t.Fatalf("expected 1 unknown-location visit, got %+v", summary.LocationStats)
	}
	if summary.ClicksOverTime["2024-03-10"] != 2 || summary.ClicksOverTime["2024-03-11"] != 1 {
		t.Fatalf("unexpected daily histogram: %+v", summary.ClicksOverTime)
	}
}

func TestAggregator_DayBucketsAreUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	visits := &mockVisitRepository{
		listFn: func(ctx context.Context, linkID uint) ([]model.Visit, error) {
			// 23:30 EST on March 10 is already March 11 in UTC.
			return []model.Visit{
				{DeviceClass: model.DeviceDesktop, BrowserFamily: "Firefox",
					Timestamp: time.Date(2024, 3, 10, 23, 30, 0, 0, est)},
			}, nil
		},
	}

	agg := NewAggregator(visits)
	summary, err := agg.Aggregate(context.Background(), &model.Link{ID: 1})
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if summary.ClicksOverTime["2024-03-11"] != 1 {
		t.Fatalf("expected the visit bucketed on the UTC day, got %+v", summary.ClicksOverTime)
	}
}

func TestAggregator_StorageErrorSurfaces(t *testing.T) {
	boom := errors.New("connection reset")
	visits := &mockVisitRepository{
		listFn: func(ctx context.Context, linkID uint) ([]model.Visit, error) {
			return nil, boom
		},
	}

	agg := NewAggregator(visits)
	if _, err := agg.Aggregate(context.Background(), &model.Link{ID: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
