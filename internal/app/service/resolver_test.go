package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
)

type recordedVisit struct {
	code, addr, ua string
}

type recordingSink struct {
	events chan recordedVisit
	err    error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan recordedVisit, 8)}
}

func (s *recordingSink) Record(shortCode, sourceAddress, userAgent string) error {
	s.events <- recordedVisit{code: shortCode, addr: sourceAddress, ua: userAgent}
	return s.err
}

func (s *recordingSink) waitOne(t *testing.T) recordedVisit {
	t.Helper()
	select {
	case ev := <-s.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected a visit to be recorded")
		return recordedVisit{}
	}
}

func (s *recordingSink) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-s.events:
		t.Fatalf("unexpected visit recorded: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeLinkCache mirrors LinkCache's semantics in memory: Invalidate
// leaves a tombstone and Set never overwrites a present key, so a Set
// racing behind an Invalidate is dropped.
type fakeLinkCache struct {
	mu      sync.Mutex
	entries map[string]cachedLink
	dead    map[string]bool
}

func newFakeLinkCache() *fakeLinkCache {
	return &fakeLinkCache{
		entries: make(map[string]cachedLink),
		dead:    make(map[string]bool),
	}
}

func (f *fakeLinkCache) Get(ctx context.Context, code string) *cachedLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[code] {
		return nil
	}
	if entry, ok := f.entries[code]; ok {
		return &entry
	}
	return nil
}

func (f *fakeLinkCache) Set(ctx context.Context, code string, entry cachedLink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[code] {
		return
	}
	if _, ok := f.entries[code]; ok {
		return
	}
	f.entries[code] = entry
}

func (f *fakeLinkCache) Invalidate(ctx context.Context, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, code)
	f.dead[code] = true
}

func newTestResolver(repo repository.LinkRepository, sink VisitSink) *Resolver {
	return NewResolver(ResolverDeps{
		Links:     repo,
		Lifecycle: NewLifecycle(0),
		Sink:      sink,
	})
}

func TestResolver_Hit_RecordsVisit(t *testing.T) {
	repo := &mockLinkRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{
				ID:        1,
				ShortCode: code,
				TargetURL: "https://example.com/x",
				IsActive:  true,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	sink := newRecordingSink()

	r := newTestResolver(repo, sink)
	res, err := r.Resolve(context.Background(), "abc123", VisitContext{
		UserAgent:     "Mozilla/5.0",
		SourceAddress: "203.0.113.9",
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("expected HIT, got %v", res.Outcome)
	}
	if res.TargetURL != "https://example.com/x" {
		t.Fatalf("unexpected target %q", res.TargetURL)
	}

	ev := sink.waitOne(t)
	if ev.code != "abc123" || ev.addr != "203.0.113.9" || ev.ua != "Mozilla/5.0" {
		t.Fatalf("unexpected recorded visit: %+v", ev)
	}
	sink.expectNone(t)
}

func TestResolver_NotFound(t *testing.T) {
	sink := newRecordingSink()
	r := newTestResolver(&mockLinkRepository{}, sink)

	res, err := r.Resolve(context.Background(), "missing", VisitContext{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", res.Outcome)
	}
	sink.expectNone(t)
}

func TestResolver_ExpiredFlipsActiveOnce(t *testing.T) {
	active := true
	var deactivated []uint
	link := &model.Link{
		ID:        42,
		ShortCode: "old",
		TargetURL: "https://example.com",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	repo := &mockLinkRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.Link, error) {
			if !active {
				return nil, repository.ErrLinkNotFound
			}
			return link, nil
		},
		deactivateFn: func(ctx context.Context, linkID uint) error {
			deactivated = append(deactivated, linkID)
			active = false
			return nil
		},
	}
	sink := newRecordingSink()
	r := newTestResolver(repo, sink)

	res, err := r.Resolve(context.Background(), "old", VisitContext{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Outcome != OutcomeExpired {
		t.Fatalf("expected EXPIRED, got %v", res.Outcome)
	}
	if len(deactivated) != 1 || deactivated[0] != 42 {
		t.Fatalf("expected one deactivation of link 42, got %v", deactivated)
	}

	// The transition happened; the code now reads as gone.
	res, err = r.Resolve(context.Background(), "old", VisitContext{})
	if err != nil {
		t.Fatalf("second Resolve error: %v", err)
	}
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("expected NOT_FOUND after expiry, got %v", res.Outcome)
	}
	sink.expectNone(t)
}

func TestResolver_StorageErrorIsNotNotFound(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &mockLinkRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.Link, error) {
			return nil, boom
		},
	}
	sink := newRecordingSink()
	r := newTestResolver(repo, sink)

	_, err := r.Resolve(context.Background(), "abc123", VisitContext{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the storage error to surface, got %v", err)
	}
	sink.expectNone(t)
}

func TestResolver_FilterShortCircuitsMisses(t *testing.T) {
	repo := &mockLinkRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.Link, error) {
			t.Fatal("storage should not be consulted on a filter miss")
			return nil, nil
		},
	}
	filter := NewCodeFilter(100)
	filter.Seed([]string{"known1", "known2"})

	r := NewResolver(ResolverDeps{
		Links:     repo,
		Lifecycle: NewLifecycle(0),
		Filter:    filter,
	})

	res, err := r.Resolve(context.Background(), "definitely-absent", VisitContext{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", res.Outcome)
	}
}

func TestResolver_CacheHitSkipsStorage(t *testing.T) {
	repo := &mockLinkRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.Link, error) {
			t.Fatal("storage should not be consulted on a cache hit")
			return nil, nil
		},
	}
	cache := newFakeLinkCache()
	cache.Set(context.Background(), "abc123", cachedLink{
		ID:        1,
		TargetURL: "https://example.com/x",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	r := NewResolver(ResolverDeps{
		Links:     repo,
		Lifecycle: NewLifecycle(0),
		Cache:     cache,
	})

	res, err := r.Resolve(context.Background(), "abc123", VisitContext{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Outcome != OutcomeHit || res.TargetURL != "https://example.com/x" {
		t.Fatalf("expected cached HIT, got %+v", res)
	}
}

func TestResolver_DeactivationDuringResolveIsNotRecached(t *testing.T) {
	cache := newFakeLinkCache()
	active := true
	repo := &mockLinkRepository{}
	repo.findActiveFn = func(ctx context.Context, code string) (*model.Link, error) {
		if !active {
			return nil, repository.ErrLinkNotFound
		}
		link := &model.Link{
			ID:        1,
			ShortCode: code,
			TargetURL: "https://example.com/x",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		// The owner's deactivation commits after this read returned
		// the link as active but before the resolver caches it.
		active = false
		cache.Invalidate(ctx, code)
		return link, nil
	}

	r := NewResolver(ResolverDeps{
		Links:     repo,
		Lifecycle: NewLifecycle(0),
		Cache:     cache,
	})

	// The in-flight resolution still reads as a HIT; its read began
	// before the toggle. The stale entry must not land in the cache.
	res, err := r.Resolve(context.Background(), "abc123", VisitContext{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("expected HIT for the in-flight resolution, got %v", res.Outcome)
	}
	if cache.Get(context.Background(), "abc123") != nil {
		t.Fatal("deactivated link was re-cached past its invalidation")
	}

	res, err = r.Resolve(context.Background(), "abc123", VisitContext{})
	if err != nil {
		t.Fatalf("second Resolve error: %v", err)
	}
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("expected NOT_FOUND after deactivation, got %v", res.Outcome)
	}
}

func TestResolver_SinkFailureDoesNotAffectHit(t *testing.T) {
	repo := &mockLinkRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{
				ID:        1,
				ShortCode: code,
				TargetURL: "https://example.com",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	sink := newRecordingSink()
	sink.err = errors.New("stream unavailable")
	r := newTestResolver(repo, sink)

	res, err := r.Resolve(context.Background(), "abc123", VisitContext{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Fatalf("expected HIT despite sink failure, got %v", res.Outcome)
	}
	sink.waitOne(t)
}
