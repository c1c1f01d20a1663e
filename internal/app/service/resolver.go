package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
	"go.uber.org/zap"
)

// Outcome is the resolver's verdict for one short code.
type Outcome int

const (
	// OutcomeHit carries a live target to redirect to.
	OutcomeHit Outcome = iota
	// OutcomeNotFound covers absent codes and inactive links alike.
	OutcomeNotFound
	// OutcomeExpired means the TTL elapsed; the link has been
	// deactivated as a side effect of this resolution.
	OutcomeExpired
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Resolution is the result of resolving a short code. TargetURL is set
// only on OutcomeHit.
type Resolution struct {
	Outcome   Outcome
	TargetURL string
}

// VisitContext is the ambient request context captured for visit
// recording. It plays no part in resolution itself.
type VisitContext struct {
	UserAgent     string
	SourceAddress string
}

// VisitSink accepts raw visit events for asynchronous recording.
type VisitSink interface {
	Record(shortCode, sourceAddress, userAgent string) error
}

// resolveCache is the resolver-facing cache contract. Invalidate must
// leave a tombstone behind that a concurrent Set cannot overwrite;
// LinkCache implements this via SetNX against a tombstone value.
type resolveCache interface {
	Get(ctx context.Context, code string) *cachedLink
	Set(ctx context.Context, code string, entry cachedLink)
	Invalidate(ctx context.Context, code string)
}

// Resolver decides HIT / EXPIRED / NOT_FOUND for a short code and
// hands the visit off for recording without ever waiting on it.
type Resolver struct {
	links     repository.LinkRepository
	lifecycle Lifecycle
	filter    *CodeFilter
	cache     resolveCache
	sink      VisitSink
	logger    *zap.Logger
	now       func() time.Time
}

// ResolverDeps groups the resolver's collaborators. Filter, Cache and
// Sink are optional; resolution works without them, just slower and
// without recording.
type ResolverDeps struct {
	Links     repository.LinkRepository
	Lifecycle Lifecycle
	Filter    *CodeFilter
	Cache     resolveCache
	Sink      VisitSink
	Logger    *zap.Logger
}

// NewResolver builds a resolver from its dependencies.
func NewResolver(deps ResolverDeps) *Resolver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		links:     deps.Links,
		lifecycle: deps.Lifecycle,
		filter:    deps.Filter,
		cache:     deps.Cache,
		sink:      deps.Sink,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve looks up the short code and returns the redirect verdict.
// On a HIT the visit is recorded fire-and-forget: the returned
// resolution never waits on the sink, and sink failures are logged,
// not surfaced. A storage failure on the lookup path is returned as an
// error so callers can tell "does not exist" from "could not check".
func (r *Resolver) Resolve(ctx context.Context, code string, visit VisitContext) (Resolution, error) {
	if r.filter != nil && !r.filter.MayContain(code) {
		return Resolution{Outcome: OutcomeNotFound}, nil
	}

	if r.cache != nil {
		if entry := r.cache.Get(ctx, code); entry != nil {
			if r.now().After(entry.ExpiresAt) {
				return r.expire(ctx, code, entry.ID), nil
			}
			r.record(code, visit)
			return Resolution{Outcome: OutcomeHit, TargetURL: entry.TargetURL}, nil
		}
	}

	link, err := r.links.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return Resolution{Outcome: OutcomeNotFound}, nil
		}
		return Resolution{}, fmt.Errorf("resolve %q: %w", code, err)
	}

	if r.lifecycle.IsExpired(link, r.now()) {
		return r.expire(ctx, code, link.ID), nil
	}

	if r.cache != nil {
		r.cache.Set(ctx, code, cachedLink{
			ID:        link.ID,
			TargetURL: link.TargetURL,
			ExpiresAt: link.ExpiresAt,
		})
	}
	r.record(code, visit)
	return Resolution{Outcome: OutcomeHit, TargetURL: link.TargetURL}, nil
}

// expire persists the lazy deactivation. A failed flip is logged and
// the EXPIRED verdict stands: the flip is idempotent and the next
// resolution retries it.
func (r *Resolver) expire(ctx context.Context, code string, linkID uint) Resolution {
	if err := r.links.Deactivate(ctx, linkID); err != nil {
		r.logger.Error("failed to deactivate expired link",
			zap.String("code", code), zap.Uint("link_id", linkID), zap.Error(err))
	}
	if r.cache != nil {
		r.cache.Invalidate(ctx, code)
	}
	r.logger.Info("link expired lazily", zap.String("code", code))
	return Resolution{Outcome: OutcomeExpired}
}

func (r *Resolver) record(code string, visit VisitContext) {
	if r.sink == nil {
		return
	}
	go func() {
		if err := r.sink.Record(code, visit.SourceAddress, visit.UserAgent); err != nil {
			r.logger.Error("failed to record visit", zap.String("code", code), zap.Error(err))
		}
	}()
}
