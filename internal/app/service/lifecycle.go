package service

import (
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
)

// DefaultLinkTTL is how long a link stays resolvable after creation.
const DefaultLinkTTL = 30 * 24 * time.Hour

// Lifecycle stamps expiry at creation and answers the lazy check at
// resolve time. There is no background sweep: a link past its TTL
// stays active in storage until the next resolution attempt.
type Lifecycle struct {
	ttl time.Duration
}

// NewLifecycle returns a Lifecycle with the given TTL, falling back to
// DefaultLinkTTL for non-positive values.
func NewLifecycle(ttl time.Duration) Lifecycle {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return Lifecycle{ttl: ttl}
}

// ComputeExpiry returns the expiry timestamp for a link created at the
// given instant.
func (l Lifecycle) ComputeExpiry(createdAt time.Time) time.Time {
	return createdAt.Add(l.ttl)
}

// IsExpired reports whether the link's TTL has elapsed at now.
func (l Lifecycle) IsExpired(link *model.Link, now time.Time) bool {
	return now.After(link.ExpiresAt)
}
