package service

import (
	"testing"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
)

func TestLifecycle_ComputeExpiryDefaultTTL(t *testing.T) {
	l := NewLifecycle(0)
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := l.ComputeExpiry(createdAt); !got.Equal(createdAt.Add(30 * 24 * time.Hour)) {
		t.Fatalf("expected createdAt+30d, got %v", got)
	}
}

func TestLifecycle_ComputeExpiryCustomTTL(t *testing.T) {
	l := NewLifecycle(48 * time.Hour)
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := l.ComputeExpiry(createdAt); !got.Equal(createdAt.Add(48 * time.Hour)) {
		t.Fatalf("expected createdAt+48h, got %v", got)
	}
}

func TestLifecycle_IsExpired(t *testing.T) {
	l := NewLifecycle(0)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	link := &model.Link{ExpiresAt: l.ComputeExpiry(t0)}

	if l.IsExpired(link, t0) {
		t.Fatal("fresh link reported expired")
	}
	if l.IsExpired(link, link.ExpiresAt) {
		t.Fatal("link reported expired exactly at its deadline")
	}
	if !l.IsExpired(link, t0.AddDate(0, 0, 31)) {
		t.Fatal("link not expired a day past its TTL")
	}
}
