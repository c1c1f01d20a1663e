package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
)

// ErrCreationFailed signals that short-code generation kept colliding
// past the retry budget.
var ErrCreationFailed = errors.New("failed to allocate a unique short code")

// DefaultCreateRetries bounds collision retries at creation.
const DefaultCreateRetries = 5

// LinkService defines owner-scoped operations on links. Every method
// that names an owner surfaces a mismatch as ErrLinkNotFound, never as
// a distinct authorization error.
type LinkService interface {
	CreateLink(ctx context.Context, ownerID uint, targetURL string) (*model.Link, error)
	ListLinks(ctx context.Context, ownerID uint) ([]model.Link, error)
	GetAnalytics(ctx context.Context, ownerID uint, code string) (*AnalyticsSummary, error)
	SetActive(ctx context.Context, ownerID uint, code string, active bool) (*model.Link, error)
	DeleteLink(ctx context.Context, ownerID uint, code string) error
}

type linkService struct {
	repo       repository.LinkRepository
	aggregator *Aggregator
	lifecycle  Lifecycle
	filter     *CodeFilter
	cache      *LinkCache
	codeLength int
	maxRetries int
}

// LinkServiceDeps groups the link service's collaborators.
type LinkServiceDeps struct {
	Links      repository.LinkRepository
	Aggregator *Aggregator
	Lifecycle  Lifecycle
	Filter     *CodeFilter
	Cache      *LinkCache
	CodeLength int
	MaxRetries int
}

// NewLinkService returns a service implementation backed by the given
// repository and collaborators.
func NewLinkService(deps LinkServiceDeps) LinkService {
	codeLength := deps.CodeLength
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	maxRetries := deps.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultCreateRetries
	}
	return &linkService{
		repo:       deps.Links,
		aggregator: deps.Aggregator,
		lifecycle:  deps.Lifecycle,
		filter:     deps.Filter,
		cache:      deps.Cache,
		codeLength: codeLength,
		maxRetries: maxRetries,
	}
}

// CreateLink allocates a short code for the target and persists the
// link with its expiry stamped from the creation instant. Collisions
// retry with a fresh code up to the retry budget.
func (s *linkService) CreateLink(ctx context.Context, ownerID uint, targetURL string) (*model.Link, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		code, err := NewShortCode(s.codeLength)
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}

		now := time.Now().UTC()
		link := &model.Link{
			ShortCode: code,
			TargetURL: targetURL,
			OwnerID:   ownerID,
			IsActive:  true,
			ExpiresAt: s.lifecycle.ComputeExpiry(now),
			CreatedAt: now,
		}

		err = s.repo.Create(ctx, link)
		if errors.Is(err, repository.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create link: %w", err)
		}

		if s.filter != nil {
			s.filter.Add(code)
		}
		return link, nil
	}
	return nil, ErrCreationFailed
}

func (s *linkService) ListLinks(ctx context.Context, ownerID uint) ([]model.Link, error) {
	links, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// GetAnalytics authorizes the read at this boundary, then hands the
// record to the aggregator. A link owned by someone else is
// indistinguishable from a missing one.
func (s *linkService) GetAnalytics(ctx context.Context, ownerID uint, code string) (*AnalyticsSummary, error) {
	link, err := s.repo.FindByCodeAndOwner(ctx, code, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	return s.aggregator.Aggregate(ctx, link)
}

func (s *linkService) SetActive(ctx context.Context, ownerID uint, code string, active bool) (*model.Link, error) {
	link, err := s.repo.SetActive(ctx, code, ownerID, active)
	if err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	s.cache.Invalidate(ctx, code)
	return link, nil
}

func (s *linkService) DeleteLink(ctx context.Context, ownerID uint, code string) error {
	if err := s.repo.Delete(ctx, code, ownerID); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	s.cache.Invalidate(ctx, code)
	return nil
}
