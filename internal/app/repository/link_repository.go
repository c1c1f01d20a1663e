package repository

import (
	"context"
	"errors"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the requested short link does not
	// exist. Owner-mismatch lookups surface the same error so callers
	// cannot distinguish "not yours" from "not there".
	ErrLinkNotFound = errors.New("link not found")
	// ErrDuplicateCode signals a short-code collision at creation.
	ErrDuplicateCode = errors.New("short code already exists")
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	FindActiveByCode(ctx context.Context, code string) (*model.Link, error)
	FindByCode(ctx context.Context, code string) (*model.Link, error)
	FindByCodeAndOwner(ctx context.Context, code string, ownerID uint) (*model.Link, error)
	SetActive(ctx context.Context, code string, ownerID uint, active bool) (*model.Link, error)
	Deactivate(ctx context.Context, linkID uint) error
	Delete(ctx context.Context, code string, ownerID uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error)
	ListCodes(ctx context.Context) ([]string, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *linkRepository) FindActiveByCode(ctx context.Context, code string) (*model.Link, error) {
	return r.findOne(ctx, "short_code = ? AND is_active = ?", code, true)
}

func (r *linkRepository) FindByCode(ctx context.Context, code string) (*model.Link, error) {
	return r.findOne(ctx, "short_code = ?", code)
}

func (r *linkRepository) FindByCodeAndOwner(ctx context.Context, code string, ownerID uint) (*model.Link, error) {
	return r.findOne(ctx, "short_code = ? AND owner_id = ?", code, ownerID)
}

func (r *linkRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where(query, args...).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) SetActive(ctx context.Context, code string, ownerID uint, active bool) (*model.Link, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("short_code = ? AND owner_id = ?", code, ownerID).
		Update("is_active", active)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}
	return r.FindByCodeAndOwner(ctx, code, ownerID)
}

// Deactivate flips is_active off without an owner filter. It backs the
// lazy-expiration path, which acts on behalf of no principal.
func (r *linkRepository) Deactivate(ctx context.Context, linkID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ?", linkID).
		Update("is_active", false).Error
}

func (r *linkRepository) Delete(ctx context.Context, code string, ownerID uint) error {
	result := r.db.WithContext(ctx).
		Where("short_code = ? AND owner_id = ?", code, ownerID).
		Delete(&model.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ListCodes returns every short code in storage. Used once at startup
// to seed the in-memory code filter.
func (r *linkRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("short_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
