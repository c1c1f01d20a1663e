package repository

import (
	"context"
	"fmt"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// VisitRepository defines the data access contract for the visit log.
type VisitRepository interface {
	// AppendAtomic inserts the visit and increments the owning link's
	// total_clicks in one transaction. Either both land or neither does.
	AppendAtomic(ctx context.Context, linkID uint, visit *model.Visit) error
	// ListByLink reads the full visit log for one link in insertion
	// order. A single call is one point-in-time read; aggregation folds
	// over its result and never re-reads mid-pass.
	ListByLink(ctx context.Context, linkID uint) ([]model.Visit, error)
}

type visitRepository struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// NewVisitRepository returns a VisitRepository writing through GORM and
// serving the aggregation scan from the pgx pool.
func NewVisitRepository(db *gorm.DB, pool *pgxpool.Pool) VisitRepository {
	return &visitRepository{db: db, pool: pool}
}

func (r *visitRepository) AppendAtomic(ctx context.Context, linkID uint, visit *model.Visit) error {
	visit.LinkID = linkID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(visit).Error; err != nil {
			return err
		}
		result := tx.Model(&model.Link{}).
			Where("id = ?", linkID).
			UpdateColumn("total_clicks", gorm.Expr("total_clicks + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLinkNotFound
		}
		return nil
	})
}

const listVisitsQuery = `
SELECT timestamp, device_class, browser_family, source_address, geo_country, geo_city
FROM visits
WHERE link_id = $1
ORDER BY timestamp, id`

func (r *visitRepository) ListByLink(ctx context.Context, linkID uint) ([]model.Visit, error) {
	rows, err := r.pool.Query(ctx, listVisitsQuery, linkID)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	visits := make([]model.Visit, 0)
	for rows.Next() {
		v := model.Visit{LinkID: linkID}
		if err := rows.Scan(&v.Timestamp, &v.DeviceClass, &v.BrowserFamily, &v.SourceAddress, &v.GeoCountry, &v.GeoCity); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return visits, nil
}
