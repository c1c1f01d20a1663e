package model

import "time"

// Device classes recorded on a visit. Desktop is the business default
// for clients the classifier cannot place; unknown is reserved for
// clients that are positively not a browser (bots, crawlers).
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// BrowserUnknown labels visits whose user agent yields no browser family.
const BrowserUnknown = "unknown"

// Visit is one recorded redirect with its classification metadata.
// Rows are append-only: a visit is never updated after insertion.
// GeoCountry and GeoCity stay nil when the geo oracle has no match,
// which is distinct from the "unknown" classification labels above.
type Visit struct {
	ID            uint      `db:"id" gorm:"primaryKey"`
	LinkID        uint      `db:"link_id" gorm:"index;not null"`
	Timestamp     time.Time `db:"timestamp" gorm:"index;not null"`
	DeviceClass   string    `db:"device_class" gorm:"size:16;not null"`
	BrowserFamily string    `db:"browser_family" gorm:"size:64;not null"`
	SourceAddress string    `db:"source_address" gorm:"size:64"`
	GeoCountry    *string   `db:"geo_country" gorm:"size:64"`
	GeoCity       *string   `db:"geo_city" gorm:"size:128"`
}

// VisitEvent is the raw redirect event published to JetStream before
// classification. It carries only what the redirect path already has
// in hand so publishing never waits on parsing or the geo oracle.
type VisitEvent struct {
	ID            string    `json:"id"`
	ShortCode     string    `json:"short_code"`
	SourceAddress string    `json:"source_address"`
	UserAgent     string    `json:"user_agent"`
	Timestamp     time.Time `json:"timestamp"`
}

const (
	VisitStreamName     = "VISITS"
	VisitStreamSubject  = "visits.events"
	VisitConsumerName   = "visit-recorder"
	VisitStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
