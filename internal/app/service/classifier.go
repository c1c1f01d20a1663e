package service

import (
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/mileusna/useragent"
)

// GeoOracle resolves a source address to a best-effort location.
// Implementations are pure lookups: no match means ok == false, never
// an error surfaced to classification.
type GeoOracle interface {
	Lookup(sourceAddress string) (country, city string, ok bool)
}

// Classifier derives a structured visit from raw request context. It
// is total: every input yields a visit, never an error. Unrecognized
// clients default to desktop (a business assumption, not a parse
// failure); only positively non-browser clients are labeled unknown.
type Classifier struct {
	geo GeoOracle
}

// NewClassifier returns a Classifier using the given geo oracle, which
// may be nil when no geo database is configured.
func NewClassifier(geo GeoOracle) *Classifier {
	return &Classifier{geo: geo}
}

// Classify builds a visit from the user agent and source address,
// stamped at call time.
func (c *Classifier) Classify(userAgent, sourceAddress string) model.Visit {
	visit := model.Visit{
		Timestamp:     time.Now().UTC(),
		DeviceClass:   model.DeviceDesktop,
		BrowserFamily: model.BrowserUnknown,
		SourceAddress: sourceAddress,
	}

	ua := useragent.Parse(userAgent)
	switch {
	case ua.Mobile:
		visit.DeviceClass = model.DeviceMobile
	case ua.Tablet:
		visit.DeviceClass = model.DeviceTablet
	case ua.Bot:
		visit.DeviceClass = model.DeviceUnknown
	}
	if ua.Name != "" {
		visit.BrowserFamily = ua.Name
	}

	if c.geo != nil && sourceAddress != "" {
		if country, city, ok := c.geo.Lookup(sourceAddress); ok {
			if country != "" {
				visit.GeoCountry = &country
			}
			if city != "" {
				visit.GeoCity = &city
			}
		}
	}

	return visit
}
