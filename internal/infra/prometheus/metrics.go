package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedirectsTotal counts redirect resolutions by outcome
	// (hit, not_found, expired, error).
	RedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "url_shortener_redirects_total",
		Help: "Redirect resolutions by outcome.",
	}, []string{"outcome"})

	// LinksCreated counts successfully created short links.
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "url_shortener_links_created_total",
		Help: "Short links created.",
	})

	// VisitsRecorded counts visits durably appended to the log.
	VisitsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "url_shortener_visits_recorded_total",
		Help: "Visit records appended to the visit log.",
	})
)
