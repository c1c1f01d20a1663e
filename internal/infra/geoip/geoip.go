package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Resolver answers best-effort geo lookups from a local MaxMind
// database. A nil *Resolver is a valid oracle that never matches,
// which is how deployments without a database run.
type Resolver struct {
	db *geoip2.Reader
}

// Open loads the MaxMind city database at the given path.
func Open(path string) (*Resolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &Resolver{db: db}, nil
}

// Lookup resolves a source address to country and city. Any parse or
// database failure reads as "no match"; the oracle never errors out
// toward classification.
func (r *Resolver) Lookup(sourceAddress string) (country, city string, ok bool) {
	if r == nil || r.db == nil {
		return "", "", false
	}

	ip := net.ParseIP(sourceAddress)
	if ip == nil {
		return "", "", false
	}

	record, err := r.db.City(ip)
	if err != nil {
		return "", "", false
	}

	country = record.Country.Names["en"]
	city = record.City.Names["en"]
	if country == "" && city == "" {
		return "", "", false
	}
	return country, city, true
}

// Close releases the underlying database.
func (r *Resolver) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
