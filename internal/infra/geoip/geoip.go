package geoip

import (
	"fmt"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// City is the subset of a GeoLite2 city record the platform stores per scan.
type City struct {
	Country     string
	CountryCode string
	City        string
	Latitude    float64
	Longitude   float64
	HasCoords   bool
}

// Reader wraps a GeoLite2-City mmdb database.
type Reader struct {
	db *geoip2.Reader
}

// Open loads the mmdb file at path. A missing or empty path returns a nil
// Reader without error so deployments without the database still run; every
// lookup then falls through to the remote service.
func Open(path string) (*Reader, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &Reader{db: db}, nil
}

// Lookup resolves ip to a city record. Returns nil when the database has no
// entry for the address.
func (r *Reader) Lookup(ip net.IP) (*City, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}

	rec, err := r.db.City(ip)
	if err != nil {
		return nil, fmt.Errorf("geoip: lookup %s: %w", ip, err)
	}
	if rec == nil || rec.Country.Names["en"] == "" {
		return nil, nil
	}

	return &City{
		Country:     rec.Country.Names["en"],
		CountryCode: rec.Country.IsoCode,
		City:        rec.City.Names["en"],
		Latitude:    rec.Location.Latitude,
		Longitude:   rec.Location.Longitude,
		HasCoords:   rec.Location.Latitude != 0 || rec.Location.Longitude != 0,
	}, nil
}

// Close releases the underlying database handle.
func (r *Reader) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
