package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/infra/geoip"
	"go.uber.org/zap"
)

const remoteLookupTimeout = 5 * time.Second

// Location is the resolved geography for one scan. Zero coordinates with
// HasCoords false mean "no fix".
type Location struct {
	Country     string
	CountryCode string
	City        string
	Latitude    *float64
	Longitude   *float64
}

// LocalPlaceholder is returned for private/loopback addresses without any
// database or network lookup.
func LocalPlaceholder() Location {
	return Location{Country: "Local", CountryCode: "XX", City: "Local Network"}
}

// UnknownLocation is the degraded result when every lookup path fails.
func UnknownLocation() Location {
	return Location{Country: "Unknown", City: "Unknown"}
}

// Locator resolves an IP string to an approximate location.
type Locator interface {
	Locate(ctx context.Context, ip string) Location
}

// IPLocator chains a local GeoLite2 database with the ip-api.com fallback.
type IPLocator struct {
	logger *zap.Logger
	reader *geoip.Reader
	client *http.Client

	// remoteURL is swapped out in tests.
	remoteURL string
}

// NewIPLocator builds a locator; reader may be nil when no mmdb is deployed.
func NewIPLocator(logger *zap.Logger, reader *geoip.Reader) *IPLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPLocator{
		logger:    logger,
		reader:    reader,
		client:    &http.Client{Timeout: remoteLookupTimeout},
		remoteURL: "http://ip-api.com/json",
	}
}

// Locate resolves ip. Private and loopback ranges short-circuit to the Local
// placeholder; lookup failures degrade to Unknown.
func (l *IPLocator) Locate(ctx context.Context, ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return UnknownLocation()
	}
	if isPrivateIP(parsed) {
		return LocalPlaceholder()
	}

	if loc, ok := l.lookupLocal(parsed); ok {
		return loc
	}

	if loc, ok := l.lookupRemote(ctx, ip); ok {
		return loc
	}

	return UnknownLocation()
}

func (l *IPLocator) lookupLocal(ip net.IP) (Location, bool) {
	city, err := l.reader.Lookup(ip)
	if err != nil {
		l.logger.Debug("local geo lookup failed", zap.String("ip", ip.String()), zap.Error(err))
		return Location{}, false
	}
	if city == nil || city.Country == "" {
		return Location{}, false
	}

	loc := Location{
		Country:     city.Country,
		CountryCode: city.CountryCode,
		City:        city.City,
	}
	if loc.City == "" {
		loc.City = "Unknown"
	}
	if city.HasCoords {
		lat, lon := city.Latitude, city.Longitude
		loc.Latitude = &lat
		loc.Longitude = &lon
	}
	return loc, true
}

type remoteLookupResponse struct {
	Status      string  `json:"status"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

func (l *IPLocator) lookupRemote(ctx context.Context, ip string) (Location, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, remoteLookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet,
		fmt.Sprintf("%s/%s", l.remoteURL, ip), nil)
	if err != nil {
		return Location{}, false
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Debug("remote geo lookup failed", zap.String("ip", ip), zap.Error(err))
		return Location{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, false
	}

	var body remoteLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, false
	}
	if body.Status != "success" || body.Country == "" {
		return Location{}, false
	}

	loc := Location{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		City:        body.City,
		Latitude:    &body.Lat,
		Longitude:   &body.Lon,
	}
	if loc.City == "" {
		loc.City = "Unknown"
	}
	return loc, true
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
