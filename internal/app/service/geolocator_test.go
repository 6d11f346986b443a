package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLocator_PrivateRangesShortCircuit(t *testing.T) {
	remoteCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		fmt.Fprint(w, `{"status":"success","country":"Germany","countryCode":"DE","city":"Berlin","lat":52.5,"lon":13.4}`)
	}))
	defer server.Close()

	locator := NewIPLocator(nil, nil)
	locator.remoteURL = server.URL

	for _, ip := range []string{
		"127.0.0.1",
		"10.0.0.5",
		"172.16.1.1",
		"192.168.1.1",
		"169.254.0.1",
		"::1",
		"0.0.0.0",
	} {
		loc := locator.Locate(context.Background(), ip)
		assert.Equal(t, LocalPlaceholder(), loc, "ip %s must resolve locally", ip)
	}

	assert.Zero(t, remoteCalls, "private ranges must never reach the remote service")
}

func TestIPLocator_RemoteFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","country":"Germany","countryCode":"DE","city":"Berlin","lat":52.5,"lon":13.4}`)
	}))
	defer server.Close()

	locator := NewIPLocator(nil, nil)
	locator.remoteURL = server.URL

	loc := locator.Locate(context.Background(), "203.0.113.10")
	assert.Equal(t, "Germany", loc.Country)
	assert.Equal(t, "DE", loc.CountryCode)
	assert.Equal(t, "Berlin", loc.City)
	require.NotNil(t, loc.Latitude)
	assert.InDelta(t, 52.5, *loc.Latitude, 0.001)
}

func TestIPLocator_RemoteFailureDegradesToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"fail"}`)
	}))
	defer server.Close()

	locator := NewIPLocator(nil, nil)
	locator.remoteURL = server.URL

	loc := locator.Locate(context.Background(), "203.0.113.10")
	assert.Equal(t, UnknownLocation(), loc)
}

func TestIPLocator_UnparseableIP(t *testing.T) {
	locator := NewIPLocator(nil, nil)
	loc := locator.Locate(context.Background(), "not-an-ip")
	assert.Equal(t, UnknownLocation(), loc)
}
