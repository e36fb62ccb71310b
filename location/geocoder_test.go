package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeocodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FBI-Case-Management-System", r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "Boise, ID, USA", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat": "43.6150", "lon": "-116.2023"}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL)
	coords := g.Geocode(context.Background(), "Boise, ID, USA")

	assert.NotNil(t, coords)
	assert.InDelta(t, 43.6150, coords.Lat, 1e-9)
	assert.InDelta(t, -116.2023, coords.Lng, 1e-9)
}

func TestGeocodeEmptyResultList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL)
	assert.Nil(t, g.Geocode(context.Background(), "Nowhere"))
}

func TestGeocodeNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL)
	assert.Nil(t, g.Geocode(context.Background(), "Boise"))
}

func TestGeocodeNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	g := NewNominatimGeocoder(srv.URL)
	assert.Nil(t, g.Geocode(context.Background(), "Boise"))
}

func TestGeocodeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL)
	assert.Nil(t, g.Geocode(context.Background(), "Boise"))
}

func TestGeocodeUnparseableCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "not-a-number", "lon": "0"}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL)
	assert.Nil(t, g.Geocode(context.Background(), "Boise"))
}
