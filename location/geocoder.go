package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/evidware/case-api/models"
)

// Geocoder resolves a free-text place name to coordinates. Implementations
// return nil when no result can be found; they never return an error.
type Geocoder interface {
	Geocode(ctx context.Context, place string) *models.Coordinates
}

// NominatimGeocoder issues single-result lookups against the public
// OpenStreetMap Nominatim search endpoint. Nominatim requires an identifying
// User-Agent on every request.
type NominatimGeocoder struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

// NewNominatimGeocoder returns a geocoder against the given base URL. The
// HTTP client carries no timeout; callers bound lookups via ctx if at all.
func NewNominatimGeocoder(baseURL string) *NominatimGeocoder {
	return &NominatimGeocoder{
		Client:    &http.Client{},
		BaseURL:   baseURL,
		UserAgent: "FBI-Case-Management-System",
	}
}

// Geocode performs one HTTP GET limited to a single result. Any non-success
// status, empty result list, or transport failure yields nil.
func (g *NominatimGeocoder) Geocode(ctx context.Context, place string) *models.Coordinates {
	endpoint := fmt.Sprintf("%s/search?format=json&q=%s&limit=1", g.BaseURL, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		zap.S().Warnw("failed to build geocoding request", "place", place, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := g.Client.Do(req)
	if err != nil {
		zap.S().Warnw("geocoding request failed", "place", place, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zap.S().Warnw("geocoding returned non-200", "place", place, "status", resp.StatusCode)
		return nil
	}

	// Nominatim serves lat/lon as strings
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		zap.S().Warnw("failed to decode geocoding response", "place", place, "error", err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil
	}
	return &models.Coordinates{Lat: lat, Lng: lng}
}
