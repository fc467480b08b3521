package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultGeocodeCacheTTL = 30 * 24 * time.Hour
	defaultHTTPTimeout     = 8 * time.Second

	// unplaceable addresses are retried sooner in case the geocoder learns them
	negativeGeocodeCacheTTL = time.Hour
)

// ErrNoResults is returned when the geocoder cannot place an address
var ErrNoResults = errors.New("no results for address")

// GoogleGeolocationProvider implements the GeolocationProvider using the Google Geocoding API.
type GoogleGeolocationProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider.
// cache may be nil.
func NewGoogleGeolocationProvider(apiKey string, cache providers.CacheProvider) providers.GeolocationProvider {
	return NewGoogleGeolocationProviderWithOptions(apiKey, cache, googleGeocodeURL, nil)
}

// NewGoogleGeolocationProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGoogleGeolocationProviderWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) providers.GeolocationProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleGeolocationProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
	}
}

// Geocode converts free-form address text to a formatted address and coordinates.
// Answers, including ErrNoResults, are cached per normalized address.
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, address string) (addr *providers.GeocodedAddress, err error) {
	ctx, span := observability.StartSpan(ctx, "GoogleGeolocation.Geocode")
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}

	key := geocodeCacheKey(trimmed)
	if entry, ok := g.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("geocode.cache_hit", true))
		if entry.NotFound {
			return nil, ErrNoResults
		}
		return entry.Address, nil
	}

	resp, err := g.doGeocodeRequest(ctx, url.Values{"address": []string{trimmed}})
	if errors.Is(err, ErrNoResults) || (err == nil && len(resp.Results) == 0) {
		g.remember(ctx, key, geocodeEntry{NotFound: true}, negativeGeocodeCacheTTL)
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, err
	}

	result := resp.Results[0]
	addr = &providers.GeocodedAddress{
		FormattedAddress: result.FormattedAddress,
		Coordinates: providers.Coordinates{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		},
	}
	g.remember(ctx, key, geocodeEntry{Address: addr}, defaultGeocodeCacheTTL)
	return addr, nil
}

// geocodeEntry is the cached answer for one address
type geocodeEntry struct {
	Address  *providers.GeocodedAddress `json:"address,omitempty"`
	NotFound bool                       `json:"not_found,omitempty"`
}

func geocodeCacheKey(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(address)))
	return "geo:geocode:" + hex.EncodeToString(sum[:])
}

func (g *GoogleGeolocationProvider) lookup(ctx context.Context, key string) (geocodeEntry, bool) {
	var entry geocodeEntry
	if g.cache == nil {
		return entry, false
	}
	cached, err := g.cache.Get(ctx, key)
	if err != nil || len(cached) == 0 {
		return entry, false
	}
	if err := json.Unmarshal(cached, &entry); err != nil || (entry.Address == nil && !entry.NotFound) {
		return entry, false
	}
	return entry, true
}

func (g *GoogleGeolocationProvider) remember(ctx context.Context, key string, entry geocodeEntry, ttl time.Duration) {
	if g.cache == nil {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, payload, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to cache geocode result")
	}
}

func (g *GoogleGeolocationProvider) doGeocodeRequest(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	switch payload.Status {
	case "OK":
		return &payload, nil
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	}
	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
	}
	return nil, fmt.Errorf("geocode request failed: %s", payload.Status)
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
