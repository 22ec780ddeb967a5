package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultGeocodeCacheTTL = 30 * 24 * time.Hour
	defaultHTTPTimeout     = 8 * time.Second
	defaultRegion          = "br"
)

// GoogleGeolocationProvider implements the GeolocationProvider using the Google Geocoding API
type GoogleGeolocationProvider struct {
	apiKey  string
	client  *resty.Client
	cache   providers.CacheProvider
	baseURL string
	region  string
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider. cache may be nil.
func NewGoogleGeolocationProvider(apiKey string, cache providers.CacheProvider) *GoogleGeolocationProvider {
	return NewGoogleGeolocationProviderWithOptions(apiKey, cache, googleGeocodeURL, nil)
}

// NewGoogleGeolocationProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGoogleGeolocationProviderWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, client *resty.Client) *GoogleGeolocationProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if client == nil {
		client = resty.New().SetTimeout(defaultHTTPTimeout)
	}
	return &GoogleGeolocationProvider{
		apiKey:  apiKey,
		client:  client,
		cache:   cache,
		baseURL: baseURL,
		region:  defaultRegion,
	}
}

// Geocode converts an address to coordinates. Results are cached by the
// lowercased address.
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.Coordinates, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("address is required")
	}

	cacheKey := "geo:v3:geocode:" + hashKey(strings.ToLower(trimmed))
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var coords providers.Coordinates
			if err := json.Unmarshal(cached, &coords); err == nil && (coords.Latitude != 0 || coords.Longitude != 0) {
				return &coords, nil
			}
		}
	}

	payload, err := g.doGeocodeRequest(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no geocoding results for %q", trimmed))
	}

	loc := payload.Results[0].Geometry.Location
	coords := providers.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}

	if g.cache != nil {
		if data, err := json.Marshal(coords); err == nil {
			_ = g.cache.Set(ctx, cacheKey, data, defaultGeocodeCacheTTL)
		}
	}
	return &coords, nil
}

func (g *GoogleGeolocationProvider) doGeocodeRequest(ctx context.Context, address string) (*googleGeocodeResponse, error) {
	if g.apiKey == "" {
		return nil, apperrors.NewExternalError("google maps api key is required", nil)
	}

	var payload googleGeocodeResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": address,
			"region":  g.region,
			"key":     g.apiKey,
		}).
		SetResult(&payload).
		Get(g.baseURL)
	if err != nil {
		return nil, apperrors.NewExternalError("geocode request failed", err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.NewExternalError(fmt.Sprintf("geocode request returned status %d", resp.StatusCode()), nil)
	}

	switch payload.Status {
	case "OK":
		return &payload, nil
	case "ZERO_RESULTS":
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no geocoding results for %q", address))
	}
	if payload.ErrorMessage != "" {
		return nil, apperrors.NewExternalError(fmt.Sprintf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage), nil)
	}
	return nil, apperrors.NewExternalError(fmt.Sprintf("geocode request failed: %s", payload.Status), nil)
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}
