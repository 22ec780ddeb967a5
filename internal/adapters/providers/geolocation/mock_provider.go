package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
	"github.com/mBrond/chat-medicamentos/pkg/utils"
)

// MockGeolocationProvider resolves a fixed set of neighbourhoods of Santa
// Maria (RS). Unknown addresses are NOT_FOUND.
type MockGeolocationProvider struct {
	places map[string]providers.Coordinates
}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() *MockGeolocationProvider {
	return &MockGeolocationProvider{
		places: map[string]providers.Coordinates{
			"camobi":                   {Latitude: -29.7069, Longitude: -53.7153},
			"tancredo neves":           {Latitude: -29.7030, Longitude: -53.8530},
			"floriano rocha":           {Latitude: -29.6700, Longitude: -53.8090},
			"kennedy":                  {Latitude: -29.6835, Longitude: -53.8305},
			"sao francisco":            {Latitude: -29.6760, Longitude: -53.7930},
			"estacao dos ventos":       {Latitude: -29.7060, Longitude: -53.8200},
			"centro":                   {Latitude: -29.6868, Longitude: -53.8149},
			"nossa senhora medianeira": {Latitude: -29.6990, Longitude: -53.8040},
		},
	}
}

// Geocode returns the coordinates of the first known place named in address
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.Coordinates, error) {
	folded := utils.StripAccents(strings.ToLower(address))
	best := ""
	for place := range m.places {
		// longest match wins
		if strings.Contains(folded, place) && len(place) > len(best) {
			best = place
		}
	}
	if best == "" {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no mock coordinates for %q", address))
	}
	coords := m.places[best]
	return &coords, nil
}
