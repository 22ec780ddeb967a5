package services

import (
	"context"
	"sort"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

// DefaultMarkerAddress is used when a directory entry has no street address
const DefaultMarkerAddress = "Endereço não informado"

// MessageNoLocatedFacilities is shown when no facility could be placed on the map
const MessageNoLocatedFacilities = "Nenhum local encontrado com coordenadas"

// MapBuilder turns facility names into map markers
type MapBuilder struct {
	directory providers.FacilityDirectory
}

// NewMapBuilder creates a map builder over a facility directory
func NewMapBuilder(directory providers.FacilityDirectory) *MapBuilder {
	return &MapBuilder{directory: directory}
}

// Build looks up every facility and returns MapData with markers sorted by
// name. Facilities without a geo entry are dropped; when all are dropped the
// result is NoLocatedFacilities.
func (b *MapBuilder) Build(ctx context.Context, facilities []string) entities.LocationResult {
	logger := observability.LoggerFromContext(ctx)

	markers := make([]entities.MapMarker, 0, len(facilities))
	for _, name := range facilities {
		loc, err := b.directory.Lookup(ctx, name)
		if err != nil {
			if apperrors.TypeOf(err) != apperrors.ErrorTypeNotFound {
				logger.Warn().Err(err).Str("facility", name).Msg("facility lookup failed")
			}
			continue
		}

		address := loc.Address
		if address == "" {
			address = DefaultMarkerAddress
		}
		markers = append(markers, entities.MapMarker{
			Name:      name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Address:   address,
			Image:     loc.Image,
		})
	}

	if len(markers) == 0 {
		return entities.NoLocatedFacilities{Facilities: facilities}
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Name < markers[j].Name
	})

	return entities.MapData{
		Center:  [2]float64{markers[0].Latitude, markers[0].Longitude},
		Markers: markers,
	}
}
