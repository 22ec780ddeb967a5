package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
	"github.com/mBrond/chat-medicamentos/pkg/utils"
)

// entry is one value of the address book file:
//
//	{"FARMÁCIA MUNICIPAL CENTRAL": {"marker": [-29.68, -53.81], "endereco": "...", "imagem": "..."}}
type entry struct {
	Marker  []float64 `json:"marker"`
	Address string    `json:"endereco"`
	Image   string    `json:"imagem"`
}

// JSONDirectory is a FacilityDirectory backed by an address book file.
// Entries without a marker are geocoded from their address when a
// geocoder is configured; the result is remembered for the process lifetime.
type JSONDirectory struct {
	entries  map[string]entry
	folded   map[string]string
	geocoder providers.GeolocationProvider

	mu       sync.Mutex
	geocoded map[string]*entities.FacilityLocation
}

var _ providers.FacilityDirectory = (*JSONDirectory)(nil)

// LoadJSONDirectory reads the address book at path. geocoder may be nil.
func LoadJSONDirectory(path string, geocoder providers.GeolocationProvider) (*JSONDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read facility directory %s: %w", path, err)
	}
	return ParseJSONDirectory(bytes.NewReader(data), geocoder)
}

// ParseJSONDirectory decodes an address book document
func ParseJSONDirectory(r io.Reader, geocoder providers.GeolocationProvider) (*JSONDirectory, error) {
	var entries map[string]entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("malformed facility directory: %w", err)
	}

	folded := make(map[string]string, len(entries))
	for name, e := range entries {
		if e.Marker != nil && len(e.Marker) != 2 {
			return nil, fmt.Errorf("facility %q: marker must be [lat, lng], got %d values", name, len(e.Marker))
		}
		folded[foldName(name)] = name
	}

	return &JSONDirectory{
		entries:  entries,
		folded:   folded,
		geocoder: geocoder,
		geocoded: make(map[string]*entities.FacilityLocation),
	}, nil
}

// EmptyDirectory has no facilities: every Lookup is NOT_FOUND
func EmptyDirectory() *JSONDirectory {
	return &JSONDirectory{
		entries:  map[string]entry{},
		folded:   map[string]string{},
		geocoded: make(map[string]*entities.FacilityLocation),
	}
}

// Len returns the number of facilities in the address book
func (d *JSONDirectory) Len() int {
	return len(d.entries)
}

// Lookup implements providers.FacilityDirectory. Names match exactly first,
// then ignoring case and accents.
func (d *JSONDirectory) Lookup(ctx context.Context, name string) (*entities.FacilityLocation, error) {
	key, e, ok := d.find(name)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %q not in directory", name))
	}

	if len(e.Marker) == 2 {
		return &entities.FacilityLocation{
			Name:      name,
			Latitude:  e.Marker[0],
			Longitude: e.Marker[1],
			Address:   e.Address,
			Image:     e.Image,
		}, nil
	}

	if d.geocoder == nil || strings.TrimSpace(e.Address) == "" {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %q has no coordinates", name))
	}
	return d.geocode(ctx, key, name, e)
}

func (d *JSONDirectory) find(name string) (string, entry, bool) {
	if e, ok := d.entries[name]; ok {
		return name, e, true
	}
	if key, ok := d.folded[foldName(name)]; ok {
		return key, d.entries[key], true
	}
	return "", entry{}, false
}

func (d *JSONDirectory) geocode(ctx context.Context, key, name string, e entry) (*entities.FacilityLocation, error) {
	d.mu.Lock()
	cached, ok := d.geocoded[key]
	d.mu.Unlock()
	if ok {
		loc := *cached
		loc.Name = name
		return &loc, nil
	}

	coords, err := d.geocoder.Geocode(ctx, e.Address)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("facility", name).Msg("facility geocoding failed")
		return nil, err
	}

	loc := &entities.FacilityLocation{
		Name:      name,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Address:   e.Address,
		Image:     e.Image,
	}
	d.mu.Lock()
	d.geocoded[key] = loc
	d.mu.Unlock()

	out := *loc
	return &out, nil
}

func foldName(name string) string {
	return utils.StripAccents(utils.Fold(strings.Join(strings.Fields(name), " ")))
}
