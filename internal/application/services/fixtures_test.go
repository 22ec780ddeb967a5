package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

func flags(codes ...entities.LocationCode) map[entities.LocationCode]bool {
	out := make(map[entities.LocationCode]bool, len(codes))
	for _, c := range codes {
		out[c] = true
	}
	return out
}

// testDataset mirrors the shape of the municipal medication sheet
func testDataset() *entities.Dataset {
	return entities.NewDataset("test", []entities.MedicationRecord{
		{Row: 1, MedicationName: "Dipirona", DiagnosisCode: "R50", Notes: "Uso em febre", DispensingFlags: flags(entities.LocationDistrict)},
		{Row: 2, MedicationName: "Dipirona", DiagnosisCode: "R51", Notes: "Uso em cefaleia", DispensingFlags: flags(entities.LocationDistrict)},
		{Row: 3, MedicationName: "Dipirona", DiagnosisCode: "R50", Notes: "Uso em febre", DispensingFlags: flags(entities.LocationDistrict)},
		{Row: 4, MedicationName: "Insulina NPH", DiagnosisCode: "E10", Notes: "Diabetes tipo 1", DispensingMode: entities.LocationSpecial},
		{Row: 5, MedicationName: "Insulina Regular", DiagnosisCode: "E10", Notes: "Aplicar antes das refeições", DispensingMode: entities.LocationSpecial},
		{Row: 6, MedicationName: "Metformina", DiagnosisCode: "E11", Notes: "Diabetes tipo 2", DispensingFlags: flags(entities.LocationMunicipal, entities.LocationDistrict)},
		{Row: 7, MedicationName: "Paracetamol", DiagnosisCode: "R50", Notes: "Febre", DispensingFlags: flags(entities.LocationMunicipal)},
		{Row: 8, MedicationName: "", DiagnosisCode: "Z00", Notes: "Linha sem nome"},
		{Row: 9, MedicationName: "Amoxicilina", DiagnosisCode: " ", Notes: "Linha sem CID", DispensingFlags: flags(entities.LocationMunicipal)},
	})
}

func rows(records []entities.MedicationRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.Row)
	}
	return out
}

// fakeSource serves a fixed dataset and counts loads
type fakeSource struct {
	mu      sync.Mutex
	dataset *entities.Dataset
	err     error
	loads   int
}

func (f *fakeSource) Load(ctx context.Context) (*entities.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.dataset, nil
}

func (f *fakeSource) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// versionedSource additionally reports its snapshot version
type versionedSource struct {
	fakeSource
}

func (v *versionedSource) Version() string {
	return v.dataset.Version
}

type fakeTranslator map[entities.LocationCode][]string

func (f fakeTranslator) Translate(codes []entities.LocationCode) []string {
	var out []string
	for _, c := range codes {
		out = append(out, f[c]...)
	}
	return out
}

func testTranslator() fakeTranslator {
	return fakeTranslator{
		entities.LocationDistrict:  {"FARMÁCIA DISTRITAL KENNEDY", "FARMÁCIA DISTRITAL CAMOBI"},
		entities.LocationMunicipal: {"FARMÁCIA MUNICIPAL CENTRAL"},
		entities.LocationSpecial:   {"FARMÁCIA DE MEDICAMENTOS ESPECIAIS"},
	}
}

type fakeDirectory map[string]entities.FacilityLocation

func (f fakeDirectory) Lookup(ctx context.Context, name string) (*entities.FacilityLocation, error) {
	loc, ok := f[name]
	if !ok {
		return nil, apperrors.NewNotFoundError("facility not found: " + name)
	}
	return &loc, nil
}

func testDirectory() fakeDirectory {
	return fakeDirectory{
		"FARMÁCIA DISTRITAL KENNEDY":         {Name: "FARMÁCIA DISTRITAL KENNEDY", Latitude: -29.70, Longitude: -53.85, Address: "Rua Kennedy, 100"},
		"FARMÁCIA DISTRITAL CAMOBI":          {Name: "FARMÁCIA DISTRITAL CAMOBI", Latitude: -29.71, Longitude: -53.72},
		"FARMÁCIA DE MEDICAMENTOS ESPECIAIS": {Name: "FARMÁCIA DE MEDICAMENTOS ESPECIAIS", Latitude: -29.68, Longitude: -53.80, Address: "Rua do Acampamento, 50", Image: "especiais.jpg"},
	}
}

// memoryCache is an in-memory CacheProvider
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// mockSearchIndex is a testify mock of MedicationSearchRepository
type mockSearchIndex struct {
	mock.Mock
}

func (m *mockSearchIndex) Index(ctx context.Context, dataset *entities.Dataset) error {
	args := m.Called(ctx, dataset)
	return args.Error(0)
}

func (m *mockSearchIndex) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}
