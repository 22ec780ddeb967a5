package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/adapters/database"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/postgres"
	"github.com/mBrond/chat-medicamentos/pkg/config"
)

// Kind identifies the backend a dataset URI points at
type Kind string

const (
	KindCSV      Kind = "csv"
	KindXLSX     Kind = "xlsx"
	KindHTTP     Kind = "http"
	KindPostgres Kind = "postgres"
)

const filePrefix = "file://"

// DetectKind classifies a dataset URI. The literal "postgres" selects the
// configured database; postgres:// and postgresql:// carry their own DSN.
func DetectKind(uri string) (Kind, error) {
	uri = strings.TrimSpace(uri)
	lower := strings.ToLower(uri)

	switch {
	case lower == "postgres",
		strings.HasPrefix(lower, "postgres://"),
		strings.HasPrefix(lower, "postgresql://"):
		return KindPostgres, nil
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return KindHTTP, nil
	}

	switch strings.ToLower(filepath.Ext(localPath(uri))) {
	case ".csv":
		return KindCSV, nil
	case ".xlsx":
		return KindXLSX, nil
	default:
		return "", fmt.Errorf("unsupported dataset uri %q: expected .csv, .xlsx, http(s):// or postgres", uri)
	}
}

// Source is an opened dataset source together with what the caller needs to
// refresh, watch and release it.
type Source struct {
	repositories.DatasetSource

	// Kind is the detected backend
	Kind Kind
	// Store is set when snapshot caching is enabled
	Store *SnapshotStore
	// LocalPath is set for local files and is what a FileWatcher should watch
	LocalPath string

	closer func() error
}

var _ repositories.VersionedSource = (*Source)(nil)

// Version implements repositories.VersionedSource. It is empty unless the
// source is served from a snapshot.
func (s *Source) Version() string {
	if s.Store == nil {
		return ""
	}
	return s.Store.Version()
}

// Close releases the backend connection, if any
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// NewSource opens the source named by cfg.Dataset.URI. Postgres sources
// connect immediately; file and HTTP sources read lazily on Load.
func NewSource(cfg *config.Config) (*Source, error) {
	kind, err := DetectKind(cfg.Dataset.URI)
	if err != nil {
		return nil, err
	}

	out := &Source{Kind: kind}
	switch kind {
	case KindCSV:
		out.LocalPath = localPath(cfg.Dataset.URI)
		out.DatasetSource = NewCSVSource(out.LocalPath)
	case KindXLSX:
		out.LocalPath = localPath(cfg.Dataset.URI)
		out.DatasetSource = NewXLSXSource(out.LocalPath, cfg.Dataset.Sheet)
	case KindHTTP:
		out.DatasetSource = NewHTTPSource(strings.TrimSpace(cfg.Dataset.URI), cfg.Dataset.Sheet)
	case KindPostgres:
		var client *postgres.Client
		if strings.EqualFold(strings.TrimSpace(cfg.Dataset.URI), "postgres") {
			client, err = postgres.NewClient(&cfg.Database)
		} else {
			client, err = postgres.NewClientFromDSN(strings.TrimSpace(cfg.Dataset.URI))
		}
		if err != nil {
			return nil, err
		}
		out.DatasetSource = database.NewMedicationAdapter(client, cfg.Dataset.Table)
		out.closer = client.Close
	}

	// Reloading only has an effect on a shared snapshot
	if cfg.Dataset.Cache || cfg.Dataset.Watch || cfg.Dataset.Events || cfg.Dataset.ReloadInterval > 0 {
		out.Store = NewSnapshotStore(out.DatasetSource)
		out.DatasetSource = out.Store
	}
	return out, nil
}

func localPath(uri string) string {
	uri = strings.TrimSpace(uri)
	if len(uri) >= len(filePrefix) && strings.EqualFold(uri[:len(filePrefix)], filePrefix) {
		return uri[len(filePrefix):]
	}
	return uri
}
