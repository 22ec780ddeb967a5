package search

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/pkg/utils"
)

// MaxIndexedCodes caps the code bag of one medication document
const MaxIndexedCodes = 50

// BuildDocuments collapses the dataset into one document per distinct
// medication name, in first-appearance order. Records with a blank name are
// skipped.
func BuildDocuments(ds *entities.Dataset) []map[string]interface{} {
	if ds.Len() == 0 {
		return nil
	}

	type entry struct {
		name      string
		row       int
		codes     map[string]struct{}
		locations map[string]struct{}
	}
	var order []string
	entries := make(map[string]*entry)

	for _, r := range ds.Records {
		name := strings.TrimSpace(r.MedicationName)
		if name == "" {
			continue
		}
		key := documentID(name)
		e, ok := entries[key]
		if !ok {
			e = &entry{
				name:      name,
				row:       r.Row,
				codes:     make(map[string]struct{}),
				locations: make(map[string]struct{}),
			}
			entries[key] = e
			order = append(order, key)
		}
		add(e.codes, r.DiagnosisCode)
		for _, code := range r.ApplicableLocations() {
			add(e.locations, string(code))
		}
	}

	docs := make([]map[string]interface{}, 0, len(order))
	for _, key := range order {
		e := entries[key]
		docs = append(docs, map[string]interface{}{
			"id":         key,
			"name":       e.name,
			"name_plain": utils.StripAccents(utils.Fold(e.name)),
			"codes":      toSlice(e.codes, MaxIndexedCodes),
			"locations":  toSlice(e.locations, 0),
			"row":        e.row,
		})
	}
	return docs
}

// documentID is stable across reindexes for the same folded name
func documentID(name string) string {
	sum := sha1.Sum([]byte(utils.Fold(name)))
	return hex.EncodeToString(sum[:])[:20]
}

func add(set map[string]struct{}, terms ...string) {
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			set[t] = struct{}{}
		}
	}
}

func toSlice(set map[string]struct{}, limit int) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// distinctNames reads the name field of search hits, keeping order and
// dropping case-insensitive duplicates.
func distinctNames(docs []map[string]interface{}, limit int) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, doc := range docs {
		name, ok := doc["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		key := utils.Fold(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
		if limit > 0 && len(names) == limit {
			break
		}
	}
	return names
}
