package storage

import (
	"context"
	"maps"
	"slices"
)

// Collection names. Each entity type lives in its own independently persisted
// collection.
const (
	CollectionUsers      = "USERS"
	CollectionSurveys    = "ENCUESTAS"
	CollectionCandidates = "CANDIDATO"
	CollectionVotes      = "VOTOS"
	CollectionAdmins     = "ADMIN"
)

// Collections lists every collection the registries own.
var Collections = []string{
	CollectionUsers,
	CollectionSurveys,
	CollectionCandidates,
	CollectionVotes,
	CollectionAdmins,
}

// Records maps an entity identifier to its ordered field sequence.
type Records map[string][]string

// Has reports whether id is present.
func (r Records) Has(id string) bool {
	_, ok := r[id]
	return ok
}

// Clone deep-copies the mapping so callers never share field slices with a
// backend.
func (r Records) Clone() Records {
	out := make(Records, len(r))
	for id, fields := range r {
		out[id] = slices.Clone(fields)
	}
	return out
}

// IDs returns the identifiers in sorted order.
func (r Records) IDs() []string {
	return slices.Sorted(maps.Keys(r))
}

// RecordStore is the persistence capability the registries are written
// against. Load returns an empty mapping when the collection was never saved.
// Save replaces the whole collection and must be all-or-nothing.
type RecordStore interface {
	Load(ctx context.Context, collection string) (Records, error)
	Save(ctx context.Context, collection string, records Records) error
}
