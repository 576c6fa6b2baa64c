// Package record defines the persisted unit of co-occurrence evidence.
package record

import (
	"errors"
	"fmt"

	"github.com/matsen/cograph/internal/cooccur"
)

// Kind identifies what the entities of a record are.
type Kind string

const (
	// KindAuthorship records hold the author display names of one work.
	KindAuthorship Kind = "authorship"
	// KindCitation records hold the ids of the works referenced by one work.
	KindCitation Kind = "citation"
)

// ValidKinds lists the supported record kinds.
var ValidKinds = []Kind{KindAuthorship, KindCitation}

// Validation errors.
var (
	ErrEmptySource = errors.New("source is required")
	ErrInvalidKind = errors.New("invalid kind")
	ErrEmptyEntity = errors.New("entities cannot be empty strings")
)

// Record is one observation: the entities seen together in a source work.
type Record struct {
	// Identity: (Kind, Source)
	Kind   Kind   `json:"kind"`
	Source string `json:"source"` // OpenAlex work id, e.g. W2741809807

	Entities  []string `json:"entities"`
	FetchedAt string   `json:"fetched_at,omitempty"`
}

// Key is the identity of a record.
type Key struct {
	Kind   Kind
	Source string
}

// Key returns the identity tuple for this record.
func (r *Record) Key() Key {
	return Key{Kind: r.Kind, Source: r.Source}
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	for _, k := range ValidKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %v)", ErrInvalidKind, s, ValidKinds)
}

// Validate checks structural validity. Duplicate entities are allowed; the
// graph builder collapses them.
func (r *Record) Validate() error {
	if r.Source == "" {
		return ErrEmptySource
	}
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	for _, e := range r.Entities {
		if e == "" {
			return ErrEmptyEntity
		}
	}
	return nil
}

// Observation returns the entity list as a builder input.
func (r *Record) Observation() cooccur.Record {
	return cooccur.Record(r.Entities)
}

// Observations converts records of the given kind to builder inputs.
// An empty kind selects every record.
func Observations(records []Record, kind Kind) []cooccur.Record {
	out := make([]cooccur.Record, 0, len(records))
	for i := range records {
		if kind != "" && records[i].Kind != kind {
			continue
		}
		out = append(out, records[i].Observation())
	}
	return out
}
