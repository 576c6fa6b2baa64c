package openalex

import (
	"fmt"
	"time"

	"github.com/matsen/cograph/internal/record"
)

// AuthorshipRecord extracts the author display names of a work.
// Every authorship must name its author; a missing display name fails the
// whole work rather than silently dropping a co-author.
func AuthorshipRecord(w *Work) (record.Record, error) {
	source := NormalizeWorkID(w.ID)
	if source == "" {
		return record.Record{}, fmt.Errorf("%w: missing id", ErrMalformedWork)
	}

	names := make([]string, 0, len(w.Authorships))
	for i, a := range w.Authorships {
		if a.Author.DisplayName == "" {
			return record.Record{}, fmt.Errorf("%w: %s authorship %d has no author display_name", ErrMalformedWork, source, i)
		}
		names = append(names, a.Author.DisplayName)
	}

	return newRecord(record.KindAuthorship, source, names), nil
}

// CitationRecord extracts the ids of the works referenced by a work.
func CitationRecord(w *Work) (record.Record, error) {
	source := NormalizeWorkID(w.ID)
	if source == "" {
		return record.Record{}, fmt.Errorf("%w: missing id", ErrMalformedWork)
	}

	refs := make([]string, 0, len(w.ReferencedWorks))
	for i, ref := range w.ReferencedWorks {
		id := NormalizeWorkID(ref)
		if id == "" {
			return record.Record{}, fmt.Errorf("%w: %s referenced work %d is empty", ErrMalformedWork, source, i)
		}
		refs = append(refs, id)
	}

	return newRecord(record.KindCitation, source, refs), nil
}

// RecordFor extracts the record of the given kind from a work.
func RecordFor(w *Work, kind record.Kind) (record.Record, error) {
	switch kind {
	case record.KindAuthorship:
		return AuthorshipRecord(w)
	case record.KindCitation:
		return CitationRecord(w)
	default:
		return record.Record{}, fmt.Errorf("%w: %q", record.ErrInvalidKind, kind)
	}
}

// RecordsFor extracts one record of the given kind per work.
func RecordsFor(works []*Work, kind record.Kind) ([]record.Record, error) {
	out := make([]record.Record, 0, len(works))
	for _, w := range works {
		r, err := RecordFor(w, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func newRecord(kind record.Kind, source string, entities []string) record.Record {
	return record.Record{
		Kind:      kind,
		Source:    source,
		Entities:  entities,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
