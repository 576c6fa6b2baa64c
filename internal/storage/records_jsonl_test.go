package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/cograph/internal/record"
)

func TestRecordsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	first := []record.Record{
		{Kind: record.KindAuthorship, Source: "W1", Entities: []string{"Alice", "Bob"}},
	}
	second := []record.Record{
		{Kind: record.KindCitation, Source: "W1", Entities: []string{"W2", "W3"}},
		{Kind: record.KindAuthorship, Source: "W2", Entities: []string{"Carol"}},
	}

	if err := AppendRecords(path, first); err != nil {
		t.Fatalf("AppendRecords() error = %v", err)
	}
	if err := AppendRecords(path, second); err != nil {
		t.Fatalf("AppendRecords() error = %v", err)
	}

	got, err := ReadAllRecords(path)
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v", err)
	}

	want := append(append([]record.Record{}, first...), second...)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAllRecords() = %+v, want %+v", got, want)
	}
}

func TestReadAllRecords_MissingFile(t *testing.T) {
	got, err := ReadAllRecords(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadAllRecords() = %v, want empty", got)
	}
}

func TestReadAllRecords_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"kind":"authorship","source":"W1","entities":["A"]}

{"kind":"authorship","source":"W2","entities":[]}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadAllRecords(path)
	if err != nil {
		t.Fatalf("ReadAllRecords() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestReadAllRecords_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad json", `{"kind":`, "parsing line 1"},
		{"bad kind", `{"kind":"funding","source":"W1"}`, "invalid record on line 1"},
		{"missing source", "\n" + `{"kind":"citation"}`, "invalid record on line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "records.jsonl")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := ReadAllRecords(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadAllRecords() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteAllRecords_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	if err := AppendRecords(path, []record.Record{{Kind: record.KindCitation, Source: "W9"}}); err != nil {
		t.Fatal(err)
	}

	want := []record.Record{{Kind: record.KindAuthorship, Source: "W1", Entities: []string{"A"}}}
	if err := WriteAllRecords(path, want); err != nil {
		t.Fatalf("WriteAllRecords() error = %v", err)
	}

	got, err := ReadAllRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAllRecords() = %+v, want %+v", got, want)
	}
}

func TestMergeRecords(t *testing.T) {
	existing := []record.Record{
		{Kind: record.KindAuthorship, Source: "W1", Entities: []string{"A"}},
		{Kind: record.KindCitation, Source: "W1", Entities: []string{"W5"}},
	}
	incoming := []record.Record{
		{Kind: record.KindAuthorship, Source: "W1", Entities: []string{"A", "B"}},
		{Kind: record.KindAuthorship, Source: "W2", Entities: []string{"C"}},
	}

	merged, res := MergeRecords(existing, incoming)

	if res.Added != 1 || res.Replaced != 1 {
		t.Errorf("MergeRecords() result = %+v, want 1 added, 1 replaced", res)
	}
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}
	if !reflect.DeepEqual(merged[0].Entities, []string{"A", "B"}) {
		t.Errorf("merged[0].Entities = %v, want replaced", merged[0].Entities)
	}
	if merged[2].Source != "W2" {
		t.Errorf("merged[2].Source = %q, want W2", merged[2].Source)
	}
	if len(existing[0].Entities) != 1 {
		t.Error("MergeRecords() mutated existing slice")
	}
}
