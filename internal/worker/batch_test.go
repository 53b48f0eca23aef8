package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/lightship/internal/model"
)

type mockParser struct {
	failOn string
	delay  map[string]time.Duration
}

func (m *mockParser) ParseSource(ctx context.Context, source string) (*model.ParsedDocument, error) {
	if d := m.delay[source]; d > 0 {
		time.Sleep(d)
	}
	if m.failOn != "" && strings.Contains(source, m.failOn) {
		return nil, errors.New("parse error")
	}
	return &model.ParsedDocument{
		FileName:  filepath.Base(source),
		Materials: []model.ParsedMaterial{{OriginalText: "Acciaio 1 t", Quantity: 1000}},
	}, nil
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	parser := &mockParser{
		failOn: "broken",
		delay:  map[string]time.Duration{"a.csv": 30 * time.Millisecond},
	}
	processor := NewBatchProcessor(parser, 3, nil)

	sources := []string{"a.csv", "broken.txt", "https://yard.example.com/c.html"}
	results := processor.ProcessSources(context.Background(), sources)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, src := range sources {
		if results[i].Source != src {
			t.Errorf("Expected result %d for %s, got %s", i, src, results[i].Source)
		}
	}
	if results[0].Error != nil || results[0].Document == nil {
		t.Errorf("Expected a.csv parsed, got %v", results[0].Error)
	}
	if results[1].Error == nil || results[1].Document != nil {
		t.Error("Expected broken.txt to fail without a document")
	}
	if results[2].Error != nil {
		t.Errorf("Expected remote source parsed, got %v", results[2].Error)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockParser{}, 2, nil)
	if results := processor.ProcessSources(context.Background(), nil); len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockParser{}, 1, nil)
	results := processor.ProcessSources(ctx, []string{"a.csv", "b.csv", "c.csv"})

	if len(results) != 3 {
		t.Fatalf("Expected a result per source, got %d", len(results))
	}
	for _, r := range results {
		if r == nil {
			t.Fatal("Expected no nil results")
		}
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "sources.txt")
	content := `# yard exports
fincantieri.csv

https://yard.example.com/export.html
/abs/path/naval.txt
fincantieri.csv
`
	if err := os.WriteFile(listPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sources, err := ReadSourcesFromFile(listPath)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "fincantieri.csv"),
		"https://yard.example.com/export.html",
		"/abs/path/naval.txt",
	}
	if len(sources) != len(expected) {
		t.Fatalf("Expected %d sources, got %d: %v", len(expected), len(sources), sources)
	}
	for i := range expected {
		if sources[i] != expected[i] {
			t.Errorf("Source %d: expected %s, got %s", i, expected[i], sources[i])
		}
	}
}

func TestProcessFile_MissingList(t *testing.T) {
	processor := NewBatchProcessor(&mockParser{}, 1, nil)
	if _, err := processor.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing list file")
	}
}
