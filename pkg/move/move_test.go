package move

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arendv/media-archiver/pkg/plan"
)

func TestExecute_MovesFileAndCreatesDirs(t *testing.T) {
	tmpSrc := t.TempDir()
	tmpDst := t.TempDir()

	srcPath := filepath.Join(tmpSrc, "test.jpg")
	content := []byte("test content")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	destPath := filepath.Join(tmpDst, "2023", "2023-08-09 16.24.53.jpg")
	ops := []plan.Operation{{SourcePath: srcPath, DestinationPath: destPath, Action: plan.ActionOrganize}}

	results := Execute(ops)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Success {
		t.Fatalf("expected success, got %v", results[0].Error)
	}
	if results[0].FinalPath != destPath {
		t.Fatalf("FinalPath = %v, want %v", results[0].FinalPath, destPath)
	}

	got, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q want %q", got, content)
	}

	if _, err := os.Stat(srcPath); !os.IsNotExist(err) {
		t.Fatalf("source still present after move")
	}
}

func TestExecute_OccupiedDestinationGetsSuffix(t *testing.T) {
	tmpSrc := t.TempDir()
	tmpDst := t.TempDir()

	srcPath := filepath.Join(tmpSrc, "test.jpg")
	if err := os.WriteFile(srcPath, []byte("new"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	destPath := filepath.Join(tmpDst, "test.jpg")
	if err := os.WriteFile(destPath, []byte("old"), 0o644); err != nil {
		t.Fatalf("write destination: %v", err)
	}

	op := plan.Operation{SourcePath: srcPath, DestinationPath: destPath, Action: plan.ActionOrganize}
	results := Execute([]plan.Operation{op})
	if !results[0].Success {
		t.Fatalf("expected success, got %v", results[0].Error)
	}

	want := filepath.Join(tmpDst, "test_1.jpg")
	if results[0].FinalPath != want {
		t.Fatalf("FinalPath = %v, want %v", results[0].FinalPath, want)
	}

	got, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != "old" {
		t.Fatalf("destination was overwritten: %q", got)
	}

	moved, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read suffixed destination: %v", err)
	}
	if string(moved) != "new" {
		t.Fatalf("unexpected suffixed content: %q", moved)
	}
}

func TestExecute_MissingSourceIsPerFileFailure(t *testing.T) {
	tmpDst := t.TempDir()

	missing := filepath.Join(t.TempDir(), "gone.jpg")
	ok := filepath.Join(t.TempDir(), "ok.jpg")
	if err := os.WriteFile(ok, []byte("ok"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	ops := []plan.Operation{
		{SourcePath: missing, DestinationPath: filepath.Join(tmpDst, "a.jpg"), Action: plan.ActionOrganize},
		{SourcePath: ok, DestinationPath: filepath.Join(tmpDst, "b.jpg"), Action: plan.ActionOrganize},
	}

	results := Execute(ops)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Success {
		t.Fatalf("expected failure for missing source")
	}
	if results[0].Error == nil {
		t.Fatalf("expected an error for missing source")
	}
	if !results[1].Success {
		t.Fatalf("expected the run to continue past a failure, got %v", results[1].Error)
	}
}

func TestExecute_MultipleOperations(t *testing.T) {
	tmpSrc := t.TempDir()
	tmpDst := t.TempDir()

	s1 := filepath.Join(tmpSrc, "a.jpg")
	s2 := filepath.Join(tmpSrc, "b.jpg")
	if err := os.WriteFile(s1, []byte("a"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := os.WriteFile(s2, []byte("b"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	ops := []plan.Operation{
		{SourcePath: s1, DestinationPath: filepath.Join(tmpDst, "2023", "2023-11-15 10.30.00.jpg"), Action: plan.ActionOrganize},
		{SourcePath: s2, DestinationPath: filepath.Join(tmpDst, "skipped", "b.jpg"), Action: plan.ActionSkip},
	}

	results := Execute(ops)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.Success {
			t.Fatalf("result %d failed: %v", i, r.Error)
		}
	}
}
