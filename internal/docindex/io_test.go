package docindex

import (
	"errors"
	"fmt"
	"testing"

	"github.com/corpusdigest/digest/internal/digesterrors"
)

func TestWriteReadIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	root := t.TempDir()
	writeTestFile(t, root, "docs/a.md", "# Intro\nhello world\n## Details\ncontent here")

	forward, reverse, stats, err := Build(root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if err := WriteIndex(dir, forward, reverse, stats); err != nil {
		t.Fatalf("WriteIndex() error = %v", err)
	}

	gotForward, err := ReadForwardIndex(dir)
	if err != nil {
		t.Fatalf("ReadForwardIndex() error = %v", err)
	}
	if gotForward.Version != forward.Version {
		t.Errorf("version = %d, want %d", gotForward.Version, forward.Version)
	}
	if len(gotForward.Files) != len(forward.Files) {
		t.Errorf("files = %d, want %d", len(gotForward.Files), len(forward.Files))
	}
	if gotForward.BuildID != forward.BuildID {
		t.Errorf("build_id = %q, want %q", gotForward.BuildID, forward.BuildID)
	}

	gotReverse, err := ReadReverseIndex(dir)
	if err != nil {
		t.Fatalf("ReadReverseIndex() error = %v", err)
	}
	if len(gotReverse.Keywords) != len(reverse.Keywords) {
		t.Errorf("keywords = %d, want %d", len(gotReverse.Keywords), len(reverse.Keywords))
	}

	gotStats, err := ReadStats(dir)
	if err != nil {
		t.Fatalf("ReadStats() error = %v", err)
	}
	if gotStats.TotalFiles != stats.TotalFiles {
		t.Errorf("total_files = %d, want %d", gotStats.TotalFiles, stats.TotalFiles)
	}
}

func TestReadForwardIndexToleratesMissingFields(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "forward_index.json", `{"version": 3}`)

	fi, err := ReadForwardIndex(dir)
	if err != nil {
		t.Fatalf("ReadForwardIndex() error = %v", err)
	}
	if fi.Files == nil {
		t.Error("expected Files to default to an empty, non-nil map")
	}
	if fi.IDFMap == nil {
		t.Error("expected IDFMap to default to an empty, non-nil map")
	}
}

func TestReadForwardIndexRejectsVersionMismatch(t *testing.T) {
	for _, version := range []int{CurrentVersion - 1, CurrentVersion + 1, 0} {
		dir := t.TempDir()
		writeTestFile(t, dir, "forward_index.json", fmt.Sprintf(`{"version": %d}`, version))

		_, err := ReadForwardIndex(dir)
		if err == nil {
			t.Fatalf("expected an error for index version %d", version)
		}
		if !errors.Is(err, digesterrors.ErrInvalidInput) {
			t.Errorf("error for version %d = %v, want ErrInvalidInput", version, err)
		}
	}
}

func TestReadForwardIndexMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadForwardIndex(dir); err == nil {
		t.Error("expected an error reading a forward index from an empty directory")
	}
}

func TestSortedPathsOrdering(t *testing.T) {
	fi := &ForwardIndex{Files: map[string]*DocumentEntry{
		"b.md":       {},
		"a.md":       {},
		"docs/c.md":  {},
		"docs/a1.md": {},
	}}
	got := fi.SortedPaths()
	want := []string{"a.md", "b.md", "docs/a1.md", "docs/c.md"}
	if len(got) != len(want) {
		t.Fatalf("SortedPaths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortedPaths()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
