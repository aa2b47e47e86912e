package corpuswalk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkFiltersByExtensionAndExclusion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "a.md"), "# A")
	writeFile(t, filepath.Join(root, "docs", "b.txt"), "body")
	writeFile(t, filepath.Join(root, "docs", "c.png"), "binary")
	writeFile(t, filepath.Join(root, "node_modules", "d.md"), "# D")
	writeFile(t, filepath.Join(root, ".hidden", "e.md"), "# E")

	var got []string
	err := Walk(root, Options{Extensions: []string{"md", "txt"}}, func(rel, abs string) error {
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	sort.Strings(got)
	want := []string{"docs/a.md", "docs/b.txt"}
	if len(got) != len(want) {
		t.Fatalf("Walk() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Walk()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.md"), "# Keep")
	writeFile(t, filepath.Join(root, "scratch.md"), "# Scratch")
	writeFile(t, filepath.Join(root, ".gitignore"), "scratch.md\n")

	var got []string
	err := Walk(root, Options{Extensions: []string{"md"}}, func(rel, abs string) error {
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(got) != 1 || got[0] != "keep.md" {
		t.Errorf("Walk() = %v, want [keep.md]", got)
	}
}

func TestWalkRestrictsToRoots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "a.md"), "# A")
	writeFile(t, filepath.Join(root, "other", "b.md"), "# B")

	var got []string
	err := Walk(root, Options{Extensions: []string{"md"}, Roots: []string{"docs"}}, func(rel, abs string) error {
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(got) != 1 || got[0] != "docs/a.md" {
		t.Errorf("Walk() = %v, want [docs/a.md]", got)
	}
}
