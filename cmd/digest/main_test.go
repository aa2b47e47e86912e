package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func writeCorpusFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\noutput:\n%s", args, err, out.String())
	}
	return out.String()
}

func TestBuildThenStatsThenAssemble(t *testing.T) {
	root := t.TempDir()
	indexDir := filepath.Join(root, ".digest-index")
	writeCorpusFile(t, root, "docs/a.md", "# Intro\nhello world\n## Details\ncontent here about caching.")

	buildCmd := newBuildCommand()
	runCommand(t, buildCmd, "--index-dir", indexDir, root)

	if _, err := os.Stat(filepath.Join(indexDir, "forward_index.json")); err != nil {
		t.Fatalf("expected build to write forward_index.json: %v", err)
	}

	statsCmd := newStatsCommand()
	statsOut := runCommand(t, statsCmd, indexDir)
	if !strings.Contains(statsOut, "Total files") {
		t.Errorf("expected stats output to mention total files, got:\n%s", statsOut)
	}

	assembleCmd := newAssembleCommand()
	assembleOut := runCommand(t, assembleCmd, "--corpus-root", root, indexDir, "content")
	if !strings.Contains(assembleOut, "Context Digest") {
		t.Errorf("expected assemble output to contain a digest, got:\n%s", assembleOut)
	}
}

func TestDiffReportsSharedAndUniqueKeywords(t *testing.T) {
	root := t.TempDir()
	indexDir := filepath.Join(root, ".digest-index")
	writeCorpusFile(t, root, "docs/a.md", "# Intro\nauthentication and session handling details here.")
	writeCorpusFile(t, root, "docs/b.md", "# Overview\nauthentication and deployment details here.")

	buildCmd := newBuildCommand()
	runCommand(t, buildCmd, "--index-dir", indexDir, root)

	diffCmd := newDiffCommand()
	out := runCommand(t, diffCmd, indexDir, "docs/a.md", "docs/b.md")
	if !strings.Contains(out, "Shared keywords") {
		t.Errorf("expected a shared-keywords section, got:\n%s", out)
	}
}

func TestSimilarRanksByCombinedScore(t *testing.T) {
	root := t.TempDir()
	indexDir := filepath.Join(root, ".digest-index")
	shared := "deployment rollback and monitoring procedures for the payments service cluster"
	writeCorpusFile(t, root, "docs/ops-a.md", "# Ops A\n"+shared)
	writeCorpusFile(t, root, "docs/ops-b.md", "# Ops B\n"+shared)
	writeCorpusFile(t, root, "docs/recipes.md", "# Recipes\npasta tomato basil garlic olive oil")

	buildCmd := newBuildCommand()
	runCommand(t, buildCmd, "--index-dir", indexDir, root)

	similarCmd := newSimilarCommand()
	out := runCommand(t, similarCmd, indexDir, "docs/ops-a.md")
	if !strings.Contains(out, "docs/ops-b.md") {
		t.Errorf("expected docs/ops-b.md above the similarity threshold, got:\n%s", out)
	}
	if strings.Contains(out, "docs/recipes.md") {
		t.Errorf("expected docs/recipes.md below the similarity threshold, got:\n%s", out)
	}
}

func TestDupesSectionsClustersSharedSection(t *testing.T) {
	root := t.TempDir()
	indexDir := filepath.Join(root, ".digest-index")
	testingSection := "## Testing\nrun the suite and check coverage numbers before merging anything at all"
	writeCorpusFile(t, root, "docs/a.md", "# A\nunique alpha prose here\n"+testingSection)
	writeCorpusFile(t, root, "docs/b.md", "# B\nunique beta prose here\n"+testingSection)
	writeCorpusFile(t, root, "docs/c.md", "# C\nunique gamma prose here\n"+testingSection)

	buildCmd := newBuildCommand()
	runCommand(t, buildCmd, "--index-dir", indexDir, root)

	dupesCmd := newDupesCommand()
	out := runCommand(t, dupesCmd, "--sections", "--min-files", "2", indexDir)
	if !strings.Contains(out, "Testing") {
		t.Errorf("expected a Testing section cluster, got:\n%s", out)
	}
	for _, p := range []string{"docs/a.md", "docs/b.md", "docs/c.md"} {
		if !strings.Contains(out, p) {
			t.Errorf("expected %s in the cluster listing, got:\n%s", p, out)
		}
	}
}
