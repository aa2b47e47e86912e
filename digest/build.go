// Package digest is the top-level facade wiring the indexer, similarity
// engine, and retrieval/assembly pipeline into the two operations an
// external caller needs: Build and Assemble.
package digest

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/corpusdigest/digest/internal/config"
	"github.com/corpusdigest/digest/internal/consolidate"
	"github.com/corpusdigest/digest/internal/docindex"
	"github.com/corpusdigest/digest/internal/lsh"
)

var tracer = otel.Tracer("corpusdigest.digest")

// BuildResult bundles everything a build run produces: the forward index,
// reverse index, stats, and the duplicate-document consolidation groups.
type BuildResult struct {
	Forward         *docindex.ForwardIndex
	Reverse         *docindex.ReverseIndex
	Stats           *docindex.Stats
	DuplicateGroups []consolidate.Group
}

// BuildOptions configures Build.
type BuildOptions struct {
	Extensions      []string
	Roots           []string
	ExcludePatterns []string
	Logger          *slog.Logger
}

// BuildOption sets one BuildOptions field.
type BuildOption func(*BuildOptions)

// WithExtensions overrides the default extension allow-list.
func WithExtensions(exts []string) BuildOption {
	return func(o *BuildOptions) { o.Extensions = exts }
}

// WithRoots restricts the walk to the given corpus-relative roots.
func WithRoots(roots []string) BuildOption {
	return func(o *BuildOptions) { o.Roots = roots }
}

// WithExcludePatterns adds caller-supplied exclusion substrings.
func WithExcludePatterns(patterns []string) BuildOption {
	return func(o *BuildOptions) { o.ExcludePatterns = patterns }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *BuildOptions) { o.Logger = l }
}

// Build walks corpusRoot, indexes every matching file, computes corpus
// statistics, and writes the forward index, reverse index, and stats to
// indexDir.
func Build(ctx context.Context, corpusRoot, indexDir string, opts ...BuildOption) (*BuildResult, error) {
	o := &BuildOptions{Logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	ctx, span := tracer.Start(ctx, "digest.Build",
		oteltrace.WithAttributes(
			attribute.String("corpus_root", corpusRoot),
			attribute.String("index_dir", indexDir),
		),
	)
	defer span.End()

	var docOpts []docindex.BuildOption
	if len(o.Extensions) > 0 {
		docOpts = append(docOpts, docindex.WithExtensions(o.Extensions))
	}
	if len(o.Roots) > 0 {
		docOpts = append(docOpts, docindex.WithRoots(o.Roots))
	}
	if len(o.ExcludePatterns) > 0 {
		docOpts = append(docOpts, docindex.WithExcludePatterns(o.ExcludePatterns))
	}
	docOpts = append(docOpts, docindex.WithLogger(o.Logger))

	forward, reverse, stats, err := docindex.Build(corpusRoot, docOpts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "index build failed")
		o.Logger.Error("digest build failed", "corpus_root", corpusRoot, "error", err)
		return nil, fmt.Errorf("digest: build %s: %w", corpusRoot, err)
	}

	if indexDir != "" {
		if err := docindex.WriteIndex(indexDir, forward, reverse, stats); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "index write failed")
			return nil, fmt.Errorf("digest: writing index to %s: %w", indexDir, err)
		}
	}

	groups := detectDuplicates(ctx, forward)

	span.SetAttributes(
		attribute.Int("files_indexed", stats.TotalFiles),
		attribute.Int("keywords", stats.TotalKeywords),
		attribute.Int("duplicate_groups", len(groups)),
	)
	o.Logger.Info("digest build complete",
		"corpus_root", corpusRoot,
		"index_dir", indexDir,
		"files", stats.TotalFiles,
		"keywords", stats.TotalKeywords,
		"build_id", forward.BuildID,
		"duplicate_groups", len(groups),
	)

	return &BuildResult{Forward: forward, Reverse: reverse, Stats: stats, DuplicateGroups: groups}, nil
}

// detectDuplicates runs the LSH & Similarity Engine over the
// freshly built forward index and groups the resulting candidate pairs into
// consolidation components. Traced separately from the parent
// Build span, mirroring how cmd/trace wraps its own sub-stages individually.
func detectDuplicates(ctx context.Context, forward *docindex.ForwardIndex) []consolidate.Group {
	_, span := tracer.Start(ctx, "lsh.candidates")
	defer span.End()

	pairs := lsh.CandidatePairs(forward.Files)
	span.SetAttributes(attribute.Int("candidate_pairs", len(pairs)))

	threshold := 0.35
	if tuning, err := config.LoadTuning(); err == nil {
		threshold = tuning.Thresholds.DocumentDuplicate
	}
	var duplicates []lsh.Pair
	for _, p := range pairs {
		if p.Combined >= threshold {
			duplicates = append(duplicates, p)
		}
	}

	groups := consolidate.Consolidate(duplicates)
	span.SetAttributes(attribute.Int("duplicate_groups", len(groups)))
	return groups
}
