package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpusdigest/digest/internal/config"
	"github.com/corpusdigest/digest/internal/consolidate"
	"github.com/corpusdigest/digest/internal/docindex"
	"github.com/corpusdigest/digest/internal/lsh"
)

func newDupesCommand() *cobra.Command {
	var (
		threshold        float64
		group            bool
		sections         bool
		sectionThreshold float64
		minFiles         int
	)

	cmd := &cobra.Command{
		Use:   "dupes <index-dir>",
		Short: "Report near-duplicate documents (or sections, with --sections)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexDir := args[0]

			forward, err := docindex.ReadForwardIndex(indexDir)
			if err != nil {
				return err
			}

			tuning, err := config.LoadTuning()
			if err != nil {
				return err
			}
			if threshold < 0 {
				threshold = tuning.Thresholds.DocumentDuplicate
			}
			if sectionThreshold < 0 {
				sectionThreshold = tuning.Thresholds.SectionDuplicate
			}

			out := cmd.OutOrStdout()

			if sections {
				clusters := lsh.FilterClusters(
					lsh.ClusterSections(forward.Files, forward.SortedPaths(), sectionThreshold),
					minFiles,
				)
				fmt.Fprintf(out, "Duplicate sections (threshold %.2f, min files %d)\n\n", sectionThreshold, minFiles)
				if len(clusters) == 0 {
					fmt.Fprintln(out, "  (none)")
					return nil
				}
				for _, c := range clusters {
					rep := forward.Files[c.Representative.Path].SectionFingerprints[c.Representative.Index]
					fmt.Fprintf(out, "  %q (%d sections)\n", rep.Heading, len(c.Members))
					for _, m := range c.Members {
						sec := forward.Files[m.Path].SectionFingerprints[m.Index]
						fmt.Fprintf(out, "    %s:%d-%d\n", m.Path, sec.LineStart, sec.LineEnd)
					}
				}
				return nil
			}

			pairs := lsh.CandidatePairs(forward.Files)
			var duplicates []lsh.Pair
			for _, p := range pairs {
				if p.Combined >= threshold {
					duplicates = append(duplicates, p)
				}
			}

			if group {
				groups := consolidate.Consolidate(duplicates)
				fmt.Fprintf(out, "Consolidation groups (threshold %.2f)\n\n", threshold)
				if len(groups) == 0 {
					fmt.Fprintln(out, "  (none)")
					return nil
				}
				for _, g := range groups {
					fmt.Fprintf(out, "  canonical %s (score %.2f, avg similarity %.3f)\n",
						g.Canonical, g.CanonicalScore, g.AvgSimilarity)
					for _, m := range g.MergeInto {
						fmt.Fprintf(out, "    merge %s\n", m)
					}
				}
				return nil
			}

			fmt.Fprintf(out, "Duplicate pairs (threshold %.2f)\n\n", threshold)
			if len(duplicates) == 0 {
				fmt.Fprintln(out, "  (none)")
				return nil
			}
			for _, p := range duplicates {
				fmt.Fprintf(out, "  %.3f  %s <-> %s\n", p.Combined, p.Path1, p.Path2)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", -1, "minimum combined similarity for document pairs (default: 0.35)")
	cmd.Flags().BoolVar(&group, "group", false, "group duplicate pairs into consolidation components")
	cmd.Flags().BoolVar(&sections, "sections", false, "cluster near-duplicate sections instead of documents")
	cmd.Flags().Float64Var(&sectionThreshold, "section-threshold", -1, "minimum SimHash similarity for section clusters (default: 0.70)")
	cmd.Flags().IntVar(&minFiles, "min-files", 2, "minimum distinct files per section cluster")
	return cmd
}
