package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpusdigest/digest/digest"
)

func newBuildCommand() *cobra.Command {
	var (
		indexDir   string
		extensions []string
		roots      []string
		exclude    []string
	)

	cmd := &cobra.Command{
		Use:   "build <corpus-root>",
		Short: "Walk a corpus and write its forward/reverse index and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpusRoot := args[0]
			if indexDir == "" {
				indexDir = corpusRoot + "/.digest-index"
			}

			var opts []digest.BuildOption
			if len(extensions) > 0 {
				opts = append(opts, digest.WithExtensions(extensions))
			}
			if len(roots) > 0 {
				opts = append(opts, digest.WithRoots(roots))
			}
			if len(exclude) > 0 {
				opts = append(opts, digest.WithExcludePatterns(exclude))
			}

			result, err := digest.Build(cmd.Context(), corpusRoot, indexDir, opts...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files (%d keywords, %d headings, %d links) into %s\n",
				result.Stats.TotalFiles, result.Stats.TotalKeywords,
				result.Stats.TotalHeadings, result.Stats.TotalLinks, indexDir)
			if len(result.DuplicateGroups) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Found %d duplicate group(s):\n", len(result.DuplicateGroups))
				for _, g := range result.DuplicateGroups {
					fmt.Fprintf(cmd.OutOrStdout(), "  canonical %s <- %v (avg similarity %.3f)\n",
						g.Canonical, g.MergeInto, g.AvgSimilarity)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indexDir, "index-dir", "", "directory to write the index to (default: <corpus-root>/.digest-index)")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to index (default: md,txt,rst)")
	cmd.Flags().StringSliceVar(&roots, "root", nil, "restrict the walk to these corpus-relative roots")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "additional substrings to exclude")

	return cmd
}
