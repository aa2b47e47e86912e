package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpusdigest/digest/internal/config"
	"github.com/corpusdigest/digest/internal/docindex"
	"github.com/corpusdigest/digest/internal/lsh"
)

func newSimilarCommand() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "similar <index-dir> <file>",
		Short: "Rank indexed files by similarity to a reference file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexDir, refPath := args[0], args[1]

			forward, err := docindex.ReadForwardIndex(indexDir)
			if err != nil {
				return err
			}
			if _, ok := forward.Files[refPath]; !ok {
				return fmt.Errorf("file not in index: %s", refPath)
			}

			if threshold < 0 {
				threshold = 0.30
				if tuning, err := config.LoadTuning(); err == nil {
					threshold = tuning.Thresholds.SimilarFile
				}
			}

			results := lsh.SimilarToReference(forward.Files, refPath)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files similar to %s (threshold %.2f)\n\n", refPath, threshold)
			shown := 0
			for _, r := range results {
				if r.Combined < threshold {
					continue
				}
				shown++
				fmt.Fprintf(out, "  %.3f  %s  (jaccard %.3f, simhash %.3f)\n",
					r.Combined, r.Path2, r.Jaccard, r.SimHashSim)
			}
			if shown == 0 {
				fmt.Fprintln(out, "  (none above threshold)")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", -1, "minimum combined similarity to report (default: 0.30)")
	return cmd
}
