package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpusdigest/digest/internal/docindex"
	"github.com/corpusdigest/digest/internal/fingerprint"
)

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <index-dir> <file1> <file2>",
		Short: "Report shared/unique keywords and headings between two indexed files",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexDir, path1, path2 := args[0], args[1], args[2]

			forward, err := docindex.ReadForwardIndex(indexDir)
			if err != nil {
				return err
			}

			entry1, ok := forward.Files[path1]
			if !ok {
				return fmt.Errorf("file not in index: %s", path1)
			}
			entry2, ok := forward.Files[path2]
			if !ok {
				return fmt.Errorf("file not in index: %s", path2)
			}

			kw1 := entry1.KeywordSet()
			kw2 := entry2.KeywordSet()

			var shared, only1, only2 []string
			for k := range kw1 {
				if kw2[k] {
					shared = append(shared, k)
				} else {
					only1 = append(only1, k)
				}
			}
			for k := range kw2 {
				if !kw1[k] {
					only2 = append(only2, k)
				}
			}
			sort.Strings(shared)
			sort.Strings(only1)
			sort.Strings(only2)

			jaccard := fingerprint.JaccardSimilarity(kw1, kw2)
			simhashSim := fingerprint.SimHashSimilarity(entry1.SimHash, entry2.SimHash)
			combined := jaccard*0.6 + simhashSim*0.4

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Comparing %s <-> %s\n\n", path1, path2)
			fmt.Fprintf(out, "  Jaccard similarity:   %.3f\n", jaccard)
			fmt.Fprintf(out, "  SimHash similarity:   %.3f\n", simhashSim)
			fmt.Fprintf(out, "  Combined similarity:  %.3f\n\n", combined)

			fmt.Fprintf(out, "Shared keywords (%d): %s\n\n", len(shared), strings.Join(shared, ", "))
			fmt.Fprintf(out, "Only in %s (%d): %s\n\n", path1, len(only1), strings.Join(only1, ", "))
			fmt.Fprintf(out, "Only in %s (%d): %s\n\n", path2, len(only2), strings.Join(only2, ", "))

			fmt.Fprintln(out, "Headings:")
			fmt.Fprintf(out, "  %s:\n", path1)
			for _, h := range entry1.Headings {
				fmt.Fprintf(out, "    %d: %s\n", h.Line, h.Text)
			}
			fmt.Fprintf(out, "  %s:\n", path2)
			for _, h := range entry2.Headings {
				fmt.Fprintf(out, "    %d: %s\n", h.Line, h.Text)
			}

			return nil
		},
	}

	return cmd
}
