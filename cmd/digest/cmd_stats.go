package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpusdigest/digest/internal/docindex"
)

func newStatsCommand() *cobra.Command {
	var topKeywords int

	cmd := &cobra.Command{
		Use:   "stats <index-dir>",
		Short: "Print corpus totals and the top stemmed terms by document frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexDir := args[0]

			forward, err := docindex.ReadForwardIndex(indexDir)
			if err != nil {
				return err
			}
			reverse, err := docindex.ReadReverseIndex(indexDir)
			if err != nil {
				return err
			}
			stats, err := docindex.ReadStats(indexDir)
			if err != nil {
				return err
			}

			totalBodyKeywords := 0
			for _, doc := range forward.Files {
				totalBodyKeywords += len(doc.BodyKeywords)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Index Statistics")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Total files:       %d\n", stats.TotalFiles)
			fmt.Fprintf(out, "  Unique keywords:   %d\n", len(reverse.Keywords))
			fmt.Fprintf(out, "  Total headings:    %d\n", stats.TotalHeadings)
			fmt.Fprintf(out, "  Body keywords:     %d\n", totalBodyKeywords)
			fmt.Fprintf(out, "  Total links:       %d\n", stats.TotalLinks)
			fmt.Fprintf(out, "  Index version:     %d\n", forward.Version)
			fmt.Fprintf(out, "  Indexed at:        %s\n", forward.IndexedAt)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Top %d Keywords\n\n", topKeywords)

			type count struct {
				term string
				n    int
			}
			counts := make([]count, 0, len(reverse.Keywords))
			for term, postings := range reverse.Keywords {
				docs := make(map[string]bool, len(postings))
				for _, p := range postings {
					docs[p.File] = true
				}
				counts = append(counts, count{term, len(docs)})
			}
			sort.Slice(counts, func(i, j int) bool {
				if counts[i].n != counts[j].n {
					return counts[i].n > counts[j].n
				}
				return counts[i].term < counts[j].term
			})
			if len(counts) > topKeywords {
				counts = counts[:topKeywords]
			}
			for _, c := range counts {
				barLen := c.n / 2
				if barLen > 40 {
					barLen = 40
				}
				fmt.Fprintf(out, "  %20s %4d %s\n", c.term, c.n, strings.Repeat("=", barLen))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topKeywords, "top", 20, "number of top keywords to print")
	return cmd
}
