package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpusdigest/digest/digest"
	"github.com/corpusdigest/digest/internal/docindex"
)

func newAssembleCommand() *cobra.Command {
	var (
		indexDir    string
		corpusRoot  string
		maxTokens   int
		maxSections int
		xrefDepth   int
	)

	cmd := &cobra.Command{
		Use:   "assemble <index-dir> <question...>",
		Short: "Assemble a token-budgeted markdown context digest for a question",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexDir = args[0]
			query := strings.Join(args[1:], " ")
			if corpusRoot == "" {
				corpusRoot = strings.TrimSuffix(indexDir, "/.digest-index")
			}

			forward, err := docindex.ReadForwardIndex(indexDir)
			if err != nil {
				return err
			}

			out, err := digest.Assemble(cmd.Context(), query, forward, corpusRoot,
				digest.WithMaxTokens(maxTokens),
				digest.WithMaxSections(maxSections),
				digest.WithXrefDepth(xrefDepth),
			)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusRoot, "corpus-root", "", "corpus root to read section content from (default: derived from index-dir)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 8000, "global token budget for the digest")
	cmd.Flags().IntVar(&maxSections, "max-sections", 20, "maximum primary sections to retrieve")
	cmd.Flags().IntVar(&xrefDepth, "xref-depth", 0, "cross-reference expansion depth (0 disables)")

	return cmd
}
