// Command digest is a thin CLI over the corpus digest engine: it indexes a
// documentation corpus and assembles token-budgeted markdown digests from
// it for downstream LLM consumption.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "digest",
		Short: "Index a documentation corpus and assemble LLM-ready context digests",
	}

	root.AddCommand(newBuildCommand())
	root.AddCommand(newAssembleCommand())
	root.AddCommand(newStatsCommand())
	root.AddCommand(newDiffCommand())
	root.AddCommand(newSimilarCommand())
	root.AddCommand(newDupesCommand())

	if err := root.Execute(); err != nil {
		slog.Error("digest command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
