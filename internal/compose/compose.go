// Package compose implements the Digest Composer: assembles
// the final token-budgeted markdown digest from refined section content.
package compose

import (
	"fmt"
	"strings"
)

const charsPerToken = 4

// DocumentSummary is one entry in the "Top Relevant Documents" list.
type DocumentSummary struct {
	Path          string
	CombinedScore float64
	SectionCount  int
}

// Section is one refined, ready-to-emit section. The composer never
// reorders sections; callers must pass them in final emission order.
type Section struct {
	Heading        string
	Path           string
	LineStart      int
	LineEnd        int
	RefinedContent string
}

// Input bundles everything the composer needs.
type Input struct {
	Query     string
	Timestamp string
	MaxTokens int
	Documents []DocumentSummary
	Sections  []Section
}

const minTruncationRoomTokens = 50

// Compose produces the final markdown digest: header, up to
// 10 top documents, distilled content in the given order, then a metadata
// footer. Maintains a running token estimate (length/4); when a section
// would overflow max_tokens, truncates it to fill remaining budget (with a
// trailing marker) if at least ~50 tokens of room remain, else stops and
// appends a truncation marker.
func Compose(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Context Digest\n\n")
	fmt.Fprintf(&b, "**Query:** %s\n\n", in.Query)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", in.Timestamp)
	fmt.Fprintf(&b, "**Token budget:** %d\n\n", in.MaxTokens)
	fmt.Fprintf(&b, "**Sections:** %d\n\n", len(in.Sections))

	b.WriteString("## Top Relevant Documents\n\n")
	docs := in.Documents
	if len(docs) > 10 {
		docs = docs[:10]
	}
	for _, d := range docs {
		fmt.Fprintf(&b, "- `%s` — score %.3f, %d section(s)\n", d.Path, d.CombinedScore, d.SectionCount)
	}
	b.WriteString("\n## Distilled Content\n\n")

	used := estimateTokens(b.String())
	truncated := false

	for _, sec := range in.Sections {
		header := fmt.Sprintf("### %s (from %s)\n\n%s:%d-%d\n\n", sec.Heading, sec.Path, sec.Path, sec.LineStart, sec.LineEnd)
		body := sec.RefinedContent
		chunk := header + body + "\n\n"

		chunkTokens := estimateTokens(chunk)
		if used+chunkTokens <= in.MaxTokens {
			b.WriteString(chunk)
			used += chunkTokens
			continue
		}

		remaining := in.MaxTokens - used
		if remaining >= minTruncationRoomTokens {
			headerTokens := estimateTokens(header)
			bodyBudget := remaining - headerTokens
			if bodyBudget < 0 {
				bodyBudget = 0
			}
			truncatedBody := truncateChars(body, bodyBudget*charsPerToken)
			b.WriteString(header)
			b.WriteString(truncatedBody)
			b.WriteString("\n\n*[truncated: token budget reached]*\n\n")
			used = in.MaxTokens
		} else {
			b.WriteString("\n*[truncated: token budget reached]*\n\n")
		}
		truncated = true
		break
	}

	b.WriteString("## Metadata\n\n")
	b.WriteString("Canonicality legend: higher scores indicate more authoritative, less disposable documents (ADR/architecture docs score highest; scratch/archive/deprecated content scores lowest).\n\n")
	fmt.Fprintf(&b, "Estimated tokens used: %d\n\n", used)
	if truncated {
		b.WriteString("Note: this digest was truncated to fit the token budget.\n\n")
	}
	b.WriteString("This digest was assembled for LLM consumption: treat it as grounding context, not as a verbatim source — prefer citing the original file paths and line ranges given per section.\n")

	return b.String()
}

func estimateTokens(s string) int {
	return len(s) / charsPerToken
}

func truncateChars(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(s) <= maxChars {
		return s
	}
	return s[:maxChars]
}
