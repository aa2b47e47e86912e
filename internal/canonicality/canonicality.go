// Package canonicality implements the pure path-based canonicality
// heuristic used by the section retriever, consolidation's canonical
// election, and the standalone canonicality report.
package canonicality

import "strings"

// Score computes a canonicality score in [0.0, 1.0] from a document path
// alone. Higher scores indicate a more authoritative, less
// disposable document.
func Score(path string) float64 {
	lower := strings.ToLower(path)
	score := 0.5

	if strings.Contains(lower, "docs/adr/") || strings.Contains(lower, "docs/architecture/") {
		score += 0.2
	}
	if strings.Contains(lower, "docs/index/") {
		score += 0.15
	}
	if strings.Contains(lower, "scratch") || strings.Contains(lower, "archive") || strings.Contains(lower, "old") {
		score -= 0.3
	}
	if strings.Contains(lower, "deprecated") || strings.Contains(lower, "backup") {
		score -= 0.25
	}

	filename := lower
	if idx := strings.LastIndex(lower, "/"); idx >= 0 {
		filename = lower[idx+1:]
	}
	if strings.Contains(filename, "readme") || strings.Contains(filename, "index") {
		score += 0.1
	}
	if strings.Contains(filename, "guide") || strings.Contains(filename, "runbook") || strings.Contains(filename, "plan") {
		score += 0.1
	}

	if score < 0.0 {
		score = 0.0
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
