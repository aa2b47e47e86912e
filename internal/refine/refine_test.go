package refine

import (
	"strings"
	"testing"
)

func TestRefineDetachesHeadingAndPreservesCodeBlock(t *testing.T) {
	body := "## Deploy Steps\nRun the deployment carefully and check logs afterward for errors.\n```\nkubectl apply -f deploy.yaml\n```"
	out := Refine(body, []string{"deploy"}, false, 1000)
	if strings.Contains(out, "## Deploy Steps") {
		t.Error("expected the leading heading line to be detached")
	}
	if !strings.Contains(out, "kubectl apply -f deploy.yaml") {
		t.Errorf("expected the fenced code block to be preserved verbatim, got %q", out)
	}
}

func TestRefinePreservesBulletsAndSubheadings(t *testing.T) {
	body := "Intro sentence describing the process in full detail here.\n- first bullet item\n- second bullet item\n### Notes\nFinal prose sentence wrapping up the section nicely."
	out := Refine(body, nil, false, 1000)
	if !strings.Contains(out, "- first bullet item") {
		t.Errorf("expected bullet items to be preserved, got %q", out)
	}
	if !strings.Contains(out, "### Notes") {
		t.Errorf("expected subheading to be preserved, got %q", out)
	}
}

func TestRefineDropsShortAndNonAlnumSentences(t *testing.T) {
	body := "Ok.\n; not alnum start sentence here that is long enough to qualify otherwise.\nThis sentence is long enough and starts with a letter so it should be kept for sure."
	out := Refine(body, nil, false, 1000)
	if strings.Contains(out, "Ok.") {
		t.Error("expected the short sentence 'Ok' to be dropped")
	}
	if strings.Contains(out, "not alnum start") {
		t.Error("expected the sentence starting with ';' to be dropped")
	}
}

func TestRefineTruncatesToTokenBudget(t *testing.T) {
	body := strings.Repeat("This is a reasonably long sentence about deployment and monitoring. ", 50)
	out := Refine(body, []string{"deployment"}, false, 10)
	if len(out) > 10*charsPerToken {
		t.Errorf("len(out) = %d, want <= %d (10-token budget)", len(out), 10*charsPerToken)
	}
}

func TestRefineScoresQueryTermsHigher(t *testing.T) {
	body := "The kubernetes cluster requires careful rollback planning before any production deploy. " +
		"A completely unrelated sentence about gardening and flowers blooming each spring. " +
		"Another filler sentence discussing the weather patterns over the last decade in detail."
	out := Refine(body, []string{"rollback"}, false, 1000)
	if !strings.Contains(out, "rollback") {
		t.Errorf("expected the query-matching sentence to survive retention, got %q", out)
	}
}
