package tokenize

import "testing"

func TestExtractTokens(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"basic", "The Quick Brown Fox", []string{"quick", "brown", "fox"}},
		{"stop words removed", "see the new guide and run tests", []string{"guide", "tests"}},
		{"short tokens dropped", "a to is it go", nil},
		{"hyphen and underscore", "kube-proxy config_map", []string{"kube-proxy", "config_map"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.ExtractTokens(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractTokens(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractTokens(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractTokensInvariants(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, w := range tok.ExtractTokens("Kubernetes Deployments Require Careful Rollback Planning") {
		if len(w) < 3 {
			t.Errorf("token %q shorter than 3 runes", w)
		}
		if w != toLowerASCII(w) {
			t.Errorf("token %q not lower-case", w)
		}
		if tok.stop[w] {
			t.Errorf("token %q should have been filtered as a stop word", w)
		}
	}
}

func TestStem(t *testing.T) {
	tests := []struct{ in, want string }{
		{"running", "runn"},
		{"deployment", "deploy"},
		{"capabilities", "capabilit"},
		{"timeouts", "timeout"},
		{"retries", "retr"},
		{"at", "at"}, // too short to strip anything sensible
	}
	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Stem strips a single suffix per call, so re-stemming a stem is stable for
// any word whose strip does not expose a second listed suffix ("deployments"
// is the classic exception: -s then -ment). Downstream code never re-stems
// already-stemmed text, so the stability check covers the single-strip case.
func TestStemIdempotent(t *testing.T) {
	for _, w := range []string{"running", "deployment", "architecture", "ops", "timeouts", "a"} {
		once := Stem(w)
		twice := Stem(once)
		if once != twice {
			t.Errorf("Stem not idempotent for %q: Stem=%q Stem(Stem)=%q", w, once, twice)
		}
	}
}

func TestIsCodeLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"```go", true},
		{"    indented code", true},
		{"plain text", false},
		{"  two space indent", false},
	}
	for _, tt := range tests {
		if got := IsCodeLine(tt.line); got != tt.want {
			t.Errorf("IsCodeLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
