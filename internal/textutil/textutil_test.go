package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNorm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  Multiple   spaces  ", "multiple spaces"},
		{"Treaty-of-Versailles (1919)", "treaty of versailles 1919"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Norm(tt.in); got != tt.want {
			t.Errorf("Norm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripKnownPrefixes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Birthday of Sarvepalli Radhakrishnan", "Sarvepalli Radhakrishnan"},
		{"Death of Aurangzeb", "Aurangzeb"},
		{"Event: Launch of Chandrayaan-2", "Chandrayaan-2"},
		{"Independence of India", "India"},
		{"Jawaharlal Nehru (politician)", "Jawaharlal Nehru"},
		{"Plain title", "Plain title"},
	}
	for _, tt := range tests {
		if got := StripKnownPrefixes(tt.in); got != tt.want {
			t.Errorf("StripKnownPrefixes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJaccard(t *testing.T) {
	if got := Jaccard("Independence of India", "Independence of India"); got != 1.0 {
		t.Errorf("identical strings should score 1.0, got %v", got)
	}
	if got := Jaccard("Independence of India", "Battle of Plassey"); got >= 0.5 {
		t.Errorf("unrelated strings should score low, got %v", got)
	}
	// Short tokens ("of") are ignored entirely.
	if got := Jaccard("of of of", "of"); got != 0 {
		t.Errorf("short-token-only strings should score 0, got %v", got)
	}
	// Similarity is symmetric.
	a, b := "Quit India Movement launched", "launch of the Quit India Movement"
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Error("Jaccard should be symmetric")
	}
}

func TestTrimSummary(t *testing.T) {
	short := "A short summary."
	if got := TrimSummary(short, 560); got != short {
		t.Errorf("short text should pass through, got %q", got)
	}

	if got := TrimSummary("", 560); got != "" {
		t.Errorf("empty text should stay empty, got %q", got)
	}

	// Long text gets cut at a sentence boundary when one exists.
	sentence := strings.Repeat("word ", 30) + "end. "
	long := strings.Repeat(sentence, 10)
	got := TrimSummary(long, 560)
	if len(got) > 560 {
		t.Errorf("trimmed text exceeds budget: %d chars", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("expected sentence-boundary cut, got suffix %q", got[len(got)-10:])
	}

	// Whitespace runs collapse.
	if got := TrimSummary("a\n\n  b\tc", 560); got != "a b c" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
}

func TestTrimSummaryRuneSafe(t *testing.T) {
	// Accented text where every other byte is a rune continuation: a
	// hard cut at an odd offset would split a rune.
	accented := strings.Repeat("é", 400)
	for _, max := range []int{15, 101} {
		got := TrimSummary(accented, max)
		if !utf8.ValidString(got) {
			t.Errorf("TrimSummary(max=%d) produced invalid UTF-8: %q", max, got)
		}
		if len(got) > max {
			t.Errorf("TrimSummary(max=%d) returned %d bytes", max, len(got))
		}
		if got == "" {
			t.Errorf("TrimSummary(max=%d) returned empty string", max)
		}
	}
}

func TestToISO(t *testing.T) {
	if got := ToISO(1947, 8, 15); got != "1947-08-15" {
		t.Errorf("ToISO = %q", got)
	}
	if got := ToISO(44, 3, 5); got != "0044-03-05" {
		t.Errorf("ToISO should zero-pad years, got %q", got)
	}
}

func TestISOToDisplay(t *testing.T) {
	if got := ISOToDisplay("1947-08-15"); got != "August 15, 1947" {
		t.Errorf("ISOToDisplay = %q", got)
	}
	if got := ISOToDisplay(""); got != "" {
		t.Errorf("empty input should stay empty, got %q", got)
	}
	if got := ISOToDisplay("not-a-date"); got != "not-a-date" {
		t.Errorf("non-ISO input should pass through, got %q", got)
	}
}

func TestStripHTML(t *testing.T) {
	if got := StripHTML("<i>Mahatma</i> Gandhi"); got != "Mahatma Gandhi" {
		t.Errorf("StripHTML = %q", got)
	}
}
