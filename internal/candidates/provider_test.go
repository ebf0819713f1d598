package candidates

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	global := buildPrompt("August 15", "08", "15", false)
	if !strings.Contains(global, "August 15 (08-15)") {
		t.Errorf("prompt missing date line: %q", global)
	}
	if !strings.Contains(global, `"events"`) {
		t.Errorf("prompt missing schema hint: %q", global)
	}
	if !strings.Contains(global, "global items") {
		t.Errorf("global prompt missing global clause: %q", global)
	}

	regional := buildPrompt("August 15", "08", "15", true)
	if !strings.Contains(regional, "ONLY on India-related") {
		t.Errorf("regional prompt missing region clause: %q", regional)
	}
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider("", "gemini-2.0-flash", 36, 0); err == nil {
		t.Fatal("empty API key should be rejected")
	}
}
