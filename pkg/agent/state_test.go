package agent

import (
	"strings"
	"testing"
)

func TestResearchTopicSingleMessage(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: "What is the capital of France?"}}
	if got := ResearchTopic(msgs); got != "What is the capital of France?" {
		t.Errorf("topic = %q", got)
	}
}

func TestResearchTopicMultiMessage(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "Tell me about Go"},
		{Role: RoleAssistant, Content: "Go is a programming language."},
		{Role: RoleUser, Content: "Who designed it?"},
	}
	want := "User: Tell me about Go\nAssistant: Go is a programming language.\nUser: Who designed it?"
	if got := ResearchTopic(msgs); got != want {
		t.Errorf("topic = %q, want %q", got, want)
	}

	// Pure function of the history: re-derivation yields the same string.
	if again := ResearchTopic(msgs); again != want {
		t.Errorf("re-derived topic = %q", again)
	}
}

func TestTruncateSnippet(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantLen   int
		truncated bool
	}{
		{"empty", 0, 0, false},
		{"short", 50, 50, false},
		{"one below limit", 199, 199, false},
		{"at limit", 200, 200, false},
		{"one above limit", 201, 203, true},
		{"well above limit", 500, 203, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Repeat("x", tt.length)
			got := truncateSnippet(content)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.truncated {
				if !strings.HasSuffix(got, "...") {
					t.Error("missing ellipsis marker")
				}
				if got[:200] != content[:200] {
					t.Error("snippet prefix differs from content")
				}
			} else if got != content {
				t.Errorf("content below limit was modified: %q", got)
			}
		})
	}
}

func TestTruncateSnippetMultibyte(t *testing.T) {
	content := strings.Repeat("日", 201)
	got := truncateSnippet(content)
	runes := []rune(got)
	if len(runes) != 203 {
		t.Errorf("rune length = %d, want 203", len(runes))
	}
	if string(runes[:200]) != strings.Repeat("日", 200) {
		t.Error("multibyte content corrupted by truncation")
	}
}
