package syllabusprocessor

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"syllabus-stack/shared/cache"
)

// stubLLM scripts completion behavior for tests. The respond function sees
// the full prompt; returning an error models "no result".
type stubLLM struct {
	calls   int32
	respond func(prompt string) (string, error)
}

func (s *stubLLM) Query(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.respond(prompt)
}

func (s *stubLLM) callCount() int32 {
	return atomic.LoadInt32(&s.calls)
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	store, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return store
}

func isTitlePrompt(prompt string) bool {
	return strings.Contains(prompt, "2-4 word title")
}

func TestExtractTwoDescriptionBlocks(t *testing.T) {
	bulk := strings.Join([]string{
		"Topic: Sorting",
		"Description: This module covers comparison sorts.",
		"It also covers non-comparison sorts.",
		"Topic: Graphs",
		"Description: Graph traversal fundamentals.",
		"Including BFS and DFS.",
	}, "\n")

	llm := &stubLLM{respond: func(prompt string) (string, error) {
		if isTitlePrompt(prompt) {
			if strings.Contains(prompt, "comparison sorts") {
				return "Sorting Algorithms", nil
			}
			return "Graph Traversal", nil
		}
		return bulk, nil
	}}

	extractor := NewExtractor(llm, newTestCache(t))
	topics := extractor.Extract(context.Background(), "syllabus text")

	if len(topics) != 2 {
		t.Fatalf("Extract returned %d topics, want 2", len(topics))
	}

	wantFirst := "This module covers comparison sorts. It also covers non-comparison sorts."
	if topics[0].Description != wantFirst {
		t.Errorf("First description = %q, want %q", topics[0].Description, wantFirst)
	}
	if topics[0].Title != "Sorting Algorithms" {
		t.Errorf("First title = %q, want %q", topics[0].Title, "Sorting Algorithms")
	}

	wantSecond := "Graph traversal fundamentals. Including BFS and DFS."
	if topics[1].Description != wantSecond {
		t.Errorf("Second description = %q, want %q", topics[1].Description, wantSecond)
	}
	if topics[1].Title != "Graph Traversal" {
		t.Errorf("Second title = %q, want %q", topics[1].Title, "Graph Traversal")
	}
}

func TestExtractStripsEmphasisMarkup(t *testing.T) {
	bulk := "**Description:** _Pointers and memory layout._"

	llm := &stubLLM{respond: func(prompt string) (string, error) {
		if isTitlePrompt(prompt) {
			return "*Memory Management*", nil
		}
		return bulk, nil
	}}

	extractor := NewExtractor(llm, newTestCache(t))
	topics := extractor.Extract(context.Background(), "doc")

	if len(topics) != 1 {
		t.Fatalf("Extract returned %d topics, want 1", len(topics))
	}
	if topics[0].Description != "Pointers and memory layout." {
		t.Errorf("Description = %q, markup not stripped", topics[0].Description)
	}
	if topics[0].Title != "Memory Management" {
		t.Errorf("Title = %q, markup not stripped", topics[0].Title)
	}
}

func TestExtractDropsEchoedLabels(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"Literal topic", "Topic"},
		{"Literal description", "Description"},
		{"Label with colon", "Topic:"},
		{"Mixed case", "DESCRIPTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &stubLLM{respond: func(prompt string) (string, error) {
				if isTitlePrompt(prompt) {
					return tt.title, nil
				}
				return "Description: Some real content here.", nil
			}}

			extractor := NewExtractor(llm, newTestCache(t))
			topics := extractor.Extract(context.Background(), "doc")

			if len(topics) != 0 {
				t.Errorf("Record with echoed label title %q survived: %v", tt.title, topics)
			}
		})
	}
}

func TestExtractFallbackTitle(t *testing.T) {
	llm := &stubLLM{respond: func(prompt string) (string, error) {
		if isTitlePrompt(prompt) {
			return "", context.DeadlineExceeded
		}
		return "Description: Recursion and divide and conquer.", nil
	}}

	extractor := NewExtractor(llm, newTestCache(t))
	topics := extractor.Extract(context.Background(), "doc")

	if len(topics) != 1 {
		t.Fatalf("Extract returned %d topics, want 1", len(topics))
	}
	if topics[0].Title != "Unknown Topic" {
		t.Errorf("Title = %q, want fallback %q", topics[0].Title, "Unknown Topic")
	}
}

func TestExtractEmptyBulkResponse(t *testing.T) {
	llm := &stubLLM{respond: func(prompt string) (string, error) {
		return "", context.DeadlineExceeded
	}}

	extractor := NewExtractor(llm, newTestCache(t))
	topics := extractor.Extract(context.Background(), "doc")

	if len(topics) != 0 {
		t.Errorf("Extract returned %d topics from an absent bulk response, want 0", len(topics))
	}
}

func TestExtractTitlePromptStripsBoilerplate(t *testing.T) {
	var titlePromptSeen string
	llm := &stubLLM{respond: func(prompt string) (string, error) {
		if isTitlePrompt(prompt) {
			titlePromptSeen = prompt
			return "Sorting Algorithms", nil
		}
		return "Description: This module covers sorting networks.", nil
	}}

	extractor := NewExtractor(llm, newTestCache(t))
	extractor.Extract(context.Background(), "doc")

	if strings.Contains(titlePromptSeen, "This module covers ") {
		t.Errorf("Title prompt still carries boilerplate lead-in: %q", titlePromptSeen)
	}
	if !strings.Contains(titlePromptSeen, "sorting networks.") {
		t.Errorf("Title prompt lost the description body: %q", titlePromptSeen)
	}
}

func TestExtractListIsCachedByDocument(t *testing.T) {
	llm := &stubLLM{respond: func(prompt string) (string, error) {
		if isTitlePrompt(prompt) {
			return "Sorting Algorithms", nil
		}
		return "Description: Comparison sorting.", nil
	}}

	store := newTestCache(t)
	extractor := NewExtractor(llm, store)

	first := extractor.Extract(context.Background(), "same document")
	callsAfterFirst := llm.callCount()

	second := extractor.Extract(context.Background(), "same document")
	if got := llm.callCount(); got != callsAfterFirst {
		t.Errorf("Second extraction issued %d extra completions, want 0", got-callsAfterFirst)
	}

	if len(first) != len(second) || len(first) == 0 {
		t.Fatalf("Cached extraction differs: first %v, second %v", first, second)
	}
	if first[0] != second[0] {
		t.Errorf("Cached topic differs: %v vs %v", first[0], second[0])
	}
}
