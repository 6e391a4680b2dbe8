package cache

import (
	"os"
	"path/filepath"
	"testing"

	"syllabus-stack/internal/models"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("llm", "some prompt")
	b := Fingerprint("llm", "some prompt")
	if a != b {
		t.Errorf("Fingerprint not deterministic: %s != %s", a, b)
	}

	if Fingerprint("llm", "input") == Fingerprint("videos", "input") {
		t.Error("Different kinds produced the same fingerprint")
	}
	if Fingerprint("llm", "a") == Fingerprint("llm", "b") {
		t.Error("Different inputs produced the same fingerprint")
	}
}

func TestRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	t.Run("Text", func(t *testing.T) {
		fp := Fingerprint("llm", "prompt")
		if err := store.Put(fp, TextEntry("a completion")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		entry, ok := store.Get(fp)
		if !ok {
			t.Fatal("Get missed after Put")
		}
		text, ok := entry.AsText()
		if !ok || text != "a completion" {
			t.Errorf("AsText() = %q, %v, want %q, true", text, ok, "a completion")
		}
	})

	t.Run("Topics", func(t *testing.T) {
		topics := []models.TopicRecord{
			{Title: "Sorting Algorithms", Description: "Comparison and non-comparison sorting."},
			{Title: "Graph Traversal", Description: "BFS and DFS fundamentals."},
		}
		fp := Fingerprint("topics", "doc text")
		if err := store.Put(fp, TopicsEntry(topics)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		entry, ok := store.Get(fp)
		if !ok {
			t.Fatal("Get missed after Put")
		}
		got, ok := entry.AsTopics()
		if !ok || len(got) != 2 {
			t.Fatalf("AsTopics() = %v, %v, want 2 topics", got, ok)
		}
		if got[0] != topics[0] || got[1] != topics[1] {
			t.Errorf("Topics changed across round trip: %v", got)
		}
	})

	t.Run("Videos", func(t *testing.T) {
		records := []models.VideoRecord{
			{URL: "https://www.youtube.com/watch?v=abc", Title: "Intro", Duration: "12:34", Views: "1000"},
		}
		fp := Fingerprint("videos", "sorting|3")
		if err := store.Put(fp, VideosEntry(records)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		entry, ok := store.Get(fp)
		if !ok {
			t.Fatal("Get missed after Put")
		}
		got, ok := entry.AsVideos()
		if !ok || len(got) != 1 || got[0] != records[0] {
			t.Errorf("AsVideos() = %v, %v, want %v", got, ok, records)
		}
	})
}

func TestGetUnsetKeyMisses(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	if _, ok := store.Get(Fingerprint("llm", "never stored")); ok {
		t.Error("Get on unset key reported a hit")
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	tests := []struct {
		name    string
		content string
	}{
		{"Truncated JSON", `{"kind":"text","tex`},
		{"Not JSON at all", "not json"},
		{"Unknown kind", `{"kind":"blob","text":"x"}`},
		{"Missing kind", `{"text":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := Fingerprint("llm", tt.name)
			path := filepath.Join(dir, fp+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to plant corrupt entry: %v", err)
			}

			if _, ok := store.Get(fp); ok {
				t.Error("Corrupt entry reported as hit")
			}
		})
	}
}

func TestKindMismatchReadsAsAbsent(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	fp := Fingerprint("llm", "prompt")
	if err := store.Put(fp, TextEntry("completion")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok := store.Get(fp)
	if !ok {
		t.Fatal("Get missed after Put")
	}
	if _, ok := entry.AsTopics(); ok {
		t.Error("AsTopics succeeded on a text entry")
	}
	if _, ok := entry.AsVideos(); ok {
		t.Error("AsVideos succeeded on a text entry")
	}
}

func TestPutOverwrites(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	fp := Fingerprint("llm", "prompt")
	if err := store.Put(fp, TextEntry("first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(fp, TextEntry("second")); err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}

	entry, _ := store.Get(fp)
	if text, _ := entry.AsText(); text != "second" {
		t.Errorf("Get after overwrite = %q, want %q", text, "second")
	}
}
