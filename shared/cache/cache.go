package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"syllabus-stack/internal/models"
)

// Kind tags the payload shape stored in a cache entry.
type Kind string

const (
	KindText   Kind = "text"
	KindTopics Kind = "topics"
	KindVideos Kind = "videos"
)

// Entry is the closed set of values the cache can hold: raw completion text,
// a parsed topic list, or a video list. Exactly one payload field is set,
// selected by Kind; readers must go through the As* accessors so that a kind
// mismatch reads as absence rather than a zero value.
type Entry struct {
	Kind   Kind                 `json:"kind"`
	Text   string               `json:"text,omitempty"`
	Topics []models.TopicRecord `json:"topics,omitempty"`
	Videos []models.VideoRecord `json:"videos,omitempty"`
}

func TextEntry(text string) Entry {
	return Entry{Kind: KindText, Text: text}
}

func TopicsEntry(topics []models.TopicRecord) Entry {
	return Entry{Kind: KindTopics, Topics: topics}
}

func VideosEntry(videos []models.VideoRecord) Entry {
	return Entry{Kind: KindVideos, Videos: videos}
}

func (e Entry) AsText() (string, bool) {
	if e.Kind != KindText {
		return "", false
	}
	return e.Text, true
}

func (e Entry) AsTopics() ([]models.TopicRecord, bool) {
	if e.Kind != KindTopics {
		return nil, false
	}
	return e.Topics, true
}

func (e Entry) AsVideos() ([]models.VideoRecord, bool) {
	if e.Kind != KindVideos {
		return nil, false
	}
	return e.Videos, true
}

// Fingerprint derives the cache key for an operation and its exact input.
// Identical (kind, input) pairs always map to the same key.
func Fingerprint(kind, input string) string {
	sum := md5.Sum([]byte(kind + ":" + input))
	return hex.EncodeToString(sum[:])
}

// Cache is a content-addressed store with one JSON file per fingerprint.
// Entries never expire; individual files are safe to delete to force
// recomputation. Concurrent writes to the same key are last-writer-wins,
// which is fine because writes are idempotent recomputations.
type Cache struct {
	dir string
}

// New creates the cache directory if needed and returns a cache rooted there.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Get returns the entry stored under fingerprint, if any. Read failures and
// corrupt files are treated as a miss, never surfaced to the caller.
func (c *Cache) Get(fingerprint string) (Entry, bool) {
	data, err := os.ReadFile(c.entryPath(fingerprint))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: cache read failed for %s, treating as miss: %v", fingerprint, err)
		}
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("Warning: corrupt cache entry %s, treating as miss: %v", fingerprint, err)
		return Entry{}, false
	}

	switch entry.Kind {
	case KindText, KindTopics, KindVideos:
		return entry, true
	default:
		log.Printf("Warning: cache entry %s has unknown kind %q, treating as miss", fingerprint, entry.Kind)
		return Entry{}, false
	}
}

// Put stores the entry under fingerprint, overwriting unconditionally.
// The write goes through a temp file plus rename so readers never observe a
// partially written entry.
func (c *Cache) Put(fingerprint string, entry Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, fingerprint+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.entryPath(fingerprint)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	return nil
}

func (c *Cache) entryPath(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+".json")
}
