package syllabusprocessor

import (
	"context"
	"log"
	"strings"

	"syllabus-stack/internal/models"
	"syllabus-stack/shared/cache"
)

// LLM is the completion collaborator used by the extractor and enricher.
// An error return means absence of a result, not a pipeline failure.
type LLM interface {
	Query(ctx context.Context, prompt string) (string, error)
}

const topicListPrompt = `Analyze this text and extract ALL technical topics being taught.
Ignore headings, sections, or administrative text.
Each topic should be a specific concept or skill.
For every topic output exactly two lines:
Topic: <short topic label>
Description: <the passage describing what is taught>

Rules:
- Extract every possible topic, even if briefly mentioned
- Break down composite topics into individual components
- Exclude course logistics, grading policies, or administrative text
- Focus on actual learning content
- Each topic should be granular - break larger topics into specific sub-topics`

const titlePrompt = `Provide a concise 2-4 word title for the following topic description.
Respond with the title only, no punctuation or commentary.

`

// fallbackTitle is used when title derivation yields nothing.
const fallbackTitle = "Unknown Topic"

// boilerplatePrefixes are lead-in phrases stripped from a description before
// asking the model for a title.
var boilerplatePrefixes = []string{
	"This module covers ",
	"This section focuses on ",
}

// Extractor turns raw syllabus text into discrete topic records via one bulk
// completion plus one short title completion per topic.
type Extractor struct {
	llm   LLM
	store *cache.Cache
}

func NewExtractor(llm LLM, store *cache.Cache) *Extractor {
	return &Extractor{
		llm:   llm,
		store: store,
	}
}

// Extract returns the ordered topic records for a document. The full list is
// cached keyed by the document text, so a repeated run on the same document
// issues no completions at all. A bulk prompt that yields no content degrades
// to an empty list.
func (e *Extractor) Extract(ctx context.Context, docText string) []models.TopicRecord {
	fingerprint := cache.Fingerprint("topics", docText)
	if entry, ok := e.store.Get(fingerprint); ok {
		if topics, ok := entry.AsTopics(); ok {
			return topics
		}
	}

	raw, err := e.llm.Query(ctx, topicListPrompt+"\n\nText to analyze:\n"+docText)
	if err != nil {
		log.Printf("Warning: topic extraction produced no content: %v", err)
		return nil
	}

	topics := e.parseTopics(ctx, raw)

	if err := e.store.Put(fingerprint, cache.TopicsEntry(topics)); err != nil {
		log.Printf("Warning: failed to cache topic list: %v", err)
	}

	return topics
}

// parseTopics walks the bulk response line by line. A "Description:" line
// flushes the running buffer and starts a new one; any other non-empty line
// continues the current description, so descriptions may span multiple lines.
// "Topic:" lines delimit blocks and are not part of any description.
func (e *Extractor) parseTopics(ctx context.Context, raw string) []models.TopicRecord {
	var topics []models.TopicRecord
	var buffer []string
	accumulating := false

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		description := strings.Join(buffer, " ")
		buffer = nil

		title := e.deriveTitle(ctx, description)
		// Guard against the model echoing the prompt's own field labels
		normalized := strings.ToLower(strings.TrimRight(strings.TrimSpace(title), ":."))
		if normalized == "topic" || normalized == "description" {
			return
		}

		topics = append(topics, models.TopicRecord{
			Title:       title,
			Description: description,
		})
	}

	for _, line := range strings.Split(raw, "\n") {
		line = stripMarkup(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Description:"):
			flush()
			accumulating = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, "Description:")); rest != "" {
				buffer = append(buffer, rest)
			}
		case strings.HasPrefix(line, "Topic:"):
			flush()
			accumulating = false
		case accumulating:
			buffer = append(buffer, line)
		}
	}
	flush()

	return topics
}

// deriveTitle asks the model for a short label for the description, after
// dropping boilerplate lead-ins that would otherwise dominate the prompt.
func (e *Extractor) deriveTitle(ctx context.Context, description string) string {
	trimmed := description
	for _, prefix := range boilerplatePrefixes {
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}

	raw, err := e.llm.Query(ctx, titlePrompt+trimmed)
	if err != nil {
		log.Printf("Warning: title derivation failed, using fallback: %v", err)
		return fallbackTitle
	}

	title := stripMarkup(strings.SplitN(raw, "\n", 2)[0])
	title = strings.Trim(title, `"'`)
	if title == "" {
		return fallbackTitle
	}
	return title
}

// stripMarkup removes the emphasis characters models like to sprinkle over
// plain-text answers and trims surrounding whitespace.
func stripMarkup(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	replacer := strings.NewReplacer("*", "", "_", "", "`", "")
	return strings.TrimSpace(replacer.Replace(line))
}
