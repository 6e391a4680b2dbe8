package syllabusprocessor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"

	"syllabus-stack/internal/models"
	"syllabus-stack/shared/tasks"
)

// attributePrompts maps each attribute kind to its prompt template. Each asks
// for a bounded number of bullet items phrased around the topic description.
var attributePrompts = map[string]string{
	models.AttrLearningObjectives:    "List 3-5 concrete learning objectives for a student studying the following topic. One objective per line as a bullet point.\n\nTopic: %s",
	models.AttrKeyConcepts:           "List 4-6 key concepts a student must understand for the following topic. One concept per line as a bullet point.\n\nTopic: %s",
	models.AttrPracticalApplications: "List 3-5 practical, real-world applications of the following topic. One application per line as a bullet point.\n\nTopic: %s",
	models.AttrRelatedTopics:         "List 3-5 closely related topics a student should explore after the following topic. One topic per line as a bullet point.\n\nTopic: %s",
	models.AttrRecommendedResources:  "List 3-5 recommended resources (books, documentation, courses) for learning the following topic. One resource per line as a bullet point.\n\nTopic: %s",
}

// Enricher derives the structured attribute lists for a topic by fanning out
// one completion per attribute kind on a bounded pool.
type Enricher struct {
	llm     LLM
	workers int
}

func NewEnricher(llm LLM, workers int) *Enricher {
	return &Enricher{
		llm:     llm,
		workers: workers,
	}
}

// Enrich returns a mapping that always contains every attribute kind. A
// sub-prompt that yields no content leaves that kind's list empty; it never
// fails the topic. Enrich returns only after all five lookups finished.
func (e *Enricher) Enrich(ctx context.Context, description string) map[string][]string {
	// Seed every kind before any task runs; after this only the
	// mutex-guarded goroutine writes touch the map.
	attributes := make(map[string][]string, len(models.AttributeKinds))
	for _, kind := range models.AttributeKinds {
		attributes[kind] = []string{}
	}
	var mu sync.Mutex

	pool := tasks.NewPool(e.workers)
	for _, kind := range models.AttributeKinds {
		kind := kind
		pool.Go(func() error {
			raw, err := e.llm.Query(ctx, fmt.Sprintf(attributePrompts[kind], description))
			if err != nil {
				log.Printf("Warning: %s lookup produced no content: %v", kind, err)
				return nil
			}

			items := splitBulletLines(raw)
			mu.Lock()
			attributes[kind] = items
			mu.Unlock()
			return nil
		})
	}
	_ = pool.Wait()

	return attributes
}

// splitBulletLines turns a bulleted completion into clean items: one per
// line, leading bullet markers and list numbering stripped, blanks dropped.
func splitBulletLines(raw string) []string {
	items := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		line = trimListNumber(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}

// trimListNumber strips a leading "1." / "2)" style list marker.
func trimListNumber(line string) string {
	trimmed := strings.TrimSpace(line)
	i := 0
	for i < len(trimmed) && unicode.IsDigit(rune(trimmed[i])) {
		i++
	}
	if i == 0 || i >= len(trimmed) {
		return line
	}
	if trimmed[i] == '.' || trimmed[i] == ')' {
		return trimmed[i+1:]
	}
	return line
}
