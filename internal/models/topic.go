package models

import "fmt"

// Attribute keys produced by topic enrichment. Every EnrichedTopic carries
// all of these, in this order, even when a lookup came back empty.
const (
	AttrLearningObjectives    = "learning_objectives"
	AttrKeyConcepts           = "key_concepts"
	AttrPracticalApplications = "practical_applications"
	AttrRelatedTopics         = "related_topics"
	AttrRecommendedResources  = "recommended_resources"
)

// AttributeKinds lists the enrichment attribute keys in report order.
var AttributeKinds = []string{
	AttrLearningObjectives,
	AttrKeyConcepts,
	AttrPracticalApplications,
	AttrRelatedTopics,
	AttrRecommendedResources,
}

// VideoRecord is a single tutorial video match. Built only by the video
// finder and never mutated afterwards.
type VideoRecord struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Views    string `json:"views"`
}

// TopicRecord is one topic extracted from a syllabus. Title is a short human
// label; Description is the extracted passage that drives all downstream
// prompts verbatim.
type TopicRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// EnrichedTopic is the terminal unit of pipeline output: one extracted topic
// with its attribute lists and tutorial videos. Index is the topic's position
// in the source document, used to restore source order after the concurrent
// fan-out completes.
type EnrichedTopic struct {
	Topic      TopicRecord         `json:"topic"`
	Attributes map[string][]string `json:"attributes"`
	Videos     []VideoRecord       `json:"videos"`
	Index      int                 `json:"-"`
}

// RunMetrics summarizes a single pipeline run.
type RunMetrics struct {
	TopicsFound        int
	TopicsEnriched     int
	VideosFound        int
	DegradedAttributes int
}

func (m RunMetrics) GetSummary() string {
	return fmt.Sprintf("extracted %d topics, enriched %d, attached %d videos (%d attributes degraded)",
		m.TopicsFound, m.TopicsEnriched, m.VideosFound, m.DegradedAttributes)
}
