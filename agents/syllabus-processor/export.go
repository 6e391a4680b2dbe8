package syllabusprocessor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"syllabus-stack/internal/models"
)

// reportEntry is the JSON export shape for one topic.
type reportEntry struct {
	Topic                 string               `json:"topic"`
	Description           string               `json:"description"`
	LearningObjectives    []string             `json:"learning_objectives"`
	KeyConcepts           []string             `json:"key_concepts"`
	PracticalApplications []string             `json:"practical_applications"`
	RelatedTopics         []string             `json:"related_topics"`
	RecommendedResources  []string             `json:"recommended_resources"`
	Videos                []models.VideoRecord `json:"videos"`
}

var attributeLabels = map[string]string{
	models.AttrLearningObjectives:    "Learning Objectives",
	models.AttrKeyConcepts:           "Key Concepts",
	models.AttrPracticalApplications: "Practical Applications",
	models.AttrRelatedTopics:         "Related Topics",
	models.AttrRecommendedResources:  "Recommended Resources",
}

// WriteReports serializes the results to <outputPath>.json and
// <outputPath>.txt.
func WriteReports(results []models.EnrichedTopic, outputPath string) error {
	if err := writeJSONReport(results, outputPath+".json"); err != nil {
		return err
	}
	return writeTextReport(results, outputPath+".txt")
}

func writeJSONReport(results []models.EnrichedTopic, path string) error {
	entries := make([]reportEntry, 0, len(results))
	for _, result := range results {
		entries = append(entries, reportEntry{
			Topic:                 result.Topic.Title,
			Description:           result.Topic.Description,
			LearningObjectives:    attribute(result, models.AttrLearningObjectives),
			KeyConcepts:           attribute(result, models.AttrKeyConcepts),
			PracticalApplications: attribute(result, models.AttrPracticalApplications),
			RelatedTopics:         attribute(result, models.AttrRelatedTopics),
			RecommendedResources:  attribute(result, models.AttrRecommendedResources),
			Videos:                nonNilVideos(result.Videos),
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create JSON report: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

func writeTextReport(results []models.EnrichedTopic, path string) error {
	var sb strings.Builder
	rule := strings.Repeat("-", 80)

	for i, result := range results {
		if i > 0 {
			sb.WriteString(rule + "\n")
		}

		fmt.Fprintf(&sb, "Topic: %s\n\n", result.Topic.Title)
		fmt.Fprintf(&sb, "Description:\n%s\n", result.Topic.Description)

		for _, kind := range models.AttributeKinds {
			sb.WriteString("\n" + attributeLabels[kind] + ":\n")
			items := attribute(result, kind)
			if len(items) == 0 {
				sb.WriteString("  (none)\n")
				continue
			}
			for _, item := range items {
				fmt.Fprintf(&sb, "  - %s\n", item)
			}
		}

		sb.WriteString("\nVideos:\n")
		if len(result.Videos) == 0 {
			sb.WriteString("  (none)\n")
		}
		for _, video := range result.Videos {
			fmt.Fprintf(&sb, "  - %s (%s, %s views)\n    %s\n", video.Title, video.Duration, video.Views, video.URL)
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	return nil
}

func attribute(result models.EnrichedTopic, kind string) []string {
	if items, ok := result.Attributes[kind]; ok && items != nil {
		return items
	}
	return []string{}
}

func nonNilVideos(videos []models.VideoRecord) []models.VideoRecord {
	if videos == nil {
		return []models.VideoRecord{}
	}
	return videos
}
