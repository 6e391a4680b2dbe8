package videos

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"syllabus-stack/internal/models"
	"syllabus-stack/shared/cache"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Finder looks up tutorial videos for a topic via the YouTube Data API.
// Results keep the API's relevance order; no re-ranking happens here.
type Finder struct {
	service *youtube.Service
	store   *cache.Cache
}

func NewFinder(ctx context.Context, apiKey string, store *cache.Cache) (*Finder, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Finder{
		service: service,
		store:   store,
	}, nil
}

// Find returns up to limit tutorial videos matching query. Lookup failures
// degrade to an empty list; they are never fatal to the pipeline.
func (f *Finder) Find(ctx context.Context, query string, limit int64) []models.VideoRecord {
	fingerprint := cache.Fingerprint("videos", fmt.Sprintf("%s|%d", query, limit))
	if entry, ok := f.store.Get(fingerprint); ok {
		if records, ok := entry.AsVideos(); ok {
			return records
		}
	}

	records, err := f.search(ctx, "tutorial "+query, limit)
	if err != nil {
		log.Printf("Warning: video search failed for %q: %v", query, err)
		return nil
	}

	if err := f.store.Put(fingerprint, cache.VideosEntry(records)); err != nil {
		log.Printf("Warning: failed to cache video results: %v", err)
	}

	return records
}

func (f *Finder) search(ctx context.Context, query string, limit int64) ([]models.VideoRecord, error) {
	searchResponse, err := f.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var videoIDs []string
	titles := make(map[string]string)
	for _, item := range searchResponse.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		videoIDs = append(videoIDs, item.Id.VideoId)
		if item.Snippet != nil {
			titles[item.Id.VideoId] = item.Snippet.Title
		}
	}

	if len(videoIDs) == 0 {
		return []models.VideoRecord{}, nil
	}

	videosResponse, err := f.service.Videos.List([]string{"contentDetails", "statistics"}).
		Id(strings.Join(videoIDs, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("video details request failed: %w", err)
	}

	details := make(map[string]*youtube.Video, len(videosResponse.Items))
	for _, item := range videosResponse.Items {
		details[item.Id] = item
	}

	// Assemble in search-result order so relevance ranking survives
	records := make([]models.VideoRecord, 0, len(videoIDs))
	for _, id := range videoIDs {
		records = append(records, buildRecord(id, titles[id], details[id]))
	}

	return records, nil
}

// buildRecord normalizes one API result into a VideoRecord. A missing view
// count becomes the literal "N/A".
func buildRecord(id, title string, detail *youtube.Video) models.VideoRecord {
	record := models.VideoRecord{
		URL:   "https://www.youtube.com/watch?v=" + id,
		Title: title,
		Views: "N/A",
	}

	if detail != nil {
		if detail.ContentDetails != nil {
			record.Duration = formatDuration(parseDurationSeconds(detail.ContentDetails.Duration))
		}
		if detail.Statistics != nil {
			record.Views = strconv.FormatUint(detail.Statistics.ViewCount, 10)
		}
	}

	return record
}

var iso8601Duration = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// parseDurationSeconds converts an ISO 8601 duration (e.g. "PT1H2M30S") to
// seconds.
func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	matches := iso8601Duration.FindStringSubmatch(duration)
	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int
	if matches[1] != "" {
		if hours, err := strconv.Atoi(matches[1]); err == nil {
			totalSeconds += hours * 3600
		}
	}
	if matches[2] != "" {
		if minutes, err := strconv.Atoi(matches[2]); err == nil {
			totalSeconds += minutes * 60
		}
	}
	if matches[3] != "" {
		if seconds, err := strconv.Atoi(matches[3]); err == nil {
			totalSeconds += seconds
		}
	}

	return totalSeconds
}

// formatDuration renders seconds as m:ss or h:mm:ss.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
