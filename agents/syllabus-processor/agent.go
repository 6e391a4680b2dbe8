package syllabusprocessor

import (
	"context"
	"fmt"
	"log"

	"syllabus-stack/internal/models"
	"syllabus-stack/shared/ai"
	"syllabus-stack/shared/cache"
	"syllabus-stack/shared/config"
	"syllabus-stack/shared/email"
	"syllabus-stack/shared/tasks"

	"syllabus-stack/agents/syllabus-processor/videos"
)

// VideoFinder is the search collaborator for tutorial videos. A nil finder
// means video lookup is disabled and every topic gets an empty list.
type VideoFinder interface {
	Find(ctx context.Context, query string, limit int64) []models.VideoRecord
}

// Agent implements the scheduler.Agent interface for syllabus processing:
// PDF text -> topic extraction -> parallel enrichment plus video lookup ->
// JSON/text reports.
type Agent struct {
	config    *config.Config
	store     *cache.Cache
	llm       LLM
	extractor *Extractor
	enricher  *Enricher
	finder    VideoFinder
	pdf       PDFExtractor
	sender    *email.Sender
}

func NewAgent(cfg *config.Config) *Agent {
	return &Agent{config: cfg}
}

func (a *Agent) Name() string {
	return "Syllabus Processor"
}

func (a *Agent) Initialize() error {
	log.Printf("Initializing %s...", a.Name())

	if a.store == nil {
		store, err := cache.New(a.config.Processor.CacheDir)
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		a.store = store
		log.Printf("Cache initialized at %s", a.config.Processor.CacheDir)
	}

	if a.llm == nil {
		a.llm = ai.NewClient(&a.config.AI, a.store)
		log.Println("Gemini client initialized")
	}

	if a.extractor == nil {
		a.extractor = NewExtractor(a.llm, a.store)
	}
	if a.enricher == nil {
		a.enricher = NewEnricher(a.llm, a.config.Processor.Workers)
	}

	if a.finder == nil {
		if a.config.Video.YouTubeAPIKey == "" {
			log.Println("No YouTube API key configured, video lookup disabled")
		} else {
			finder, err := videos.NewFinder(context.Background(), a.config.Video.YouTubeAPIKey, a.store)
			if err != nil {
				return fmt.Errorf("failed to create video finder: %w", err)
			}
			a.finder = finder
			log.Println("Video finder initialized")
		}
	}

	if a.pdf == nil {
		a.pdf = NewPDFExtractor()
	}

	if a.sender == nil && a.config.EmailConfigured() {
		a.sender = email.NewSender(&a.config.Email)
		log.Println("Email sender initialized")
	}

	return nil
}

// Process runs the full pipeline for one syllabus and returns the enriched
// topics in source-document order. A missing or unreadable PDF returns an
// error and no results; an empty extraction returns no results and no error.
func (a *Agent) Process(ctx context.Context, pdfPath string) ([]models.EnrichedTopic, error) {
	text, err := a.documentText(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read syllabus %s: %w", pdfPath, err)
	}

	topics := a.extractor.Extract(ctx, text)
	if len(topics) == 0 {
		log.Println("Warning: no topics found in syllabus")
		return nil, nil
	}
	log.Printf("Extracted %d topics", len(topics))

	// One result slot per topic, indexed by extraction order, so the
	// concurrent completion order never leaks into the output.
	results := make([]*models.EnrichedTopic, len(topics))
	pool := tasks.NewPool(a.config.Processor.Workers)

	for i, topic := range topics {
		i, topic := i, topic
		pool.Go(func() error {
			var attributes map[string][]string
			var found []models.VideoRecord

			// Enrichment and video lookup are independent; both must
			// finish before the topic is assembled.
			pair := tasks.NewPool(0)
			pair.Go(func() error {
				attributes = a.enricher.Enrich(ctx, topic.Description)
				return nil
			})
			pair.Go(func() error {
				found = a.findVideos(ctx, topic.Description)
				return nil
			})
			_ = pair.Wait()

			results[i] = &models.EnrichedTopic{
				Topic:      topic,
				Attributes: attributes,
				Videos:     found,
				Index:      i,
			}
			log.Printf("Assembled topic %d/%d: %s", i+1, len(topics), topic.Title)
			return nil
		})
	}
	_ = pool.Wait()

	ordered := make([]models.EnrichedTopic, 0, len(results))
	for _, result := range results {
		if result != nil {
			ordered = append(ordered, *result)
		}
	}
	return ordered, nil
}

// documentText returns the extracted PDF text, cached by file path so
// repeated runs skip extraction. Extraction failures are never cached.
func (a *Agent) documentText(pdfPath string) (string, error) {
	fingerprint := cache.Fingerprint("pdf", pdfPath)
	if entry, ok := a.store.Get(fingerprint); ok {
		if text, ok := entry.AsText(); ok {
			return text, nil
		}
	}

	text, err := a.pdf.ExtractFromFile(pdfPath)
	if err != nil {
		return "", err
	}

	if err := a.store.Put(fingerprint, cache.TextEntry(text)); err != nil {
		log.Printf("Warning: failed to cache document text: %v", err)
	}
	return text, nil
}

func (a *Agent) findVideos(ctx context.Context, query string) []models.VideoRecord {
	if a.finder == nil {
		return nil
	}
	return a.finder.Find(ctx, query, int64(a.config.Video.MaxResults))
}

// RunOnce processes the configured syllabus and writes the reports.
func (a *Agent) RunOnce(ctx context.Context) (string, error) {
	pdfPath := a.config.Processor.PDFPath
	if pdfPath == "" {
		return "", fmt.Errorf("no syllabus configured (set processor.pdf_path)")
	}

	results, err := a.Process(ctx, pdfPath)
	if err != nil {
		return "", err
	}

	metrics := buildMetrics(results)
	if len(results) == 0 {
		log.Println("No topics extracted, skipping report output")
		return metrics.GetSummary(), nil
	}

	outputPath := a.config.Processor.OutputPath
	if err := WriteReports(results, outputPath); err != nil {
		return "", fmt.Errorf("failed to write reports: %w", err)
	}
	log.Printf("Reports written to %s.json and %s.txt", outputPath, outputPath)

	if a.sender != nil {
		if err := a.sender.SendReport(results); err != nil {
			log.Printf("Warning: failed to email report: %v", err)
		} else {
			log.Println("Report emailed")
		}
	}

	return metrics.GetSummary(), nil
}

func buildMetrics(results []models.EnrichedTopic) models.RunMetrics {
	metrics := models.RunMetrics{
		TopicsFound:    len(results),
		TopicsEnriched: len(results),
	}
	for _, result := range results {
		metrics.VideosFound += len(result.Videos)
		for _, kind := range models.AttributeKinds {
			if len(result.Attributes[kind]) == 0 {
				metrics.DegradedAttributes++
			}
		}
	}
	return metrics
}
