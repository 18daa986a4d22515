// Package preview fetches and caches Open Graph metadata for link ideas.
//
// Enrichment is fire-and-forget: the request that created the idea has
// usually finished (and committed) by the time a worker picks the job up,
// so the enricher runs on its own database handle and treats every failure
// as terminal for that run. The idea stays fully usable without metadata.
package preview

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/daybox-app/daybox/pkg/daybox/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// userAgent mimics a browser; some sites serve empty metadata to unknown clients.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Job identifies one enrichment request. The idea id is captured at schedule
// time; the idea may be gone by the time the job runs.
type Job struct {
	IdeaID uint
	URL    string
}

// Options tunes the worker pool. Zero values get sensible defaults.
type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Enricher runs a bounded pool of background workers that resolve link
// metadata and attach it to ideas.
type Enricher struct {
	db     *gorm.DB
	log    *zap.Logger
	client *http.Client
	jobs   chan Job
	wg     sync.WaitGroup
}

// NewEnricher creates an enricher and starts its workers.
func NewEnricher(db *gorm.DB, log *zap.Logger, opts Options) *Enricher {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	e := &Enricher{
		db:     db,
		log:    log,
		client: &http.Client{Timeout: opts.Timeout},
		jobs:   make(chan Job, opts.QueueSize),
	}

	for i := 0; i < opts.Workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

// Schedule enqueues an enrichment job without blocking. A full queue drops
// the job; enrichment is best-effort and never owed to the caller.
func (e *Enricher) Schedule(ideaID uint, url string) {
	select {
	case e.jobs <- Job{IdeaID: ideaID, URL: url}:
	default:
		e.log.Warn("preview queue full, dropping job",
			zap.Uint("idea_id", ideaID),
			zap.String("url", url))
	}
}

// Close stops accepting jobs and waits for in-flight work to finish.
func (e *Enricher) Close() {
	close(e.jobs)
	e.wg.Wait()
}

func (e *Enricher) worker() {
	defer e.wg.Done()
	for job := range e.jobs {
		e.enrich(job.IdeaID, job.URL)
	}
}

// enrich resolves metadata for one job and attaches it to the idea.
// Every failure path logs and returns; nothing propagates.
func (e *Enricher) enrich(ideaID uint, url string) {
	metadata, err := e.lookupOrFetch(url)
	if err != nil {
		e.log.Warn("link preview failed",
			zap.Uint("idea_id", ideaID),
			zap.String("url", url),
			zap.Error(err))
		return
	}

	// Guarded attach: zero rows means the idea was deleted in the meantime,
	// which is a no-op, not an error.
	res := e.db.Model(&models.Idea{}).
		Where("id = ?", ideaID).
		Update("link_metadata_id", metadata.ID)
	if res.Error != nil {
		e.log.Warn("failed to attach link metadata",
			zap.Uint("idea_id", ideaID),
			zap.Error(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		e.log.Info("idea gone before enrichment finished", zap.Uint("idea_id", ideaID))
		return
	}

	e.log.Info("link preview attached",
		zap.Uint("idea_id", ideaID),
		zap.String("url", url))
}

// lookupOrFetch returns the cached metadata row for url, fetching and
// persisting it on a cache miss.
func (e *Enricher) lookupOrFetch(url string) (models.LinkMetadata, error) {
	var cached models.LinkMetadata
	if err := e.db.Where("url = ?", url).First(&cached).Error; err == nil {
		return cached, nil
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return models.LinkMetadata{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return models.LinkMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.LinkMetadata{}, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	page := parsePage(resp.Body)

	metadata := models.LinkMetadata{
		URL:         url,
		Title:       page.Title,
		Description: page.Description,
		ImageURL:    page.ImageURL,
		FetchedAt:   time.Now().UTC(),
	}
	if err := e.db.Create(&metadata).Error; err != nil {
		// A concurrent fetch for the same URL may have won the unique-index
		// race; whichever row landed is the cache entry.
		var winner models.LinkMetadata
		if lookupErr := e.db.Where("url = ?", url).First(&winner).Error; lookupErr == nil {
			return winner, nil
		}
		return models.LinkMetadata{}, err
	}
	return metadata, nil
}
