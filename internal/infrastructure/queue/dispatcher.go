package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	removeTimeout  = 30 * time.Second
)

// ImageRemover deletes one hosted image by its public URL.
type ImageRemover interface {
	RemoveByURL(ctx context.Context, url string) error
}

// cleanupJob is the set of images left behind by one deleted issue.
type cleanupJob struct {
	issueID string
	urls    []string
}

// Dispatcher removes the images of deleted issues in the background. Jobs are
// routed to a fixed set of workers by hashing the issue id, so removals for
// one issue never run concurrently.
type Dispatcher struct {
	workers []chan cleanupJob
	remover ImageRemover
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, remover ImageRemover, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan cleanupJob, numWorkers),
		remover: remover,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan cleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Release queues the images of a deleted issue for removal. It never blocks:
// when the worker's buffer is full the job is dropped and logged.
func (d *Dispatcher) Release(issueID string, urls []string) {
	job := cleanupJob{issueID: issueID, urls: append([]string(nil), urls...)}
	select {
	case d.workers[d.shardIndex(issueID)] <- job:
	default:
		d.log.Warn().
			Str("issue_id", issueID).
			Int("images", len(urls)).
			Msg("image cleanup queue full, dropping job")
	}
}

// shardIndex maps an issue id deterministically to a worker index.
func (d *Dispatcher) shardIndex(issueID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(issueID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan cleanupJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, worker int, job cleanupJob) {
	for _, url := range job.urls {
		rctx, cancel := context.WithTimeout(ctx, removeTimeout)
		err := d.remover.RemoveByURL(rctx, url)
		cancel()
		if err != nil {
			imageCleanupTotal.WithLabelValues("error").Inc()
			d.log.Error().Err(err).
				Str("issue_id", job.issueID).
				Str("url", url).
				Int("worker_id", worker).
				Msg("image cleanup failed")
			continue
		}
		imageCleanupTotal.WithLabelValues("ok").Inc()
	}
}
