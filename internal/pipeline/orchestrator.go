package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/rechord/internal/config"
)

// ErrStopped is returned by Submit once the pipeline has shut down.
var ErrStopped = errors.New("render pipeline stopped")

// Orchestrator owns the render queue and the workers draining it.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	stats *RenderStats
	log   *slog.Logger
	cfg   config.Config

	mu      sync.RWMutex // guards stopped and sends on queue
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		stats: NewRenderStats(time.Hour),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches the render workers and the expired-job sweeper.
func (o *Orchestrator) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := range o.cfg.WorkerCount {
		o.wg.Add(1)
		go o.work(runCtx, NewWorker(o.log.With("worker", i), o.stats))
	}

	o.wg.Add(1)
	go o.sweep(runCtx, 5*time.Minute)
}

func (o *Orchestrator) work(ctx context.Context, w *Worker) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) sweep(ctx context.Context, every time.Duration) {
	defer o.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := o.jobs.Cleanup(); n > 0 {
				o.log.Debug("evicted expired jobs", "count", n)
			}
		}
	}
}

// Stop cancels in-flight renders and waits for the workers to exit. It is
// safe to call more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit registers the job and queues it for a worker. A full queue fails
// the job immediately rather than blocking the request.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.log.Debug("job queued", "job_id", job.ID, "files", len(job.Files()))
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("render queue is full (%d jobs)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the render latency tracker.
func (o *Orchestrator) Stats() *RenderStats {
	return o.stats
}
