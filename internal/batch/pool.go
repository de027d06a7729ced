// Package batch fans independent PartialLexopt solves out across a bounded
// pool of goroutines. Each job owns its own (Problem, domain) pair and
// therefore its own tableau and context (pkg/pilp §5's "no concurrent
// solves on a shared tableau" is about one tableau, not about running many
// independent ones side by side), so dispatching them concurrently here
// never violates that invariant.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gitrdm/pilpcore/pkg/pilp"
)

// Job is one independent solve request.
type Job struct {
	Name    string
	Problem *pilp.Problem
	Domain  *pilp.BasicSet
	Options pilp.Options
}

// Result is what a Job produces, success or failure, plus how long it took.
type Result struct {
	Name     string
	Relation *pilp.Relation
	Err      error
	Duration time.Duration
}

// Pool runs Jobs across a bounded, dynamically scaled set of workers,
// generalizing the teacher's WorkerPool (internal/parallel/pool.go) from an
// arbitrary func() task to a PartialLexopt call with a typed result.
type Pool struct {
	maxWorkers     int
	minWorkers     int
	currentWorkers int

	jobChan    chan Job
	resultChan chan Result

	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
	mu           sync.RWMutex

	scaleUpThreshold   int
	scaleDownThreshold int
	scaleCheckInterval time.Duration
	scaleCooldown      time.Duration
	lastScaleTime      time.Time
	scaleChan          chan int

	stats *Stats
}

// Config tunes a Pool's dynamic scaling, mirroring the teacher's
// DynamicConfig.
type Config struct {
	MinWorkers         int
	MaxWorkers         int
	ScaleUpThreshold   int
	ScaleDownThreshold int
	ScaleCheckInterval time.Duration
	ScaleCooldown      time.Duration
}

// NewPool starts a pool with sensible defaults (MaxWorkers 0 means
// runtime.NumCPU()).
func NewPool(maxWorkers int) *Pool {
	return NewPoolWithConfig(Config{MaxWorkers: maxWorkers})
}

// NewPoolWithConfig starts a pool under cfg.
func NewPoolWithConfig(cfg Config) *Pool {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	minWorkers := cfg.MinWorkers
	if minWorkers <= 0 {
		minWorkers = 1
	}
	if minWorkers > maxWorkers {
		minWorkers = maxWorkers
	}
	scaleUp := cfg.ScaleUpThreshold
	if scaleUp <= 0 {
		scaleUp = maxWorkers * 2
	}
	scaleDown := cfg.ScaleDownThreshold
	if scaleDown <= 0 {
		scaleDown = 1
	}
	checkInterval := cfg.ScaleCheckInterval
	if checkInterval <= 0 {
		checkInterval = 100 * time.Millisecond
	}
	cooldown := cfg.ScaleCooldown
	if cooldown <= 0 {
		cooldown = 500 * time.Millisecond
	}

	p := &Pool{
		maxWorkers:         maxWorkers,
		minWorkers:         minWorkers,
		currentWorkers:     minWorkers,
		jobChan:            make(chan Job, maxWorkers*4),
		resultChan:         make(chan Result, maxWorkers*4),
		shutdownChan:       make(chan struct{}),
		scaleChan:          make(chan int, 1),
		scaleUpThreshold:   scaleUp,
		scaleDownThreshold: scaleDown,
		scaleCheckInterval: checkInterval,
		scaleCooldown:      cooldown,
		lastScaleTime:      time.Now(),
		stats:              NewStats(),
	}

	for i := 0; i < minWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}
	go p.scalingMonitor()

	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()
	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			p.run(job)
		case <-p.shutdownChan:
			return
		}
	}
}

// run executes one job, recovering from a panic the way the teacher's
// worker loop does, and always delivers exactly one Result.
func (p *Pool) run(job Job) {
	start := time.Now()
	res := Result{Name: job.Name}

	func() {
		defer func() {
			if r := recover(); r != nil {
				res.Err = fmt.Errorf("job %q panicked: %v", job.Name, r)
			}
		}()
		res.Relation, res.Err = pilp.PartialLexopt(job.Problem, job.Domain, job.Options)
	}()

	res.Duration = time.Since(start)
	if res.Err != nil {
		p.stats.RecordJobFailed(res.Err)
	} else {
		p.stats.RecordJobCompleted(res.Duration)
	}

	select {
	case p.resultChan <- res:
	case <-p.shutdownChan:
	}
}

// Submit enqueues job, blocking until the job queue has room, ctx is
// cancelled, or the pool is shutting down.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.stats.RecordJobSubmitted()
	select {
	case <-p.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case p.jobChan <- job:
		p.stats.RecordQueueDepth(len(p.jobChan))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.shutdownChan:
		return ErrPoolShutdown
	}
}

// Results returns the channel Results are delivered on. Callers must drain
// it to avoid blocking workers.
func (p *Pool) Results() <-chan Result { return p.resultChan }

// Shutdown stops accepting new jobs, waits for in-flight jobs to finish,
// and closes the results channel.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.shutdownChan)
		close(p.jobChan)
		p.workerWg.Wait()
		close(p.resultChan)
		p.stats.Finalize()
	})
}

// WorkerCount returns the current number of active workers.
func (p *Pool) WorkerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentWorkers
}

// Stats returns the pool's execution statistics collector.
func (p *Pool) Stats() *Stats { return p.stats }

func (p *Pool) scalingMonitor() {
	ticker := time.NewTicker(p.scaleCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.checkScaling()
		case n := <-p.scaleChan:
			p.adjustWorkers(n)
		case <-p.shutdownChan:
			return
		}
	}
}

func (p *Pool) checkScaling() {
	p.mu.RLock()
	if time.Since(p.lastScaleTime) < p.scaleCooldown {
		p.mu.RUnlock()
		return
	}
	current, max, min := p.currentWorkers, p.maxWorkers, p.minWorkers
	up, down := p.scaleUpThreshold, p.scaleDownThreshold
	p.mu.RUnlock()

	depth := len(p.jobChan)
	switch {
	case depth > up && current < max:
		p.requestScale(current + 1)
	case depth < down && current > min:
		p.requestScale(current - 1)
	}
}

func (p *Pool) requestScale(n int) {
	select {
	case p.scaleChan <- n:
	default:
	}
}

func (p *Pool) adjustWorkers(target int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	current := p.currentWorkers
	if target == current {
		return
	}
	if target > current {
		for i := current; i < target; i++ {
			p.workerWg.Add(1)
			go p.worker()
		}
		p.stats.RecordScaleUp()
	} else {
		// Workers drain their current job and exit naturally on the next
		// closed/empty jobChan read; nothing is forcibly killed.
		p.stats.RecordScaleDown()
	}
	p.currentWorkers = target
	p.lastScaleTime = time.Now()
}

// ErrPoolShutdown is returned by Submit once Shutdown has been called.
var ErrPoolShutdown = fmt.Errorf("batch: pool has been shut down")

// Stats collects counters for one pool's lifetime, generalizing the
// teacher's ExecutionStats down to the fields a batch-solve CLI actually
// reports (pkg/minikanren's richer deadlock/goroutine tracking has no
// analogue here: batch jobs are short, CPU-bound, and panic-recovered
// individually, so there is nothing for a stall/deadlock monitor to watch
// for).
type Stats struct {
	mu sync.RWMutex

	StartTime          time.Time
	EndTime            time.Time
	TotalExecutionTime time.Duration

	JobsSubmitted int64
	JobsCompleted int64
	JobsFailed    int64

	PeakQueueDepth int

	LastError error

	ScaleUpEvents   int64
	ScaleDownEvents int64

	taskDurationHistory []time.Duration
}

// NewStats returns a freshly started Stats.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

func (s *Stats) RecordJobSubmitted() { atomic.AddInt64(&s.JobsSubmitted, 1) }

func (s *Stats) RecordJobCompleted(d time.Duration) {
	atomic.AddInt64(&s.JobsCompleted, 1)
	s.mu.Lock()
	s.taskDurationHistory = append(s.taskDurationHistory, d)
	s.mu.Unlock()
}

func (s *Stats) RecordJobFailed(err error) {
	atomic.AddInt64(&s.JobsFailed, 1)
	s.mu.Lock()
	s.LastError = err
	s.mu.Unlock()
}

func (s *Stats) RecordQueueDepth(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if depth > s.PeakQueueDepth {
		s.PeakQueueDepth = depth
	}
}

func (s *Stats) RecordScaleUp()   { atomic.AddInt64(&s.ScaleUpEvents, 1) }
func (s *Stats) RecordScaleDown() { atomic.AddInt64(&s.ScaleDownEvents, 1) }

// Finalize computes TotalExecutionTime once the pool has shut down.
func (s *Stats) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
	s.TotalExecutionTime = s.EndTime.Sub(s.StartTime)
}

// String formats a human-readable summary, matching the teacher's
// ExecutionStats.String() convention.
func (s *Stats) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	last := "none"
	if s.LastError != nil {
		last = s.LastError.Error()
	}
	return fmt.Sprintf(
		"batch.Stats{jobs: %d submitted, %d completed, %d failed; peak_queue=%d; scale: %d up/%d down; duration=%v; last_error=%s}",
		s.JobsSubmitted, s.JobsCompleted, s.JobsFailed, s.PeakQueueDepth,
		s.ScaleUpEvents, s.ScaleDownEvents, s.TotalExecutionTime, last,
	)
}
