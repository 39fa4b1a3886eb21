// Package worker runs candidate circuit fits on a fixed pool of
// goroutines. The fitting core is purely sequential; callers that want
// several candidates or datasets evaluated in parallel impose it here.
package worker

import (
	"log"
	"sync"
	"time"

	"github.com/kacperjurak/goeiscore"
	"github.com/kacperjurak/goeiscore/internal/utils"
)

// Job is one candidate circuit to fit against one dataset. Params must be
// owned by the job: the fit mutates it in place.
type Job struct {
	ID       string
	Circuit  string
	Params   goeiscore.Params
	Freqs    []float64
	Observed []complex128
	Method   goeiscore.Method
}

// Result carries the outcome of a fitted Job.
type Result struct {
	ID       string
	Circuit  string
	Params   goeiscore.Params
	RSquared float64
	Err      error
	Elapsed  time.Duration
}

// Pool manages the worker goroutines.
type Pool struct {
	jobs     chan Job
	results  chan Result
	workers  int
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// Options configures a new pool.
type Options struct {
	Workers int
}

// New creates and starts a pool.
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}

	// buffered so queueing jobs and draining results do not block the
	// workers themselves
	p := &Pool{
		jobs:     make(chan Job, opts.Workers*2),
		results:  make(chan Result, opts.Workers*2),
		workers:  opts.Workers,
		shutdown: make(chan struct{}),
	}
	p.start()
	return p
}

func (p *Pool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobs:
			p.results <- p.run(job)
		case <-p.shutdown:
			return
		}
	}
}

func (p *Pool) run(job Job) Result {
	start := time.Now()
	res := Result{ID: job.ID, Circuit: job.Circuit}

	tree, err := goeiscore.Parse(job.Circuit)
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	solver := goeiscore.NewSolver(tree, job.Freqs, job.Observed)
	solver.Method = job.Method
	res.Params, res.RSquared, res.Err = solver.Fit(job.Params)
	res.Elapsed = time.Since(start)
	return res
}

// Submit queues a job and returns its ID, assigning one when unset. Blocks
// when the queue is full.
func (p *Pool) Submit(job Job) string {
	if job.ID == "" {
		job.ID = utils.JobID()
	}
	select {
	case p.jobs <- job:
	default:
		log.Printf("worker: job queue full, submit of %s will block", job.Circuit)
		p.jobs <- job
	}
	return job.ID
}

// Result blocks until the next result is available.
func (p *Pool) Result() Result {
	return <-p.results
}

// TryResult retrieves a result without blocking.
func (p *Pool) TryResult() (Result, bool) {
	select {
	case res := <-p.results:
		return res, true
	default:
		return Result{}, false
	}
}

// Shutdown stops the workers after their current job and waits for them.
func (p *Pool) Shutdown() {
	close(p.shutdown)
	p.wg.Wait()
}
