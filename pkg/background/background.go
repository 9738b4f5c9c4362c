package background

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrAddJobTimeout = errors.New("failed to add new job in time")
var ErrPoolClosed = errors.New("pool is closed")

const queueBufferMultiplier = 2

type PoolConfig struct {
	Concurrency   int
	DoJobTimeout  time.Duration
	AddJobTimeout time.Duration
}

type JobFunc func(context.Context) error

type Job struct {
	ID   string
	Name string
	do   JobFunc
}

type JobResult struct {
	Job Job
	Err error
}

func NewJob(name string, jobFunc JobFunc) Job {
	return Job{
		ID:   uuid.New().String(),
		Name: name,
		do:   jobFunc,
	}
}

func (job Job) Do(ctx context.Context) JobResult {
	return JobResult{Job: job, Err: job.do(ctx)}
}

func (job Job) logger() *log.Entry {
	return log.WithFields(log.Fields{"job": job.Name, "job_id": job.ID})
}

type Worker struct {
	JobTimeout time.Duration
}

func (worker Worker) Work(ctx context.Context, job Job) JobResult {
	ctx, cancel := context.WithTimeout(ctx, worker.JobTimeout)
	defer cancel()
	// хотя мы и передаем контекст с таймайуом мы не можем гарантировать
	// что джоб вовремя остановится, поэтому запускаем ее в горутине и сами отслеживаем время выполнения
	resultCh := make(chan JobResult, 1)
	go func() {
		job.logger().Debug("starting job")
		resultCh <- job.Do(ctx)
	}()
	select {
	case <-ctx.Done():
		job.logger().Warn("deadline exceeded for job")
		return JobResult{Job: job, Err: ctx.Err()}
	case result := <-resultCh:
		job.logger().Debugf("finished job; err? %v", result.Err)
		return result
	}
}

// Pool исполняет джобы в фиксированном числе воркеров.
// После Close новые джобы не принимаются, а уже поставленные в очередь дорабатываются
type Pool struct {
	queue   chan Job
	cfg     PoolConfig
	workers sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	pool := &Pool{
		cfg:   cfg,
		queue: make(chan Job, cfg.Concurrency*queueBufferMultiplier),
	}
	for i := 0; i < cfg.Concurrency; i++ {
		pool.addWorker()
	}
	return pool
}

func (pool *Pool) Add(ctx context.Context, job Job) error {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	if pool.closed {
		return ErrPoolClosed
	}
	ctx, cancel := context.WithTimeout(ctx, pool.cfg.AddJobTimeout)
	defer cancel()
	select {
	case <-ctx.Done():
		job.logger().Error("failed to add job due to blocked queue")
		return ErrAddJobTimeout
	case pool.queue <- job:
		job.logger().Debug("enqueued job")
		return nil
	}
}

// Close закрывает очередь и дожидается завершения всех воркеров
func (pool *Pool) Close() {
	pool.mu.Lock()
	if pool.closed {
		pool.mu.Unlock()
		return
	}
	pool.closed = true
	close(pool.queue)
	pool.mu.Unlock()
	pool.workers.Wait()
}

func (pool *Pool) addWorker() {
	worker := Worker{JobTimeout: pool.cfg.DoJobTimeout}
	pool.workers.Add(1)
	go func() {
		defer pool.workers.Done()
		for job := range pool.queue {
			result := worker.Work(context.Background(), job)
			if result.Err != nil {
				job.logger().Errorf("job returned an error: %s", result.Err)
			} else {
				job.logger().Debug("job succeeded")
			}
		}
	}()
}
