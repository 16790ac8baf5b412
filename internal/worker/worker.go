// Package worker runs background jobs off a Redis list queue: expired
// refresh-token purges and scheduled task archival.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type JobType string

const (
	JobTypeTokenCleanup JobType = "token_cleanup"
	JobTypeTaskArchive  JobType = "task_archive"
)

const (
	defaultMaxTries = 3
	jobTimeout      = 30 * time.Second
)

type Job struct {
	ID        string                 `json:"id"`
	Type      JobType                `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Attempts  int                    `json:"attempts"`
	MaxTries  int                    `json:"max_tries"`
	CreatedAt time.Time              `json:"created_at"`
	ProcessAt time.Time              `json:"process_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

type Worker struct {
	client   *redis.Client
	logger   *zap.Logger
	handlers map[JobType]JobHandler
	queue    string
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type Config struct {
	RedisClient *redis.Client
	Logger      *zap.Logger
	Queue       string
}

func New(cfg Config) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		client:   cfg.RedisClient,
		logger:   cfg.Logger,
		handlers: make(map[JobType]JobHandler),
		queue:    cfg.Queue,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Start(concurrency int) {
	w.logger.Info("starting worker", zap.Int("concurrency", concurrency), zap.String("queue", w.queue))
	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.loop()
	}
}

// StartScheduler enqueues a token_cleanup job every interval until Stop.
func (w *Worker) StartScheduler(interval time.Duration) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		queue := NewJobQueue(w.client, w.queue)
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				if err := queue.Enqueue(JobTypeTokenCleanup, nil); err != nil {
					w.logger.Error("failed to schedule cleanup", zap.Error(err))
				}
			}
		}
	}()
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			if err := w.processNext(); err != nil {
				w.logger.Error("job processing failed", zap.Error(err))
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) processNext() error {
	result, err := w.client.BLPop(w.ctx, 5*time.Second, w.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("pop job: %w", err)
	}
	if len(result) < 2 {
		return fmt.Errorf("malformed BLPop result")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return fmt.Errorf("unmarshal job: %w", err)
	}

	// Not due yet; put it back.
	if time.Now().Before(job.ProcessAt) {
		return w.push(w.queue, &job)
	}

	return w.execute(&job)
}

func (w *Worker) execute(job *Job) error {
	w.mu.RLock()
	handler, ok := w.handlers[job.Type]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler for job type %q", job.Type)
	}

	ctx, cancel := context.WithTimeout(w.ctx, jobTimeout)
	defer cancel()

	if err := handler(ctx, job); err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			w.logger.Warn("job failed, retrying",
				zap.String("job_id", job.ID),
				zap.String("type", string(job.Type)),
				zap.Int("attempt", job.Attempts),
				zap.Error(err))
			job.ProcessAt = time.Now().Add(time.Duration(1<<job.Attempts) * time.Minute)
			return w.push(w.queue, job)
		}
		w.logger.Error("job failed permanently",
			zap.String("job_id", job.ID),
			zap.String("type", string(job.Type)),
			zap.Error(err))
		return w.pushDead(job, err)
	}

	w.logger.Debug("job completed", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return nil
}

func (w *Worker) push(queue string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return w.client.RPush(w.ctx, queue, data).Err()
}

func (w *Worker) pushDead(job *Job, jobErr error) error {
	dead := map[string]interface{}{
		"job":       job,
		"error":     jobErr.Error(),
		"failed_at": time.Now().UTC(),
	}
	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("marshal dead job: %w", err)
	}
	return w.client.RPush(w.ctx, w.queue+":dead", data).Err()
}

// JobQueue is the producer side.
type JobQueue struct {
	client *redis.Client
	queue  string
}

func NewJobQueue(client *redis.Client, queue string) *JobQueue {
	return &JobQueue{client: client, queue: queue}
}

func (q *JobQueue) Enqueue(jobType JobType, payload map[string]interface{}) error {
	return q.EnqueueAt(jobType, payload, time.Now())
}

func (q *JobQueue) EnqueueAt(jobType JobType, payload map[string]interface{}, processAt time.Time) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	job := &Job{
		ID:        id.String(),
		Type:      jobType,
		Payload:   payload,
		MaxTries:  defaultMaxTries,
		CreatedAt: time.Now().UTC(),
		ProcessAt: processAt,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return q.client.RPush(ctx, q.queue, data).Err()
}

func (q *JobQueue) Size() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return q.client.LLen(ctx, q.queue).Result()
}
