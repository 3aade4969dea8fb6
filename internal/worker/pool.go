package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueExportacion = "jobs:exportacion"

	JobExportacion = "exportacion"

	// MaxIntentos is how many times a job runs before it goes to the DLQ.
	MaxIntentos = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueExportacion asks the pool to precompute the export payload of an
// issued quote.
func (d *Dispatcher) EnqueueExportacion(ctx context.Context, payload ExportacionJobPayload) error {
	return d.enqueue(ctx, QueueExportacion, JobExportacion, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Handler runs one job payload. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers maps job types to the component that runs them.
type WorkerHandlers struct {
	Exportacion Handler
}

func (h WorkerHandlers) handler(jobType string) Handler {
	switch jobType {
	case JobExportacion:
		return h.Exportacion
	}
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, id int) {
	queues := []string{QueueExportacion}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// resultado is what the pool does with a job after running it.
type resultado int

const (
	hecho resultado = iota
	reintentar
	descartar
)

// ejecutar runs job and decides its fate. It never touches Redis.
func ejecutar(ctx context.Context, handlers WorkerHandlers, job *Job) (resultado, error) {
	h := handlers.handler(job.Type)
	if h == nil {
		return descartar, fmt.Errorf("tipo de job desconocido: %q", job.Type)
	}
	job.Attempts++
	if err := h.Process(ctx, job.Payload); err != nil {
		if job.Attempts >= MaxIntentos {
			return descartar, err
		}
		return reintentar, err
	}
	return hecho, nil
}

func processJob(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "", json.RawMessage(raw), "payload ilegible: "+err.Error(), 0)
		return
	}

	res, err := ejecutar(ctx, handlers, &job)
	switch res {
	case hecho:
		log.Debug().Str("type", job.Type).Int("attempts", job.Attempts).Msg("job processed")
	case reintentar:
		log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, requeueing")
		if pushErr := push(ctx, rdb, queue, job); pushErr != nil {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "requeue: "+pushErr.Error(), job.Attempts)
		}
	case descartar:
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
	}
}
