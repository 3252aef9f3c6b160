package orchestrator

import (
    "context"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"

    "github.com/Dev-Khant/smartread/internal/metrics"
    "github.com/Dev-Khant/smartread/internal/queue"
)

// JobQueue is the consuming side of the background page queue.
type JobQueue interface {
    Dequeue(ctx context.Context, consumer string, timeout time.Duration) (string, *queue.PageJob, error)
    Ack(ctx context.Context, msgID string) error
    AddDLQ(ctx context.Context, job queue.PageJob, reason string) error
    Depths(ctx context.Context) (int64, int64, error)
}

// Worker drains the page queue one job at a time. A single consumer is
// deliberate backpressure: pages of a document were enqueued in ascending
// order, so sequential consumption processes them in ascending order and
// bounds the load on the OCR/model/search backends. A failed page is logged
// and sent to the DLQ; the next job is unaffected.
type Worker struct {
    q        JobQueue
    asm      Assembler
    poll     time.Duration
    consumer string
    stop     chan struct{}
    done     chan struct{}
}

func NewWorker(q JobQueue, asm Assembler, poll time.Duration) *Worker {
    if poll <= 0 {
        poll = 2 * time.Second
    }
    return &Worker{
        q:        q,
        asm:      asm,
        poll:     poll,
        consumer: "assembler-" + uuid.NewString(),
        stop:     make(chan struct{}),
        done:     make(chan struct{}),
    }
}

func (w *Worker) Start() {
    go w.loop()
    go w.observeDepths()
}

// Stop signals the worker and waits for the in-flight job to finish.
func (w *Worker) Stop(ctx context.Context) error {
    close(w.stop)
    select {
    case <-w.done:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

func (w *Worker) loop() {
    defer close(w.done)
    log.Info().Str("consumer", w.consumer).Msg("background page worker started")
    for {
        select {
        case <-w.stop:
            log.Info().Str("consumer", w.consumer).Msg("background page worker stopped")
            return
        default:
        }

        msgID, job, err := w.q.Dequeue(context.Background(), w.consumer, w.poll)
        if err != nil {
            if msgID != "" {
                // undecodable payload; ack it so it is not redelivered
                log.Error().Err(err).Str("msg_id", msgID).Msg("dropping undecodable page job")
                _ = w.q.Ack(context.Background(), msgID)
                continue
            }
            log.Error().Err(err).Msg("queue dequeue error")
            time.Sleep(500 * time.Millisecond)
            continue
        }
        if job == nil {
            continue
        }

        w.process(msgID, *job)
    }
}

// process assembles one page. The assembler's own existence check makes a
// replayed or duplicate job a cheap no-op.
func (w *Worker) process(msgID string, job queue.PageJob) {
    ctx := context.Background()

    _, err := w.asm.Assemble(ctx, job.DocumentURL, job.Page, job.PageNumber, job.TotalPages)
    if err != nil {
        log.Error().Err(err).Str("url", job.DocumentURL).Int("page", job.PageNumber).
            Msg("background page assembly failed; continuing with next page")
        metrics.IncPageProcessed("background", "error")
        if dlqErr := w.q.AddDLQ(ctx, job, err.Error()); dlqErr != nil {
            log.Error().Err(dlqErr).Int("page", job.PageNumber).Msg("dlq write failed")
        }
    } else {
        metrics.IncPageProcessed("background", "success")
    }

    if err := w.q.Ack(ctx, msgID); err != nil {
        log.Warn().Err(err).Str("msg_id", msgID).Msg("ack failed")
    }
}

// observeDepths exports queue depth gauges until the worker stops.
func (w *Worker) observeDepths() {
    ticker := time.NewTicker(15 * time.Second)
    defer ticker.Stop()
    for {
        select {
        case <-w.stop:
            return
        case <-ticker.C:
            ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
            stream, dlq, err := w.q.Depths(ctx)
            cancel()
            if err != nil {
                continue
            }
            metrics.SetQueueDepth("stream", stream)
            metrics.SetQueueDepth("dlq", dlq)
        }
    }
}
