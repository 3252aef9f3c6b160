package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    redis "github.com/redis/go-redis/v9"

    "github.com/Dev-Khant/smartread/internal/ocr"
)

// PageJob is one background page-assembly task. It carries the full OCR page
// record so a job is self-contained and idempotent: a worker never has to
// re-run OCR for it, and replaying a job for an already-cached page is a
// no-op at the store.
type PageJob struct {
    DocumentURL string   `json:"document_url"`
    PageNumber  int      `json:"page_number"`
    TotalPages  int      `json:"total_pages"`
    Page        ocr.Page `json:"page"`
}

// RedisQueue carries page jobs over a Redis stream with a consumer group.
// Failed jobs land in a DLQ stream with the failure reason, so a permanently
// failed page leaves an inspectable trace instead of vanishing.
type RedisQueue struct {
    client *redis.Client
    Stream string
    Group  string
    DLQ    string
}

// NewRedisQueue connects to Redis and ensures the stream and group exist.
func NewRedisQueue(redisURL, stream, group string) (*RedisQueue, error) {
    opt, err := redis.ParseURL(redisURL)
    if err != nil {
        return nil, fmt.Errorf("parse redis url: %w", err)
    }
    c := redis.NewClient(opt)
    ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
    defer cancel()
    if err := c.Ping(ctx).Err(); err != nil {
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    q := &RedisQueue{
        client: c,
        Stream: stream,
        Group:  group,
        DLQ:    stream + ":dlq",
    }
    if err := c.XGroupCreateMkStream(ctx, stream, group, "$").Err(); err != nil && !isBusyGroupErr(err) {
        return nil, fmt.Errorf("xgroup create: %w", err)
    }
    return q, nil
}

// isBusyGroupErr matches the BUSYGROUP reply XGroupCreate returns when the
// consumer group already exists.
func isBusyGroupErr(err error) bool {
    if err == nil { return false }
    return strings.Contains(strings.ToUpper(err.Error()), "BUSYGROUP")
}

func (q *RedisQueue) Close() error { return q.client.Close() }

// Ping checks redis connectivity.
func (q *RedisQueue) Ping(ctx context.Context) error { return q.client.Ping(ctx).Err() }

// Enqueue appends a page job to the stream. Stream order is enqueue order,
// so enqueuing pages in ascending order keeps background processing
// ascending too.
func (q *RedisQueue) Enqueue(ctx context.Context, job PageJob) error {
    payload, err := json.Marshal(job)
    if err != nil { return err }
    return q.client.XAdd(ctx, &redis.XAddArgs{
        Stream: q.Stream,
        Values: map[string]any{"data": string(payload)},
    }).Err()
}

// Dequeue reads one job from the consumer group, blocking up to timeout.
// Returns a nil job when the queue is empty.
func (q *RedisQueue) Dequeue(ctx context.Context, consumer string, timeout time.Duration) (string, *PageJob, error) {
    res, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
        Group:    q.Group,
        Consumer: consumer,
        Streams:  []string{q.Stream, ">"},
        Count:    1,
        Block:    timeout,
    }).Result()
    if err != nil {
        if err == redis.Nil { return "", nil, nil }
        return "", nil, err
    }
    if len(res) == 0 || len(res[0].Messages) == 0 { return "", nil, nil }
    msg := res[0].Messages[0]
    raw, _ := msg.Values["data"].(string)
    var job PageJob
    if err := json.Unmarshal([]byte(raw), &job); err != nil {
        return msg.ID, nil, fmt.Errorf("decode page job: %w", err)
    }
    return msg.ID, &job, nil
}

// Ack marks a message as processed.
func (q *RedisQueue) Ack(ctx context.Context, msgID string) error {
    if msgID == "" { return nil }
    return q.client.XAck(ctx, q.Stream, q.Group, msgID).Err()
}

// AddDLQ records a failed page job with the failure reason.
func (q *RedisQueue) AddDLQ(ctx context.Context, job PageJob, reason string) error {
    payload, err := json.Marshal(job)
    if err != nil { return err }
    return q.client.XAdd(ctx, &redis.XAddArgs{
        Stream: q.DLQ,
        Values: map[string]any{"data": string(payload), "reason": reason},
    }).Err()
}

// Depths returns approximate stream and dlq lengths for metrics.
func (q *RedisQueue) Depths(ctx context.Context) (int64, int64, error) {
    pipe := q.client.Pipeline()
    xlen := pipe.XLen(ctx, q.Stream)
    dxlen := pipe.XLen(ctx, q.DLQ)
    if _, err := pipe.Exec(ctx); err != nil { return 0, 0, err }
    return xlen.Val(), dxlen.Val(), nil
}
