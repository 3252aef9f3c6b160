package orchestrator

import (
    "context"
    "errors"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Dev-Khant/smartread/internal/ocr"
    "github.com/Dev-Khant/smartread/internal/queue"
)

type memQueue struct {
    mu    sync.Mutex
    jobs  []queue.PageJob
    acked int32
    dlq   []queue.PageJob
}

// Dequeue blocks for the timeout on an empty queue, like the stream read does.
func (m *memQueue) Dequeue(ctx context.Context, consumer string, timeout time.Duration) (string, *queue.PageJob, error) {
    m.mu.Lock()
    if len(m.jobs) == 0 {
        m.mu.Unlock()
        time.Sleep(timeout)
        return "", nil, nil
    }
    job := m.jobs[0]
    m.jobs = m.jobs[1:]
    m.mu.Unlock()
    return "msg-1", &job, nil
}

func (m *memQueue) Ack(ctx context.Context, msgID string) error {
    atomic.AddInt32(&m.acked, 1)
    return nil
}

func (m *memQueue) AddDLQ(ctx context.Context, job queue.PageJob, reason string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.dlq = append(m.dlq, job)
    return nil
}

func (m *memQueue) Depths(ctx context.Context) (int64, int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return int64(len(m.jobs)), int64(len(m.dlq)), nil
}

func TestWorkerProcessesJobsInOrder(t *testing.T) {
    q := &memQueue{jobs: []queue.PageJob{
        {DocumentURL: "https://example.com/doc.pdf", PageNumber: 2, TotalPages: 3, Page: ocr.Page{Index: 1, Markdown: "two"}},
        {DocumentURL: "https://example.com/doc.pdf", PageNumber: 3, TotalPages: 3, Page: ocr.Page{Index: 2, Markdown: "three"}},
    }}
    asm := &fakeAssembler{}
    w := NewWorker(q, asm, 10*time.Millisecond)

    w.Start()
    require.Eventually(t, func() bool {
        return atomic.LoadInt32(&q.acked) == 2
    }, 2*time.Second, 10*time.Millisecond)
    ctx, cancel := context.WithTimeout(context.Background(), time.Second)
    defer cancel()
    require.NoError(t, w.Stop(ctx))

    assert.Equal(t, int32(2), atomic.LoadInt32(&asm.calls))
    assert.Empty(t, q.dlq)
}

func TestWorkerRoutesFailedJobToDLQ(t *testing.T) {
    q := &memQueue{jobs: []queue.PageJob{
        {DocumentURL: "https://example.com/doc.pdf", PageNumber: 2, TotalPages: 2, Page: ocr.Page{Index: 1}},
    }}
    asm := &fakeAssembler{err: errors.New("format failed")}
    w := NewWorker(q, asm, 10*time.Millisecond)

    w.Start()
    require.Eventually(t, func() bool {
        q.mu.Lock()
        defer q.mu.Unlock()
        return len(q.dlq) == 1
    }, 2*time.Second, 10*time.Millisecond)
    ctx, cancel := context.WithTimeout(context.Background(), time.Second)
    defer cancel()
    require.NoError(t, w.Stop(ctx))

    // failed job is still acknowledged so the stream drains
    assert.Equal(t, int32(1), atomic.LoadInt32(&q.acked))
    assert.Equal(t, 2, q.dlq[0].PageNumber)
}
