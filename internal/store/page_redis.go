package store

import (
    "context"
    "encoding/base64"
    "encoding/json"
    "fmt"
    "time"

    redis "github.com/redis/go-redis/v9"

    "github.com/Dev-Khant/smartread/internal/document"
)

// Record is the persisted tuple for one processed page.
type Record struct {
    URL        string        `json:"url"`
    PageNumber int           `json:"page_number"`
    Page       document.Page `json:"page"`
    TotalPages int           `json:"total_pages"`
    CreatedAt  time.Time     `json:"created_at"`
}

// PageStore caches assembled pages in Redis keyed by (document key, page
// number). Records are append-only: Put never overwrites an existing page,
// which is what makes background reprocessing and concurrent duplicate
// requests benign.
type PageStore struct {
    client *redis.Client
}

func NewPageStore(redisURL string) (*PageStore, error) {
    opt, err := redis.ParseURL(redisURL)
    if err != nil { return nil, err }
    c := redis.NewClient(opt)
    ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
    defer cancel()
    if err := c.Ping(ctx).Err(); err != nil { return nil, fmt.Errorf("redis ping: %w", err) }
    return &PageStore{client: c}, nil
}

func (s *PageStore) Close() error { return s.client.Close() }

func (s *PageStore) pageKey(docKey string, page int) string {
    return fmt.Sprintf("doc:%s:page:%d", docKey, page)
}

func (s *PageStore) totalKey(docKey string) string {
    return fmt.Sprintf("doc:%s:pages", docKey)
}

func (s *PageStore) processingKey(docKey string) string {
    return fmt.Sprintf("doc:%s:processing", docKey)
}

// Exists reports whether a page is already cached.
func (s *PageStore) Exists(ctx context.Context, docKey string, page int) (bool, error) {
    n, err := s.client.Exists(ctx, s.pageKey(docKey, page)).Result()
    return n == 1, err
}

// encodeRecord serializes a record with the page HTML base64-encoded at rest.
func encodeRecord(rec Record) ([]byte, error) {
    rec.Page.Content = base64.StdEncoding.EncodeToString([]byte(rec.Page.Content))
    if rec.CreatedAt.IsZero() {
        rec.CreatedAt = time.Now().UTC()
    }
    return json.Marshal(rec)
}

// decodeRecord is the inverse of encodeRecord.
func decodeRecord(b []byte) (Record, error) {
    var rec Record
    if err := json.Unmarshal(b, &rec); err != nil {
        return Record{}, fmt.Errorf("decode page record: %w", err)
    }
    content, err := base64.StdEncoding.DecodeString(rec.Page.Content)
    if err != nil {
        return Record{}, fmt.Errorf("decode page content: %w", err)
    }
    rec.Page.Content = string(content)
    return rec, nil
}

// Put stores a page record if absent. Returns false without error when the
// page was already present.
func (s *PageStore) Put(ctx context.Context, docKey string, page int, rec Record) (bool, error) {
    b, err := encodeRecord(rec)
    if err != nil { return false, err }
    stored, err := s.client.SetNX(ctx, s.pageKey(docKey, page), b, 0).Result()
    if err != nil { return false, err }
    return stored, nil
}

// Get loads a page record, decoding the HTML content. The second return is
// false when the page is absent.
func (s *PageStore) Get(ctx context.Context, docKey string, page int) (Record, bool, error) {
    b, err := s.client.Get(ctx, s.pageKey(docKey, page)).Bytes()
    if err == redis.Nil { return Record{}, false, nil }
    if err != nil { return Record{}, false, err }
    rec, err := decodeRecord(b)
    if err != nil { return Record{}, false, err }
    return rec, true, nil
}

// SetTotalPages records the document's page count once OCR has run.
func (s *PageStore) SetTotalPages(ctx context.Context, docKey string, total int) error {
    return s.client.Set(ctx, s.totalKey(docKey), total, 0).Err()
}

// TotalPages returns the known page count for a document, 0 when unknown.
func (s *PageStore) TotalPages(ctx context.Context, docKey string) (int, error) {
    n, err := s.client.Get(ctx, s.totalKey(docKey)).Int()
    if err == redis.Nil { return 0, nil }
    return n, err
}

// TryMarkProcessing sets the document-level processing marker. Returns true
// when this caller won and should trigger OCR; a TTL guards against a
// crashed owner leaving the marker behind forever.
func (s *PageStore) TryMarkProcessing(ctx context.Context, docKey string, ttl time.Duration) (bool, error) {
    return s.client.SetNX(ctx, s.processingKey(docKey), 1, ttl).Result()
}

// ClearProcessing removes the processing marker.
func (s *PageStore) ClearProcessing(ctx context.Context, docKey string) error {
    return s.client.Del(ctx, s.processingKey(docKey)).Err()
}

// Highlights collects the highlight lists of all cached pages of a document,
// keyed by zero-based page index.
func (s *PageStore) Highlights(ctx context.Context, docKey string) (map[int][]string, error) {
    total, err := s.TotalPages(ctx, docKey)
    if err != nil { return nil, err }
    out := make(map[int][]string)
    for p := 1; p <= total; p++ {
        rec, ok, err := s.Get(ctx, docKey, p)
        if err != nil { return nil, err }
        if !ok { continue }
        out[p-1] = rec.Page.Highlights
    }
    return out, nil
}
