package search

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    backoff "github.com/cenkalti/backoff/v4"
    "github.com/rs/zerolog/log"
    "golang.org/x/time/rate"

    "github.com/Dev-Khant/smartread/internal/config"
    "github.com/Dev-Khant/smartread/internal/document"
    "github.com/Dev-Khant/smartread/internal/metrics"
)

const (
    baseURL    = "https://google.serper.dev"
    maxResults = 5
)

// Uploader hosts fetched thumbnail bytes and returns the public URL.
type Uploader interface {
    Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Client queries the Serper API for web and video results. All outbound
// requests share one rate limiter so a page-wide fan-out cannot exceed the
// API quota.
type Client struct {
    http     *http.Client
    apiKey   string
    base     string
    limiter  *rate.Limiter
    uploader Uploader
    thumbs   *http.Client
}

func NewClient(cfg config.SearchConfig, uploader Uploader) *Client {
    return &Client{
        http:     &http.Client{Timeout: cfg.Timeout},
        apiKey:   cfg.APIKey,
        base:     baseURL,
        limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
        uploader: uploader,
        thumbs:   &http.Client{Timeout: cfg.ThumbnailTimeout},
    }
}

type serperResult struct {
    Organic []struct {
        Title   string `json:"title"`
        Link    string `json:"link"`
        Snippet string `json:"snippet"`
    } `json:"organic"`
    Videos []struct {
        Title    string `json:"title"`
        Link     string `json:"link"`
        Duration string `json:"duration"`
    } `json:"videos"`
}

// Web returns up to five web results for the query.
func (c *Client) Web(ctx context.Context, query string) ([]document.Article, error) {
    start := time.Now()
    res, err := c.search(ctx, "search", query)
    if err != nil {
        metrics.ObserveSearch("web", "error", time.Since(start))
        return nil, err
    }
    metrics.ObserveSearch("web", "success", time.Since(start))

    articles := make([]document.Article, 0, maxResults)
    for _, item := range res.Organic {
        articles = append(articles, document.Article{Title: item.Title, Link: item.Link, Snippet: item.Snippet})
        if len(articles) == maxResults {
            break
        }
    }
    return articles, nil
}

// Videos returns up to five video results for the query, each carrying a
// hosted thumbnail URL when one could be resolved. Thumbnail failures are
// per-entry and non-fatal.
func (c *Client) Videos(ctx context.Context, query string) ([]document.Video, error) {
    start := time.Now()
    res, err := c.search(ctx, "videos", "Find relevant videos about this: "+query)
    if err != nil {
        metrics.ObserveSearch("videos", "error", time.Since(start))
        return nil, err
    }
    metrics.ObserveSearch("videos", "success", time.Since(start))

    videos := make([]document.Video, 0, maxResults)
    for _, item := range res.Videos {
        v := document.Video{Title: item.Title, Link: item.Link, Duration: item.Duration}
        if id := YouTubeVideoID(item.Link); id != "" {
            if url := c.hostThumbnail(ctx, id); url != "" {
                v.ImageURL = &url
            }
        }
        videos = append(videos, v)
        if len(videos) == maxResults {
            break
        }
    }
    return videos, nil
}

func (c *Client) search(ctx context.Context, kind, query string) (*serperResult, error) {
    if c.apiKey == "" {
        return nil, fmt.Errorf("missing SERPER_API_KEY")
    }
    if err := c.limiter.Wait(ctx); err != nil {
        return nil, err
    }

    payload, _ := json.Marshal(map[string]string{"q": query})

    var result serperResult
    op := func() error {
        req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+kind, bytes.NewReader(payload))
        if err != nil {
            return backoff.Permanent(err)
        }
        req.Header.Set("X-API-KEY", c.apiKey)
        req.Header.Set("Content-Type", "application/json")

        resp, err := c.http.Do(req)
        if err != nil {
            return err
        }
        defer resp.Body.Close()

        if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
            return fmt.Errorf("serper %s status %d", kind, resp.StatusCode)
        }
        if resp.StatusCode < 200 || resp.StatusCode >= 300 {
            return backoff.Permanent(fmt.Errorf("serper %s status %d", kind, resp.StatusCode))
        }
        return json.NewDecoder(resp.Body).Decode(&result)
    }

    bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
    if err := backoff.Retry(op, bo); err != nil {
        return nil, err
    }
    return &result, nil
}

// hostThumbnail fetches the best available YouTube thumbnail and uploads it
// to the asset store. Returns "" when neither fetch nor upload succeeds.
func (c *Client) hostThumbnail(ctx context.Context, videoID string) string {
    data := c.fetchThumbnail(ctx, videoID)
    if data == nil {
        return ""
    }
    url, err := c.uploader.Upload(ctx, "video_"+videoID, data, "")
    if err != nil {
        log.Warn().Err(err).Str("video_id", videoID).Msg("thumbnail upload failed")
        metrics.IncAssetUpload("thumbnail", "error")
        return ""
    }
    metrics.IncAssetUpload("thumbnail", "success")
    return url
}

// fetchThumbnail tries the high-resolution variant first and falls back to
// medium quality.
func (c *Client) fetchThumbnail(ctx context.Context, videoID string) []byte {
    for _, variant := range []string{"maxresdefault", "mqdefault"} {
        url := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, variant)
        req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
        if err != nil {
            return nil
        }
        resp, err := c.thumbs.Do(req)
        if err != nil {
            log.Debug().Err(err).Str("video_id", videoID).Str("variant", variant).Msg("thumbnail fetch failed")
            continue
        }
        if resp.StatusCode == http.StatusOK {
            data, err := readAll(resp.Body)
            resp.Body.Close()
            if err == nil && len(data) > 0 {
                return data
            }
            continue
        }
        resp.Body.Close()
    }
    return nil
}
