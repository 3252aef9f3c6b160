package ocr

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/Dev-Khant/smartread/internal/config"
    "github.com/Dev-Khant/smartread/internal/document"
    "github.com/Dev-Khant/smartread/internal/metrics"
)

const endpoint = "https://api.mistral.ai/v1/ocr"

// PageImage is one embedded image as returned by OCR, with the raw payload
// still inline. The assembler replaces it with a hosted URL before anything
// is persisted.
type PageImage struct {
    ID           string  `json:"id"`
    TopLeftX     float64 `json:"top_left_x"`
    TopLeftY     float64 `json:"top_left_y"`
    BottomRightX float64 `json:"bottom_right_x"`
    BottomRightY float64 `json:"bottom_right_y"`
    ImageBase64  string  `json:"image_base64"`
}

// Page is one OCR page: markdown text plus layout data.
type Page struct {
    Index      int                 `json:"index"`
    Markdown   string              `json:"markdown"`
    Images     []PageImage         `json:"images"`
    Dimensions document.Dimensions `json:"dimensions"`
}

// Result is the full-document OCR response.
type Result struct {
    Pages []Page `json:"pages"`
}

// TotalPages returns the page count of the document.
func (r *Result) TotalPages() int { return len(r.Pages) }

// Client calls the Mistral OCR API. Failures here are fatal to the request
// that triggered them.
type Client struct {
    http   *http.Client
    apiKey string
    model  string
    base   string
}

func NewClient(cfg config.OCRConfig) *Client {
    return &Client{
        http:   &http.Client{Timeout: cfg.Timeout},
        apiKey: cfg.APIKey,
        model:  cfg.Model,
        base:   endpoint,
    }
}

type ocrRequest struct {
    Model              string      `json:"model"`
    Document           ocrDocument `json:"document"`
    IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
    Type        string `json:"type"`
    DocumentURL string `json:"document_url"`
}

// Process runs OCR over the whole document at url and returns every page at
// once.
func (c *Client) Process(ctx context.Context, url string) (*Result, error) {
    if c.apiKey == "" {
        return nil, errors.New("missing MISTRAL_API_KEY")
    }

    payload := ocrRequest{
        Model:              c.model,
        Document:           ocrDocument{Type: "document_url", DocumentURL: url},
        IncludeImageBase64: true,
    }
    body, _ := json.Marshal(payload)

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base, bytes.NewReader(body))
    if err != nil {
        return nil, err
    }
    req.Header.Set("Authorization", "Bearer "+c.apiKey)
    req.Header.Set("Content-Type", "application/json")

    start := time.Now()
    resp, err := c.http.Do(req)
    if err != nil {
        metrics.ObserveOCR("error", time.Since(start))
        return nil, fmt.Errorf("ocr request: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        metrics.ObserveOCR("error", time.Since(start))
        return nil, fmt.Errorf("ocr status %d", resp.StatusCode)
    }

    var r Result
    if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
        metrics.ObserveOCR("error", time.Since(start))
        return nil, fmt.Errorf("ocr decode: %w", err)
    }
    if len(r.Pages) == 0 {
        metrics.ObserveOCR("empty", time.Since(start))
        return nil, errors.New("ocr returned no pages")
    }

    metrics.ObserveOCR("success", time.Since(start))
    log.Debug().Str("url", url).Int("pages", len(r.Pages)).Dur("took", time.Since(start)).Msg("ocr complete")
    return &r, nil
}
