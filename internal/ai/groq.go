package ai

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/Dev-Khant/smartread/internal/config"
    "github.com/Dev-Khant/smartread/internal/metrics"
)

const endpoint = "https://api.groq.com/openai/v1/chat/completions"

// ErrRateLimited is returned when the provider answers 429.
var ErrRateLimited = errors.New("rate_limited")

// Client calls the Groq chat-completions API. Both model collaborators
// (highlight extraction and HTML formatting) go through it; their output is
// free text and is treated as untrusted downstream.
type Client struct {
    http           *http.Client
    apiKey         string
    highlightModel string
    formatModel    string
    base           string
}

func NewClient(cfg config.AIConfig) *Client {
    return &Client{
        http:           &http.Client{Timeout: cfg.Timeout},
        apiKey:         cfg.APIKey,
        highlightModel: cfg.HighlightModel,
        formatModel:    cfg.FormatModel,
        base:           endpoint,
    }
}

type chatMessage struct {
    Role    string `json:"role"`
    Content string `json:"content"`
}

type chatRequest struct {
    Model       string        `json:"model"`
    Messages    []chatMessage `json:"messages"`
    Temperature float64       `json:"temperature"`
}

type chatResponse struct {
    Choices []struct {
        Message struct {
            Content string `json:"content"`
        } `json:"message"`
    } `json:"choices"`
}

func (c *Client) complete(ctx context.Context, model, system, user string) (string, error) {
    if c.apiKey == "" {
        return "", errors.New("missing GROQ_API_KEY")
    }

    payload := chatRequest{
        Model: model,
        Messages: []chatMessage{
            {Role: "system", Content: system},
            {Role: "user", Content: user},
        },
        Temperature: 0,
    }
    body, _ := json.Marshal(payload)

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base, bytes.NewReader(body))
    if err != nil {
        return "", err
    }
    req.Header.Set("Authorization", "Bearer "+c.apiKey)
    req.Header.Set("Content-Type", "application/json")

    start := time.Now()
    resp, err := c.http.Do(req)
    if err != nil {
        metrics.ObserveCompletion(model, "error", time.Since(start))
        return "", err
    }
    defer resp.Body.Close()

    if resp.StatusCode == http.StatusTooManyRequests {
        metrics.ObserveCompletion(model, "rate_limited", time.Since(start))
        return "", ErrRateLimited
    }
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        metrics.ObserveCompletion(model, "error", time.Since(start))
        return "", fmt.Errorf("groq status %d", resp.StatusCode)
    }

    var r chatResponse
    if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
        metrics.ObserveCompletion(model, "error", time.Since(start))
        return "", err
    }
    if len(r.Choices) == 0 {
        metrics.ObserveCompletion(model, "empty", time.Since(start))
        return "", errors.New("no choices")
    }

    metrics.ObserveCompletion(model, "success", time.Since(start))
    return r.Choices[0].Message.Content, nil
}

// ExtractHighlights asks the model for the important sentences of a page and
// returns them in model order, cleaned of list markers. At most ten sentences
// come back; the position in the returned slice is the highlight index used
// everywhere downstream.
func (c *Client) ExtractHighlights(ctx context.Context, text string) ([]string, error) {
    out, err := c.complete(ctx, c.highlightModel, highlightPrompt, text)
    if err != nil {
        return nil, fmt.Errorf("extract highlights: %w", err)
    }
    return splitSentences(out), nil
}

// FormatToHTML converts page markdown to HTML with each highlight sentence
// wrapped in an index-tagged span. The index attribute refers to the
// sentence's position in highlights.
func (c *Client) FormatToHTML(ctx context.Context, text string, highlights []string) (string, error) {
    user := fmt.Sprintf("Markdown text: %s\n\nList of sentences to highlight: %s", text, formatList(highlights))
    out, err := c.complete(ctx, c.formatModel, formatPrompt, user)
    if err != nil {
        return "", fmt.Errorf("format to html: %w", err)
    }
    return out, nil
}
