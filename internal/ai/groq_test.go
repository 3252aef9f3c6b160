package ai

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func testClient(base string) *Client {
    return &Client{
        http:           &http.Client{Timeout: 5 * time.Second},
        apiKey:         "test-key",
        highlightModel: "llama-3.1-8b-instant",
        formatModel:    "llama-3.3-70b-versatile",
        base:           base,
    }
}

func chatServer(t *testing.T, content string, capture *chatRequest) *httptest.Server {
    t.Helper()
    return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
        if capture != nil {
            require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
        }
        var resp chatResponse
        resp.Choices = make([]struct {
            Message struct {
                Content string `json:"content"`
            } `json:"message"`
        }, 1)
        resp.Choices[0].Message.Content = content
        _ = json.NewEncoder(w).Encode(resp)
    }))
}

func TestExtractHighlightsCleansModelOutput(t *testing.T) {
    var got chatRequest
    srv := chatServer(t, "1. First key point.\n2. Second key point.\n", &got)
    defer srv.Close()

    sentences, err := testClient(srv.URL).ExtractHighlights(context.Background(), "page text")
    require.NoError(t, err)
    assert.Equal(t, []string{"First key point.", "Second key point."}, sentences)

    assert.Equal(t, "llama-3.1-8b-instant", got.Model)
    require.Len(t, got.Messages, 2)
    assert.Equal(t, "system", got.Messages[0].Role)
    assert.Equal(t, "page text", got.Messages[1].Content)
    assert.Zero(t, got.Temperature)
}

func TestFormatToHTMLSendsNumberedHighlightList(t *testing.T) {
    var got chatRequest
    srv := chatServer(t, "<p><highlight index='0'>Alpha.</highlight></p>", &got)
    defer srv.Close()

    html, err := testClient(srv.URL).FormatToHTML(context.Background(), "# Title", []string{"Alpha.", "Beta."})
    require.NoError(t, err)
    assert.Contains(t, html, "highlight index='0'")

    assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
    user := got.Messages[1].Content
    assert.Contains(t, user, "Markdown text: # Title")
    assert.Contains(t, user, "0. Alpha.")
    assert.Contains(t, user, "1. Beta.")
}

func TestCompleteRateLimited(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusTooManyRequests)
    }))
    defer srv.Close()

    _, err := testClient(srv.URL).ExtractHighlights(context.Background(), "text")
    assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCompleteNoChoices(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _, _ = w.Write([]byte(`{"choices":[]}`))
    }))
    defer srv.Close()

    _, err := testClient(srv.URL).FormatToHTML(context.Background(), "text", []string{"a"})
    assert.Error(t, err)
}

func TestCompleteRequiresAPIKey(t *testing.T) {
    c := testClient("http://unused")
    c.apiKey = ""
    _, err := c.ExtractHighlights(context.Background(), "text")
    assert.Error(t, err)
}
