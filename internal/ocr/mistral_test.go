package ocr

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
        http:   &http.Client{Timeout: 5 * time.Second},
        apiKey: "test-key",
        model:  "mistral-ocr-latest",
        base:   base,
    }
}

func TestProcessReturnsAllPages(t *testing.T) {
    var got ocrRequest
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
        require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
        _ = json.NewEncoder(w).Encode(Result{Pages: []Page{
            {Index: 0, Markdown: "# Page one"},
            {Index: 1, Markdown: "Page two", Images: []PageImage{{ID: "img-0.jpeg", ImageBase64: "aGk="}}},
        }})
    }))
    defer srv.Close()

    result, err := testClient(srv.URL).Process(context.Background(), "https://example.com/doc.pdf")
    require.NoError(t, err)
    assert.Equal(t, 2, result.TotalPages())
    assert.Equal(t, "# Page one", result.Pages[0].Markdown)
    assert.Len(t, result.Pages[1].Images, 1)

    assert.Equal(t, "mistral-ocr-latest", got.Model)
    assert.Equal(t, "document_url", got.Document.Type)
    assert.Equal(t, "https://example.com/doc.pdf", got.Document.DocumentURL)
    assert.True(t, got.IncludeImageBase64)
}

func TestProcessRejectsEmptyDocument(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(Result{})
    }))
    defer srv.Close()

    _, err := testClient(srv.URL).Process(context.Background(), "https://example.com/doc.pdf")
    assert.Error(t, err)
}

func TestProcessSurfacesAPIErrors(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "unauthorized", http.StatusUnauthorized)
    }))
    defer srv.Close()

    _, err := testClient(srv.URL).Process(context.Background(), "https://example.com/doc.pdf")
    assert.ErrorContains(t, err, "401")
}

func TestProcessRequiresAPIKey(t *testing.T) {
    c := testClient("http://unused")
    c.apiKey = ""
    _, err := c.Process(context.Background(), "https://example.com/doc.pdf")
    assert.Error(t, err)
}
