// Package orchestrator owns the request-facing state machine: serve a page
// from cache, assemble the requested page synchronously on a first-page
// miss, or trigger processing and answer "processing" for pages that are
// not ready yet.
package orchestrator

import (
    "context"
    "encoding/json"
    "net/http"
    "net/url"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    "golang.org/x/sync/singleflight"

    "github.com/Dev-Khant/smartread/internal/document"
    "github.com/Dev-Khant/smartread/internal/metrics"
    "github.com/Dev-Khant/smartread/internal/ocr"
    "github.com/Dev-Khant/smartread/internal/queue"
    "github.com/Dev-Khant/smartread/internal/store"
)

// processingTTL caps how long the document-level processing marker survives
// a crashed owner before another request may retrigger OCR.
const processingTTL = 15 * time.Minute

// OCRClient is the full-document OCR collaborator.
type OCRClient interface {
    Process(ctx context.Context, url string) (*ocr.Result, error)
}

// Assembler builds and persists one page.
type Assembler interface {
    Assemble(ctx context.Context, url string, page ocr.Page, pageNumber, totalPages int) (*document.Page, error)
}

// Pages is the page-store surface the orchestrator needs.
type Pages interface {
    Get(ctx context.Context, docKey string, page int) (store.Record, bool, error)
    TotalPages(ctx context.Context, docKey string) (int, error)
    SetTotalPages(ctx context.Context, docKey string, total int) error
    TryMarkProcessing(ctx context.Context, docKey string, ttl time.Duration) (bool, error)
    ClearProcessing(ctx context.Context, docKey string) error
    Highlights(ctx context.Context, docKey string) (map[int][]string, error)
}

// Queue schedules background page jobs.
type Queue interface {
    Enqueue(ctx context.Context, job queue.PageJob) error
}

type Dependencies struct {
    OCR       OCRClient
    Assembler Assembler
    Pages     Pages
    Queue     Queue
}

type Orchestrator struct {
    deps   Dependencies
    flight singleflight.Group
}

func New(deps Dependencies) *Orchestrator {
    return &Orchestrator{deps: deps}
}

func (o *Orchestrator) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("/api/extract", o.handleExtract)
    mux.HandleFunc("/api/highlights", o.handleHighlights)
}

type extractReq struct {
    URL        string `json:"url"`
    PageNumber int    `json:"page_number"`
}

type apiResponse struct {
    Status  string         `json:"status"`
    Message string         `json:"message"`
    Data    map[string]any `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, resp apiResponse) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, code int, msg string) {
    writeJSON(w, code, apiResponse{Status: "error", Message: msg})
}

func (o *Orchestrator) handleExtract(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    defer r.Body.Close()

    var req extractReq
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeError(w, http.StatusBadRequest, "invalid json")
        return
    }
    if req.PageNumber == 0 {
        req.PageNumber = 1
    }
    if req.PageNumber < 1 {
        writeError(w, http.StatusBadRequest, "page_number must be positive")
        return
    }
    if !validURL(req.URL) {
        writeError(w, http.StatusBadRequest, "invalid URL provided")
        return
    }

    reqID := uuid.NewString()
    logger := log.With().Str("request_id", reqID).Str("url", req.URL).Int("page", req.PageNumber).Logger()
    docKey := document.Key(req.URL)
    ctx := r.Context()

    // Cached: short-circuit, no collaborator calls.
    rec, ok, err := o.deps.Pages.Get(ctx, docKey, req.PageNumber)
    if err != nil {
        logger.Error().Err(err).Msg("page store lookup failed")
        writeError(w, http.StatusInternalServerError, "storage unavailable")
        return
    }
    if ok {
        metrics.IncCacheLookup("hit")
        logger.Debug().Msg("served from cache")
        writeJSON(w, http.StatusOK, apiResponse{
            Status:  "success",
            Message: "Text extracted successfully",
            Data:    map[string]any{"total_pages": rec.TotalPages, "page": rec.Page},
        })
        return
    }
    metrics.IncCacheLookup("miss")

    total, err := o.deps.Pages.TotalPages(ctx, docKey)
    if err != nil {
        logger.Error().Err(err).Msg("total pages lookup failed")
        writeError(w, http.StatusInternalServerError, "storage unavailable")
        return
    }
    if total > 0 && req.PageNumber > total {
        writeError(w, http.StatusBadRequest, "page_number out of range")
        return
    }

    if req.PageNumber == 1 {
        o.serveFirstPage(ctx, w, logger, req.URL, docKey)
        return
    }

    // Non-first page and not cached yet: make sure processing is underway,
    // then tell the caller to poll again.
    o.ensureProcessing(ctx, req.URL, docKey)
    total, _ = o.deps.Pages.TotalPages(ctx, docKey)
    writeJSON(w, http.StatusAccepted, apiResponse{
        Status:  "processing",
        Message: "Document is being processed",
        Data:    map[string]any{"total_pages": total},
    })
}

// serveFirstPage runs the synchronous path: OCR the document once, assemble
// page 1 inline, schedule the rest in the background and return the fresh
// page. Errors here are fatal to the request.
func (o *Orchestrator) serveFirstPage(ctx context.Context, w http.ResponseWriter, logger zerolog.Logger, docURL, docKey string) {
    result, err := o.runOCR(ctx, docURL, docKey)
    if err != nil {
        logger.Error().Err(err).Msg("ocr failed")
        writeError(w, http.StatusInternalServerError, "failed to process document")
        return
    }
    if result.TotalPages() == 0 {
        logger.Error().Msg("ocr returned no pages")
        writeError(w, http.StatusInternalServerError, "failed to process document")
        return
    }

    page, err := o.deps.Assembler.Assemble(ctx, docURL, result.Pages[0], 1, result.TotalPages())
    if err != nil {
        logger.Error().Err(err).Msg("page assembly failed")
        metrics.IncPageProcessed("sync", "error")
        writeError(w, http.StatusInternalServerError, "failed to process page")
        return
    }
    metrics.IncPageProcessed("sync", "success")

    writeJSON(w, http.StatusOK, apiResponse{
        Status:  "success",
        Message: "Text extracted successfully",
        Data:    map[string]any{"total_pages": result.TotalPages(), "page": page},
    })
}

// runOCR invokes OCR exactly once per document key across concurrent
// requests, records the total page count and enqueues pages 2..N in
// ascending order. It claims the document-level processing marker before
// the OCR call so a later poll for an uncached page sees the document as
// already in flight and does not retrigger OCR; the marker TTL covers
// crash recovery.
func (o *Orchestrator) runOCR(ctx context.Context, docURL, docKey string) (*ocr.Result, error) {
    v, err, _ := o.flight.Do(docKey, func() (any, error) {
        won, err := o.deps.Pages.TryMarkProcessing(ctx, docKey, processingTTL)
        if err != nil {
            log.Warn().Err(err).Str("doc", docKey).Msg("processing marker failed")
        }
        result, err := o.deps.OCR.Process(ctx, docURL)
        if err != nil {
            if won {
                _ = o.deps.Pages.ClearProcessing(ctx, docKey)
            }
            return nil, err
        }
        if err := o.deps.Pages.SetTotalPages(ctx, docKey, result.TotalPages()); err != nil {
            log.Warn().Err(err).Str("doc", docKey).Msg("storing total pages failed")
        }
        if won {
            o.enqueuePages(ctx, docURL, result, 2)
        }
        return result, nil
    })
    if err != nil {
        return nil, err
    }
    return v.(*ocr.Result), nil
}

// ensureProcessing triggers full-document processing at most once per
// document, backed by the store-level marker so overlapping requests across
// processes stay deduplicated. The OCR run itself is detached from the
// request.
func (o *Orchestrator) ensureProcessing(ctx context.Context, docURL, docKey string) {
    won, err := o.deps.Pages.TryMarkProcessing(ctx, docKey, processingTTL)
    if err != nil {
        log.Error().Err(err).Str("doc", docKey).Msg("processing marker failed")
        return
    }
    if !won {
        return
    }

    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), processingTTL)
        defer cancel()

        _, err, _ := o.flight.Do(docKey, func() (any, error) {
            result, err := o.deps.OCR.Process(ctx, docURL)
            if err != nil {
                return nil, err
            }
            if err := o.deps.Pages.SetTotalPages(ctx, docKey, result.TotalPages()); err != nil {
                log.Warn().Err(err).Str("doc", docKey).Msg("storing total pages failed")
            }
            // page 1 included: nobody has assembled it on this path
            o.enqueuePages(ctx, docURL, result, 1)
            return result, nil
        })
        if err != nil {
            log.Error().Err(err).Str("doc", docKey).Msg("background ocr failed")
            // let a later request retry instead of poisoning the document
            _ = o.deps.Pages.ClearProcessing(context.Background(), docKey)
        }
    }()
}

// enqueuePages schedules pages from..N in ascending order so the single
// background consumer processes them sequentially.
func (o *Orchestrator) enqueuePages(ctx context.Context, docURL string, result *ocr.Result, from int) {
    total := result.TotalPages()
    for n := from; n <= total; n++ {
        job := queue.PageJob{
            DocumentURL: docURL,
            PageNumber:  n,
            TotalPages:  total,
            Page:        result.Pages[n-1],
        }
        if err := o.deps.Queue.Enqueue(ctx, job); err != nil {
            log.Error().Err(err).Int("page", n).Str("url", docURL).Msg("enqueue page failed")
        }
    }
}

func (o *Orchestrator) handleHighlights(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    docURL := r.URL.Query().Get("url")
    if !validURL(docURL) {
        writeError(w, http.StatusBadRequest, "invalid URL provided")
        return
    }
    highlights, err := o.deps.Pages.Highlights(r.Context(), document.Key(docURL))
    if err != nil {
        writeError(w, http.StatusInternalServerError, "storage unavailable")
        return
    }
    writeJSON(w, http.StatusOK, apiResponse{
        Status:  "success",
        Message: "Highlights retrieved successfully",
        Data:    map[string]any{"highlights": highlights},
    })
}

func validURL(raw string) bool {
    if raw == "" {
        return false
    }
    u, err := url.Parse(raw)
    if err != nil {
        return false
    }
    return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
