// Package pipeline assembles one OCR page into the canonical Page record:
// highlight extraction, HTML formatting, index parsing, resource resolution,
// image hosting and a single atomic store write at the end.
package pipeline

import (
    "context"
    "fmt"

    "github.com/rs/zerolog/log"

    "github.com/Dev-Khant/smartread/internal/document"
    "github.com/Dev-Khant/smartread/internal/highlight"
    "github.com/Dev-Khant/smartread/internal/metrics"
    "github.com/Dev-Khant/smartread/internal/ocr"
    "github.com/Dev-Khant/smartread/internal/store"
)

// Completer is the model collaborator pair: highlight extraction and HTML
// formatting. Both outputs are untrusted free text.
type Completer interface {
    ExtractHighlights(ctx context.Context, text string) ([]string, error)
    FormatToHTML(ctx context.Context, text string, highlights []string) (string, error)
}

// Resolver gathers per-highlight web and video resources.
type Resolver interface {
    Resolve(ctx context.Context, mapping map[int]string) map[int]document.Resource
}

// Uploader hosts embedded page images.
type Uploader interface {
    UploadBase64(ctx context.Context, key, encoded string) (string, error)
}

// Pages is the persistence surface the assembler needs.
type Pages interface {
    Exists(ctx context.Context, docKey string, page int) (bool, error)
    Get(ctx context.Context, docKey string, page int) (store.Record, bool, error)
    Put(ctx context.Context, docKey string, page int, rec store.Record) (bool, error)
}

// Assembler builds and persists Page records. Assembly of one page either
// completes fully or leaves no trace: persistence happens once, at the end,
// so a failed page is safe to retry from the top.
type Assembler struct {
    ai       Completer
    resolver Resolver
    assets   Uploader
    pages    Pages
}

func New(ai Completer, resolver Resolver, assets Uploader, pages Pages) *Assembler {
    return &Assembler{ai: ai, resolver: resolver, assets: assets, pages: pages}
}

// Assemble processes one OCR page into a persisted Page record. If the page
// is already cached the stored record is returned and no collaborator is
// called.
func (a *Assembler) Assemble(ctx context.Context, url string, page ocr.Page, pageNumber, totalPages int) (*document.Page, error) {
    docKey := document.Key(url)

    exists, err := a.pages.Exists(ctx, docKey, pageNumber)
    if err != nil {
        return nil, fmt.Errorf("existence check: %w", err)
    }
    if exists {
        rec, ok, err := a.pages.Get(ctx, docKey, pageNumber)
        if err != nil {
            return nil, fmt.Errorf("load cached page: %w", err)
        }
        if ok {
            return &rec.Page, nil
        }
        // raced with a deletion; fall through and rebuild
    }

    highlights, err := a.ai.ExtractHighlights(ctx, page.Markdown)
    if err != nil {
        return nil, err
    }

    html, err := a.ai.FormatToHTML(ctx, page.Markdown, highlights)
    if err != nil {
        return nil, err
    }

    // the formatter output is the single source of the index mapping; the
    // extractor list only feeds the prompt
    mapping := highlight.ParseMapping(html)
    resources := a.resolver.Resolve(ctx, mapping)

    images := a.hostImages(ctx, docKey, pageNumber, page.Images)

    assembled := document.Page{
        Index:      pageNumber,
        Content:    html,
        Highlights: highlight.Sentences(mapping),
        Dimensions: page.Dimensions,
        Images:     images,
        Resources:  resources,
    }

    rec := store.Record{
        URL:        url,
        PageNumber: pageNumber,
        Page:       assembled,
        TotalPages: totalPages,
    }
    stored, err := a.pages.Put(ctx, docKey, pageNumber, rec)
    if err != nil {
        return nil, fmt.Errorf("persist page: %w", err)
    }
    if !stored {
        // concurrent request assembled the same page first; harmless
        log.Debug().Str("doc", docKey).Int("page", pageNumber).Msg("page already persisted by concurrent run")
    }

    log.Info().Str("url", url).Int("page", pageNumber).
        Int("highlights", len(assembled.Highlights)).
        Int("images", len(images)).
        Msg("page assembled")
    return &assembled, nil
}

// hostImages uploads each embedded image and swaps inline data for the
// hosted URL. A failed upload degrades that image only; the bounding box
// still ships so the client can reserve layout space.
func (a *Assembler) hostImages(ctx context.Context, docKey string, pageNumber int, imgs []ocr.PageImage) []document.Image {
    out := make([]document.Image, 0, len(imgs))
    for _, img := range imgs {
        hosted := document.Image{
            ID:           img.ID,
            TopLeftX:     img.TopLeftX,
            TopLeftY:     img.TopLeftY,
            BottomRightX: img.BottomRightX,
            BottomRightY: img.BottomRightY,
        }
        if img.ImageBase64 != "" {
            key := fmt.Sprintf("docs/%s/page_%d/%s", docKey, pageNumber, img.ID)
            url, err := a.assets.UploadBase64(ctx, key, img.ImageBase64)
            if err != nil {
                log.Warn().Err(err).Str("image", img.ID).Int("page", pageNumber).Msg("image upload failed")
                metrics.IncAssetUpload("image", "error")
            } else {
                hosted.ImageURL = url
                metrics.IncAssetUpload("image", "success")
            }
        }
        out = append(out, hosted)
    }
    return out
}
