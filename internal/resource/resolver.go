// Package resource fans out web and video lookups for every highlight on a
// page and gathers them into the page's resource map.
package resource

import (
    "context"
    "sync"

    "github.com/rs/zerolog/log"
    "golang.org/x/sync/errgroup"

    "github.com/Dev-Khant/smartread/internal/document"
)

// Searcher is the outbound search collaborator.
type Searcher interface {
    Web(ctx context.Context, query string) ([]document.Article, error)
    Videos(ctx context.Context, query string) ([]document.Video, error)
}

// Resolver runs the per-highlight scatter/gather. Lookups across indices run
// concurrently inside a bounded pool; the two search types for one index are
// independent branches that degrade to empty results on failure.
type Resolver struct {
    search      Searcher
    concurrency int
}

func New(search Searcher, concurrency int) *Resolver {
    if concurrency <= 0 {
        concurrency = 4
    }
    return &Resolver{search: search, concurrency: concurrency}
}

// Resolve returns a resource map with exactly one entry per mapping index.
// A failed branch yields an empty list for that branch only; no failure
// aborts the other indices. Resolve blocks until every branch has completed.
func (r *Resolver) Resolve(ctx context.Context, mapping map[int]string) map[int]document.Resource {
    resources := make(map[int]document.Resource, len(mapping))
    if len(mapping) == 0 {
        return resources
    }

    var mu sync.Mutex
    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(r.concurrency)

    for index, sentence := range mapping {
        index, sentence := index, sentence
        g.Go(func() error {
            res := r.lookup(gctx, index, sentence)
            mu.Lock()
            resources[index] = res
            mu.Unlock()
            return nil
        })
    }
    // goroutines never return errors; gather is the point
    _ = g.Wait()

    return resources
}

// lookup runs both search types for one highlight concurrently.
func (r *Resolver) lookup(ctx context.Context, index int, sentence string) document.Resource {
    var (
        wg       sync.WaitGroup
        articles []document.Article
        videos   []document.Video
    )

    wg.Add(2)
    go func() {
        defer wg.Done()
        var err error
        if articles, err = r.search.Web(ctx, sentence); err != nil {
            log.Warn().Err(err).Int("index", index).Msg("web search failed; empty articles")
            articles = nil
        }
    }()
    go func() {
        defer wg.Done()
        var err error
        if videos, err = r.search.Videos(ctx, sentence); err != nil {
            log.Warn().Err(err).Int("index", index).Msg("video search failed; empty videos")
            videos = nil
        }
    }()
    wg.Wait()

    if articles == nil {
        articles = []document.Article{}
    }
    if videos == nil {
        videos = []document.Video{}
    }
    return document.Resource{Articles: articles, Videos: videos}
}
