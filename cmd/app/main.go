package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    "github.com/Dev-Khant/smartread/internal/ai"
    "github.com/Dev-Khant/smartread/internal/assets"
    cfgpkg "github.com/Dev-Khant/smartread/internal/config"
    logpkg "github.com/Dev-Khant/smartread/internal/logger"
    "github.com/Dev-Khant/smartread/internal/metrics"
    "github.com/Dev-Khant/smartread/internal/ocr"
    "github.com/Dev-Khant/smartread/internal/orchestrator"
    "github.com/Dev-Khant/smartread/internal/pipeline"
    "github.com/Dev-Khant/smartread/internal/queue"
    "github.com/Dev-Khant/smartread/internal/resource"
    "github.com/Dev-Khant/smartread/internal/search"
    "github.com/Dev-Khant/smartread/internal/store"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    // Init logging
    _ = logpkg.Init(cfg.Logging, cfg.Axiom)
    defer logpkg.Close()

    metrics.Init()

    // Page store + queue share the redis instance
    ps, err := store.NewPageStore(cfg.Queue.RedisURL)
    if err != nil {
        log.Fatal().Err(err).Msg("failed to init page store")
    }
    defer ps.Close()

    rq, err := queue.NewRedisQueue(cfg.Queue.RedisURL, cfg.Queue.Stream, cfg.Queue.Group)
    if err != nil {
        log.Fatal().Err(err).Msg("failed to init redis queue")
    }
    defer rq.Close()

    ctx := context.Background()
    s3store, err := assets.New(ctx, cfg.Storage)
    if err != nil {
        log.Fatal().Err(err).Msg("failed to init asset store")
    }

    ocrClient := ocr.NewClient(cfg.OCR)
    aiClient := ai.NewClient(cfg.AI)
    searchClient := search.NewClient(cfg.Search, s3store)
    resolver := resource.New(searchClient, cfg.Search.Concurrency)
    assembler := pipeline.New(aiClient, resolver, s3store, ps)

    orch := orchestrator.New(orchestrator.Dependencies{
        OCR:       ocrClient,
        Assembler: assembler,
        Pages:     ps,
        Queue:     rq,
    })
    mux := http.NewServeMux()
    orch.RegisterRoutes(mux)
    mux.Handle("/metrics", metrics.Handler())

    // Background page worker (optional)
    runWorker := os.Getenv("RUN_WORKER")
    if runWorker == "" || runWorker == "1" || runWorker == "true" {
        worker := orchestrator.NewWorker(rq, assembler, cfg.Queue.PollInterval)
        worker.Start()
        defer worker.Stop(context.Background())
    }

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    srv := &http.Server{Addr: ":" + port, Handler: mux}

    go func() {
        log.Info().Msgf("HTTP server listening on :%s", port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
    fmt.Println("shutdown complete")
}
