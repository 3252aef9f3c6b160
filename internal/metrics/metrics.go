package metrics

import (
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    pagesProcessed = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "smartread",
            Name:      "pages_processed_total",
            Help:      "Total pages processed by mode (sync, background) and result (success, error, skipped)",
        },
        []string{"mode", "result"},
    )

    ocrRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "smartread",
            Name:      "ocr_requests_total",
            Help:      "Total OCR requests by result",
        },
        []string{"result"},
    )

    ocrLatency = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "smartread",
            Name:      "ocr_request_duration_seconds",
            Help:      "Duration of OCR requests",
            Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
        },
    )

    completionRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "smartread",
            Name:      "completion_requests_total",
            Help:      "Total model completion requests by model and result",
        },
        []string{"model", "result"},
    )

    completionLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "smartread",
            Name:      "completion_request_duration_seconds",
            Help:      "Duration of model completion requests by model",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"model"},
    )

    searchRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "smartread",
            Name:      "search_requests_total",
            Help:      "Total search requests by type (web, videos) and result",
        },
        []string{"type", "result"},
    )

    searchLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "smartread",
            Name:      "search_request_duration_seconds",
            Help:      "Duration of search requests by type",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"type"},
    )

    assetUploads = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "smartread",
            Name:      "asset_uploads_total",
            Help:      "Total asset store uploads by kind (image, thumbnail) and result",
        },
        []string{"kind", "result"},
    )

    cacheLookups = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "smartread",
            Name:      "page_cache_lookups_total",
            Help:      "Page store lookups by outcome (hit, miss)",
        },
        []string{"outcome"},
    )

    queueDepth = prometheus.NewGaugeVec(
        prometheus.GaugeOpts{
            Namespace: "smartread",
            Name:      "queue_depth",
            Help:      "Background page queue depth gauges for stream and dlq",
        },
        []string{"type"},
    )
)

// Init registers collectors.
func Init() {
    prometheus.MustRegister(
        pagesProcessed, ocrRequests, ocrLatency,
        completionRequests, completionLatency,
        searchRequests, searchLatency,
        assetUploads, cacheLookups, queueDepth,
    )
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncPageProcessed(mode, result string) { pagesProcessed.WithLabelValues(mode, result).Inc() }

func ObserveOCR(result string, dur time.Duration) {
    ocrRequests.WithLabelValues(result).Inc()
    ocrLatency.Observe(dur.Seconds())
}

func ObserveCompletion(model, result string, dur time.Duration) {
    completionRequests.WithLabelValues(model, result).Inc()
    completionLatency.WithLabelValues(model).Observe(dur.Seconds())
}

func ObserveSearch(kind, result string, dur time.Duration) {
    searchRequests.WithLabelValues(kind, result).Inc()
    searchLatency.WithLabelValues(kind).Observe(dur.Seconds())
}

func IncAssetUpload(kind, result string) { assetUploads.WithLabelValues(kind, result).Inc() }

func IncCacheLookup(outcome string) { cacheLookups.WithLabelValues(outcome).Inc() }

func SetQueueDepth(kind string, v int64) { queueDepth.WithLabelValues(kind).Set(float64(v)) }
