package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// OCRConfig defines the Mistral OCR collaborator.
type OCRConfig struct {
    APIKey  string
    Model   string
    Timeout time.Duration
}

// AIConfig defines the Groq completion collaborator and its two models.
type AIConfig struct {
    APIKey         string
    HighlightModel string
    FormatModel    string
    Timeout        time.Duration
}

// SearchConfig defines the Serper search collaborator and fan-out limits.
type SearchConfig struct {
    APIKey           string
    Timeout          time.Duration
    ThumbnailTimeout time.Duration
    Concurrency      int     // max in-flight highlight lookups per page
    RatePerSecond    float64 // outbound Serper request rate
    RateBurst        int
}

// StorageConfig defines the S3 asset store.
type StorageConfig struct {
    Bucket string
    Region string
    Prefix string
}

// QueueConfig defines background page queue connectivity and names.
type QueueConfig struct {
    RedisURL     string
    Stream       string
    Group        string
    PollInterval time.Duration
}

// Config is the top-level configuration.
type Config struct {
    Logging LoggingConfig
    Axiom   AxiomConfig
    OCR     OCRConfig
    AI      AIConfig
    Search  SearchConfig
    Storage StorageConfig
    Queue   QueueConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/smartread.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_smartread",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.OCR = OCRConfig{
        APIKey:  getEnv("MISTRAL_API_KEY", ""),
        Model:   getEnv("MISTRAL_OCR_MODEL", "mistral-ocr-latest"),
        Timeout: parseDuration(getEnv("OCR_TIMEOUT", "120s"), 120*time.Second),
    }

    cfg.AI = AIConfig{
        APIKey:         getEnv("GROQ_API_KEY", ""),
        HighlightModel: getEnv("GROQ_HIGHLIGHT_MODEL", "llama-3.1-8b-instant"),
        FormatModel:    getEnv("GROQ_FORMAT_MODEL", "llama-3.3-70b-versatile"),
        Timeout:        parseDuration(getEnv("GROQ_TIMEOUT", "60s"), 60*time.Second),
    }

    cfg.Search = SearchConfig{
        APIKey:           getEnv("SERPER_API_KEY", ""),
        Timeout:          parseDuration(getEnv("SEARCH_TIMEOUT", "15s"), 15*time.Second),
        ThumbnailTimeout: parseDuration(getEnv("THUMBNAIL_TIMEOUT", "10s"), 10*time.Second),
        Concurrency:      parseInt(getEnv("SEARCH_CONCURRENCY", "4"), 4),
        RatePerSecond:    parseFloat(getEnv("SEARCH_RATE_PER_SECOND", "5"), 5),
        RateBurst:        parseInt(getEnv("SEARCH_RATE_BURST", "5"), 5),
    }

    cfg.Storage = StorageConfig{
        Bucket: getEnv("AWS_S3_BUCKET", "smartread-assets-dev"),
        Region: getEnv("AWS_REGION", "us-east-1"),
        Prefix: getEnv("AWS_S3_PREFIX", "smartread"),
    }

    cfg.Queue = QueueConfig{
        RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
        Stream:       getEnv("QUEUE_STREAM", "smartread:pages"),
        Group:        getEnv("QUEUE_GROUP", "assemblers"),
        PollInterval: parseDuration(getEnv("QUEUE_POLL_INTERVAL", "2s"), 2*time.Second),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseFloat(s string, def float64) float64 {
    if s == "" { return def }
    if f, err := strconv.ParseFloat(s, 64); err == nil { return f }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
