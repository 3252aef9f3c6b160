package assets

import (
    "bytes"
    "context"
    "encoding/base64"
    "fmt"
    "strings"

    "github.com/aws/aws-sdk-go-v2/aws"
    awscfg "github.com/aws/aws-sdk-go-v2/config"
    "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
    "github.com/aws/aws-sdk-go-v2/service/s3"
    "github.com/gabriel-vasile/mimetype"
    "github.com/rs/zerolog/log"

    "github.com/Dev-Khant/smartread/internal/config"
)

// Store hosts page images and video thumbnails on S3. Objects are public
// read; callers embed the returned URL directly in page HTML, never the raw
// bytes.
type Store struct {
    uploader *manager.Uploader
    bucket   string
    region   string
    prefix   string
}

// New creates the asset store from the ambient AWS credential chain.
func New(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
    awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Region))
    if err != nil {
        return nil, fmt.Errorf("load aws config: %w", err)
    }
    cli := s3.NewFromConfig(awsCfg)
    return &Store{
        uploader: manager.NewUploader(cli),
        bucket:   cfg.Bucket,
        region:   cfg.Region,
        prefix:   strings.Trim(cfg.Prefix, "/"),
    }, nil
}

// Upload stores data under key and returns the hosted URL. If contentType is
// empty it is sniffed from the payload.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
    if contentType == "" {
        contentType = mimetype.Detect(data).String()
    }
    objectKey := key
    if s.prefix != "" {
        objectKey = s.prefix + "/" + key
    }

    _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
        Bucket:      aws.String(s.bucket),
        Key:         aws.String(objectKey),
        Body:        bytes.NewReader(data),
        ContentType: aws.String(contentType),
    })
    if err != nil {
        return "", fmt.Errorf("upload %s: %w", objectKey, err)
    }

    url := s.ObjectURL(objectKey)
    log.Debug().Str("key", objectKey).Int("size", len(data)).Str("content_type", contentType).Msg("asset uploaded")
    return url, nil
}

// UploadBase64 decodes an OCR inline image payload (optionally a data URI)
// and uploads it.
func (s *Store) UploadBase64(ctx context.Context, key, encoded string) (string, error) {
    raw := encoded
    if i := strings.Index(raw, ";base64,"); i >= 0 && strings.HasPrefix(raw, "data:") {
        raw = raw[i+len(";base64,"):]
    }
    data, err := base64.StdEncoding.DecodeString(raw)
    if err != nil {
        return "", fmt.Errorf("decode image payload: %w", err)
    }
    return s.Upload(ctx, key, data, "")
}

// ObjectURL builds the public URL for an already-prefixed object key.
func (s *Store) ObjectURL(objectKey string) string {
    return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
}
