// file: storage/s3.go

package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	appconfig "go-tube-api/config"
	"go-tube-api/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3MediaStorage uploads staged files to an S3-compatible bucket (AWS or
// MinIO) and exposes them through the configured public base URL.
type S3MediaStorage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3MediaStorage builds the client from AppConfig. The endpoint override
// allows pointing at MinIO in development.
func NewS3MediaStorage() (*S3MediaStorage, error) {
	cfg := appconfig.AppConfig.S3

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3MediaStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func objectKey(localFilePath string) string {
	d := time.Now()
	ext := filepath.Ext(localFilePath)
	return fmt.Sprintf("media/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Upload stores the staged file in the bucket and returns its public URL.
func (s *S3MediaStorage) Upload(ctx context.Context, localFilePath string) (*UploadResult, error) {
	file, err := os.Open(localFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer file.Close()

	key := objectKey(localFilePath)
	contentType := mime.TypeByExtension(filepath.Ext(localFilePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to upload media object")
		return nil, fmt.Errorf("failed to upload media object: %w", err)
	}

	logger.Log.WithField("key", key).Info("Media object uploaded")
	return &UploadResult{
		URL: fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key),
		Key: key,
	}, nil
}
