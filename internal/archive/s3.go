package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/smartbotuz/avtomat/internal/config"
	"github.com/smartbotuz/avtomat/internal/models"
)

// BatchArchiver uploads each day's generated batch to an S3-compatible
// bucket (CloudFlare R2) under blog/YYYY/MM/DD.json. The archive is a copy;
// failures never affect the run that produced the batch.
type BatchArchiver struct {
	client *s3.Client
	bucket string
}

func New(ctx context.Context, cfg *config.Config) (*BatchArchiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
	})

	return &BatchArchiver{
		client: client,
		bucket: cfg.R2Bucket,
	}, nil
}

func (b *BatchArchiver) ArchiveBatch(ctx context.Context, date string, batch []models.Post) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(BatchKey(date)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload batch archive: %w", err)
	}

	return nil
}

// BatchKey maps a YYYY-MM-DD date to the object key blog/YYYY/MM/DD.json.
func BatchKey(date string) string {
	return "blog/" + strings.ReplaceAll(date, "-", "/") + ".json"
}
