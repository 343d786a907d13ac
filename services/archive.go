package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveService writes a JSON snapshot of a user's data to a Spaces bucket
// before a destructive reset. With no credentials configured it is a no-op.
type ArchiveService struct {
	client *s3.Client
	bucket string
	root   string
}

func NewArchiveService(key, secret, region, bucket, root string) *ArchiveService {
	if key == "" || bucket == "" {
		return &ArchiveService{}
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		slog.Error("Unable to load Spaces config, archiving disabled",
			slog.Any("error", err))
		return &ArchiveService{}
	}

	return &ArchiveService{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		root:   strings.Trim(root, "/"),
	}
}

// Enabled reports whether snapshots will actually be written.
func (s *ArchiveService) Enabled() bool {
	return s.client != nil
}

// Snapshot uploads payload as timestamped JSON under the user's prefix.
func (s *ArchiveService) Snapshot(ctx context.Context, userID string, payload interface{}) error {
	if !s.Enabled() {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", s.root, userID, time.Now().UTC().Format("20060102T150405Z"))
	if s.root == "" {
		key = strings.TrimPrefix(key, "/")
	}

	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	slog.Info("Snapshot archived",
		slog.String("user_id", userID),
		slog.String("key", key),
		slog.Int("bytes", len(body)))
	return nil
}
