// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/javajoker/shopify-automation/internal/config"
	"github.com/javajoker/shopify-automation/internal/utils"
)

// StorageService keeps raw source payloads for audit and replay. Without AWS
// credentials it writes to a local directory instead.
type StorageService struct {
	s3Client  s3iface.S3API
	bucket    string
	prefix    string
	localPath string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	s := &StorageService{
		bucket:    cfg.AWS.S3Bucket,
		prefix:    cfg.AWS.ArchivePrefix,
		localPath: cfg.Storage.LocalPath,
	}

	if cfg.AWS.AccessKeyID == "" {
		return s, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	s.s3Client = s3.New(sess)
	return s, nil
}

// NewStorageServiceWithClient is used when the S3 client is built elsewhere.
func NewStorageServiceWithClient(client s3iface.S3API, bucket, prefix string) *StorageService {
	return &StorageService{s3Client: client, bucket: bucket, prefix: prefix}
}

// ArchiveSourcePayload stores payload under a dated key and returns the key.
func (s *StorageService) ArchiveSourcePayload(ctx context.Context, sourceID string, payload []byte) (string, error) {
	key := s.archiveKey(sourceID, time.Now().UTC())

	if s.s3Client != nil {
		_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(payload),
			ContentType:   aws.String("application/json"),
			ContentLength: aws.Int64(int64(len(payload))),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return key, nil
	}

	if s.localPath == "" {
		return "", fmt.Errorf("no archive storage configured")
	}

	path := filepath.Join(s.localPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return key, nil
}

// ReadSourcePayload fetches a previously archived payload.
func (s *StorageService) ReadSourcePayload(ctx context.Context, key string) ([]byte, error) {
	if s.s3Client != nil {
		out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read from S3: %w", err)
		}
		defer out.Body.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(out.Body); err != nil {
			return nil, fmt.Errorf("failed to read S3 object: %w", err)
		}
		return buf.Bytes(), nil
	}

	data, err := os.ReadFile(filepath.Join(s.localPath, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}
	return data, nil
}

func (s *StorageService) archiveKey(sourceID string, now time.Time) string {
	name := utils.Slugify(sourceID)
	if name == "" {
		name = "unknown"
	}
	filename := fmt.Sprintf("%s_%s.json", name, now.Format("150405.000000000"))
	key := fmt.Sprintf("aliexpress/%s/%s", now.Format("2006/01/02"), filename)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}
