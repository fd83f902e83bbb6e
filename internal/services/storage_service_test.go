// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shopify-automation/internal/config"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestStorageServiceLocalArchive(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{LocalPath: t.TempDir()}}
	svc, err := NewStorageService(cfg)
	require.NoError(t, err)

	payload := []byte(`{"id":"1005"}`)
	key, err := svc.ArchiveSourcePayload(context.Background(), "1005", payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "aliexpress/"), key)
	assert.Contains(t, key, "1005_")

	data, err := svc.ReadSourcePayload(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestStorageServiceWithoutBackend(t *testing.T) {
	svc, err := NewStorageService(&config.Config{})
	require.NoError(t, err)

	_, err = svc.ArchiveSourcePayload(context.Background(), "1", []byte("{}"))
	assert.Error(t, err)
}

func TestStorageServiceS3Archive(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	svc := NewStorageServiceWithClient(client, "imports", "source-payloads")

	key, err := svc.ArchiveSourcePayload(context.Background(), "42", []byte(`{"id":"42"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "source-payloads/aliexpress/"), key)
	assert.Contains(t, client.objects, "imports/"+key)

	data, err := svc.ReadSourcePayload(context.Background(), key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42"}`, string(data))

	client.putErr = errors.New("AccessDenied")
	_, err = svc.ArchiveSourcePayload(context.Background(), "43", []byte("{}"))
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestArchiveKeyLayout(t *testing.T) {
	svc := &StorageService{prefix: "p"}
	now := time.Date(2024, 3, 9, 8, 7, 6, 5, time.UTC)

	assert.Equal(t, "p/aliexpress/2024/03/09/1005_080706.000000005.json", svc.archiveKey("1005", now))

	svc.prefix = ""
	assert.Equal(t, "aliexpress/2024/03/09/unknown_080706.000000005.json", svc.archiveKey("", now))
}
