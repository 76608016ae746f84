package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"attendance/internal/env"
	"attendance/internal/keys"
	"attendance/internal/models"
)

// ErrObjectExists is returned by PutDataset when the key is already taken
// and overwriting was not requested.
var ErrObjectExists = errors.New("object already exists")

// objectStore is the part of the MinIO client the service uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// minioStore narrows GetObject to a plain reader.
type minioStore struct {
	*minio.Client
}

func (m minioStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return m.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
}

// S3Service is a client for S3-compatible storage holding datasets and
// counter exports.
type S3Service struct {
	client objectStore
	logger *zap.Logger
}

// NewS3Service connects to the MinIO server described by cfg.
func NewS3Service(cfg env.MinioConfig, logger *zap.Logger) (*S3Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.Info("connected to MinIO", zap.String("endpoint", cfg.Endpoint))
	return &S3Service{client: minioStore{client}, logger: logger}, nil
}

func (s *S3Service) CreateBucket(ctx context.Context, bucketName string, location string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return false, err
		}
	}
	return true, nil
}

// PutDataset uploads a dataset document. An existing object is only
// replaced when overwrite is set.
func (s *S3Service) PutDataset(ctx context.Context, bucketName, objectKey string, data []byte, overwrite bool) error {
	if !overwrite {
		_, err := s.client.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
		if err == nil {
			return fmt.Errorf("%s/%s: %w", bucketName, objectKey, ErrObjectExists)
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return fmt.Errorf("failed to check for existing object: %w", err)
		}
	}

	contentType := "application/json"
	if strings.HasSuffix(objectKey, ".yaml") || strings.HasSuffix(objectKey, ".yml") {
		contentType = "application/yaml"
	}
	if err := s.put(ctx, bucketName, objectKey, data, contentType); err != nil {
		return err
	}
	s.logger.Info("stored dataset", zap.String("bucket", bucketName), zap.String("key", objectKey))
	return nil
}

// GetObject reads a whole object.
func (s *S3Service) GetObject(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, bucketName, objectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", bucketName, objectKey, err)
	}
	return data, nil
}

// SnapshotExport is the document written by StoreSnapshots.
type SnapshotExport struct {
	Map       string            `json:"map"`
	TakenAt   time.Time         `json:"takenAt"`
	Locations []models.Snapshot `json:"locations"`
}

// StoreSnapshots writes the current counters of every location as one JSON
// document and returns its key.
func (s *S3Service) StoreSnapshots(ctx context.Context, bucketName, mapName string, snapshots []models.Snapshot, at time.Time) (string, error) {
	data, err := json.Marshal(SnapshotExport{Map: mapName, TakenAt: at.UTC(), Locations: snapshots})
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshots to JSON: %w", err)
	}
	key := keys.Snapshots(mapName, at)
	if err := s.put(ctx, bucketName, key, data, "application/json"); err != nil {
		return "", err
	}
	s.logger.Info("exported snapshots",
		zap.String("bucket", bucketName),
		zap.String("key", key),
		zap.Int("locations", len(snapshots)))
	return key, nil
}

func (s *S3Service) put(ctx context.Context, bucketName, objectKey string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		bucketName,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %w", err)
	}
	return nil
}
