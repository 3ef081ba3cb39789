package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"treasurehunt/internal/keys"
	"treasurehunt/internal/models"
	"treasurehunt/internal/resources"
)

// ObjectStore is the subset of the MinIO client the service uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	Get(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
}

// minioStore adapts *minio.Client to ObjectStore.
type minioStore struct {
	*minio.Client
}

func (m minioStore) Get(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	object, err := m.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return object, nil
}

// S3Service is a client for S3-compatible storage holding the landmark
// catalog and the localized string tables.
type S3Service struct {
	client ObjectStore
	log    logrus.FieldLogger
}

// NewS3ServiceWithStore builds a service on an existing ObjectStore.
func NewS3ServiceWithStore(store ObjectStore, log logrus.FieldLogger) *S3Service {
	return &S3Service{client: store, log: log}
}

// NewS3Service initializes and returns a new S3 storage service.
// It connects to the MinIO server using credentials from environment variables.
func NewS3Service(log logrus.FieldLogger) (*S3Service, error) {
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if minioEndpoint == "" || minioAccessKey == "" || minioSecretKey == "" {
		return nil, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	minioClient, err := minio.New(minioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioAccessKey, minioSecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	log.WithField("endpoint", minioEndpoint).Info("Connected to MinIO")
	return NewS3ServiceWithStore(minioStore{minioClient}, log), nil
}

func (s *S3Service) CreateBucket(ctx context.Context, bucketName string, location string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		err = s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// PublishLandmarks stores every landmark in the bucket concurrently. Objects
// that already exist are left untouched. It returns the number of landmarks
// that failed to store.
func (s *S3Service) PublishLandmarks(ctx context.Context, bucketName string, landmarks []models.Landmark) int {
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)

	for _, landmark := range landmarks {
		wg.Add(1)
		go func(l models.Landmark) {
			defer wg.Done()
			if err := s.storeSingleLandmark(ctx, bucketName, l); err != nil {
				failed.Add(1)
				s.log.WithError(err).WithField("landmark", l.ID).Error("Failed to store landmark")
			}
		}(landmark)
	}

	wg.Wait()
	s.log.WithFields(logrus.Fields{"count": len(landmarks), "failed": failed.Load()}).Info("Finished publishing landmarks")
	return int(failed.Load())
}

// storeSingleLandmark stores one landmark. It will not overwrite an object
// that already exists.
func (s *S3Service) storeSingleLandmark(ctx context.Context, bucketName string, landmark models.Landmark) error {
	objectKey := keys.Landmark(landmark)

	_, err := s.client.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
	if err == nil {
		s.log.WithField("key", objectKey).Debug("Landmark already stored, skipping")
		return nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("failed to check for existing object: %w", err)
	}

	return s.putJSON(ctx, bucketName, objectKey, landmark)
}

func (s *S3Service) putJSON(ctx context.Context, bucketName, objectKey string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", objectKey, err)
	}

	_, err = s.client.PutObject(
		ctx,
		bucketName,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %w", err)
	}

	s.log.WithFields(logrus.Fields{"bucket": bucketName, "key": objectKey}).Info("Stored object")
	return nil
}

func (s *S3Service) GetLandmark(ctx context.Context, bucketName string, objectKey string) (*models.Landmark, error) {
	object, err := s.client.Get(ctx, bucketName, objectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	var landmark models.Landmark
	if err := json.NewDecoder(object).Decode(&landmark); err != nil {
		return nil, fmt.Errorf("failed to decode JSON from stream: %w", err)
	}
	return &landmark, nil
}

// PutStrings uploads the string table for locale, replacing any previous one.
func (s *S3Service) PutStrings(ctx context.Context, bucketName, locale string, table resources.Table) error {
	return s.putJSON(ctx, bucketName, keys.Strings(locale), table)
}

// GetStrings downloads the string table for locale.
func (s *S3Service) GetStrings(ctx context.Context, bucketName, locale string) (resources.Table, error) {
	object, err := s.client.Get(ctx, bucketName, keys.Strings(locale))
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	return resources.DecodeTable(object)
}
