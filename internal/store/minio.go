package store

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/cloudvault/cloudvault/internal/models"
)

// MinioStore talks to the object store directly, one object per file name.
// Useful when the client has first-party credentials and no HTTP backend in
// between.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

func (s *MinioStore) List(ctx context.Context) ([]models.FileRecord, error) {
	var files []models.FileRecord
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, &Error{Kind: KindNetwork, Op: "list", Err: obj.Err}
		}
		files = append(files, models.FileRecord{
			Name:         obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			VersionID:    obj.VersionID,
		})
	}
	return files, nil
}

func (s *MinioStore) Upload(ctx context.Context, name string, size int64, content io.Reader) (models.FileRecord, error) {
	if name == "" {
		return models.FileRecord{}, &Error{Kind: KindUnknown, Op: "upload", Err: errEmptyName}
	}

	// PutObject overwrites an existing key, which is exactly the
	// latest-wins contract.
	info, err := s.client.PutObject(ctx, s.bucket, name, content, size, minio.PutObjectOptions{})
	if err != nil {
		return models.FileRecord{}, &Error{Kind: kindFromMinio(err), Op: "upload", Name: name, Err: err}
	}

	versionID := info.VersionID
	if versionID == "" {
		// Unversioned bucket: stamp our own so the record still carries one.
		versionID = uuid.NewString()
	}
	return models.FileRecord{
		Name:         name,
		Size:         size,
		LastModified: time.Now(),
		VersionID:    versionID,
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, name string) error {
	// RemoveObject succeeds on absent keys, so stat first to keep the
	// "already gone" outcome reportable.
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		return &Error{Kind: kindFromMinio(err), Op: "delete", Name: name, Err: err}
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return &Error{Kind: kindFromMinio(err), Op: "delete", Name: name, Err: err}
	}
	return nil
}

func (s *MinioStore) Download(ctx context.Context, name string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		return &Error{Kind: kindFromMinio(err), Op: "download", Name: name, Err: err}
	}
	return nil
}

// DownloadURL generates a short-lived presigned link for the object.
func (s *MinioStore) DownloadURL(ctx context.Context, name string) (string, error) {
	if err := s.Download(ctx, name); err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, name, 10*time.Minute, nil)
	if err != nil {
		return "", &Error{Kind: KindUnknown, Op: "download", Name: name, Err: err}
	}
	return u.String(), nil
}

func kindFromMinio(err error) ErrorKind {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return KindNotFound
	case "":
		return KindNetwork
	default:
		return KindUnknown
	}
}
