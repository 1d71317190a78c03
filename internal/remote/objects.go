package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vup-linux/vup-release/internal/artifact"
)

// ObjectStore is the bucket tier. Every operation is confined to the keys
// under one release line prefix ("{tag}/").
type ObjectStore interface {
	// List snapshots the objects directly under tag. Names are relative to
	// the prefix.
	List(ctx context.Context, tag string) (artifact.Snapshot, error)

	// Upload stores the local file at path as tag/name.
	Upload(ctx context.Context, tag, name, path string) error

	// Delete removes tag/name for every name in one request.
	Delete(ctx context.Context, tag string, names []string) error
}

// S3Config holds the connection settings of an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Insecure  bool
}

// S3Store implements ObjectStore on any S3-compatible service (R2, MinIO, S3).
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store builds a client. Missing credentials return an error wrapping
// ErrCredentialsMissing.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, &TierError{Tier: TierObjectStore, Operation: "connect", Err: ErrCredentialsMissing, Hint: "set the access key and secret key environment variables"}
	}
	if cfg.Bucket == "" || cfg.Endpoint == "" {
		return nil, &TierError{Tier: TierObjectStore, Operation: "connect", Err: errors.New("bucket and endpoint are required")}
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	endpoint = strings.TrimSuffix(endpoint, "/")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, &TierError{Tier: TierObjectStore, Operation: "connect", Err: err}
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) List(ctx context.Context, tag string) (artifact.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var entries []artifact.Entry
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: tag + "/"}) {
		if obj.Err != nil {
			return artifact.Snapshot{}, &TierError{Tier: TierObjectStore, Operation: "list", Name: tag, Err: classifyS3(obj.Err)}
		}
		name, ok := KeyName(tag, obj.Key)
		if !ok {
			continue
		}
		entries = append(entries, artifact.Entry{Name: name, Size: obj.Size, ModTime: obj.LastModified})
	}
	return artifact.NewSnapshot(entries...), nil
}

func (s *S3Store) Upload(ctx context.Context, tag, name, path string) error {
	key := ObjectKey(tag, name)
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return &TierError{Tier: TierObjectStore, Operation: "upload", Name: key, Err: classifyS3(err)}
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, tag string, names []string) error {
	objects := make(chan minio.ObjectInfo, len(names))
	for _, n := range names {
		objects <- minio.ObjectInfo{Key: ObjectKey(tag, n)}
	}
	close(objects)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	if len(errs) > 0 {
		return &TierError{Tier: TierObjectStore, Operation: "delete", Name: tag, Err: errors.Join(errs...)}
	}
	return nil
}

func classifyS3(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchBucket" {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return err
}
