package media

import (
	"context"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config connects to an S3 compatible server.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// S3Store keeps uploads in an S3 bucket.
type S3Store struct {
	cli    *minio.Client
	bucket string
}

// NewS3Store connects to the server and creates the bucket if missing.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 endpoint and bucket are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "new minio client for %q", cfg.Endpoint)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %q", cfg.Bucket)
	}
	if !exists {
		if err = cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "make bucket %q", cfg.Bucket)
		}
		gmw.GetLogger(ctx).Info("create bucket", zap.String("bucket", cfg.Bucket))
	}

	return &S3Store{cli: cli, bucket: cfg.Bucket}, nil
}

// Save uploads body as object name.
func (s *S3Store) Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) error {
	if !ValidName(name) {
		return errors.Errorf("invalid name %q", name)
	}

	_, err := s.cli.PutObject(ctx, s.bucket, name, body, size,
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "put object %q", name)
	}

	return nil
}

// Open streams object name.
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, errors.WithStack(ErrNotFound)
	}

	// GetObject is lazy, Stat surfaces a missing key
	obj, err := s.cli.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object %q", name)
	}
	if _, err = obj.Stat(); err != nil {
		_ = obj.Close()
		if strings.EqualFold(minio.ToErrorResponse(err).Code, "NoSuchKey") {
			return nil, errors.Wrapf(ErrNotFound, "%q", name)
		}
		return nil, errors.Wrapf(err, "stat object %q", name)
	}

	return obj, nil
}
