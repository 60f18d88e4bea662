package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/yourorg/kap-news/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Storage implements the Storage interface for Amazon S3 and compatible stores
type S3Storage struct {
	bucket   string
	s3Client s3iface.S3API
}

// NewS3Storage creates a new S3Storage
func NewS3Storage(cfg *config.S3AssetsConfig) (*S3Storage, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		// MinIO and similar need path style addressing
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3StorageWithClient(cfg.Bucket, s3.New(sess)), nil
}

// NewS3StorageWithClient wraps an existing S3 client
func NewS3StorageWithClient(bucket string, client s3iface.S3API) *S3Storage {
	return &S3Storage{
		bucket:   bucket,
		s3Client: client,
	}
}

// List returns the object names directly below the dir prefix
func (s *S3Storage) List(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.Trim(dir, "/") + "/"

	var names []string
	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), prefix)
			if name != "" {
				names = append(names, name)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list s3 prefix %s: %w", prefix, err)
	}

	// S3 has no directories, an empty prefix is the closest thing to a missing one
	if len(names) == 0 {
		return nil, ErrNotFound
	}

	sort.Strings(names)
	return names, nil
}

// Read downloads an object
func (s *S3Storage) Read(ctx context.Context, p string) ([]byte, error) {
	key := path.Clean(strings.TrimPrefix(p, "/"))
	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get s3 object %s: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Kind names the backend
func (s *S3Storage) Kind() string {
	return "s3"
}
