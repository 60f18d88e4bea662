package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves objects from a map, keyed by full object key
type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	prefix := aws.StringValue(in.Prefix)
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		rest := strings.TrimPrefix(key, prefix)
		if !strings.HasPrefix(key, prefix) || strings.Contains(rest, "/") {
			continue
		}
		out.Contents = append(out.Contents, &s3.Object{Key: aws.String(key)})
	}
	fn(out, true)
	return nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

func TestS3Storage_ListAndRead(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"banners/spk/b.jpg":                 "b",
		"banners/spk/a.jpg":                 "a",
		"banners/spk/deeper/c.jpg":          "c",
		"financials/ASELS_financials.json": `{"x":2}`,
	}}
	s := NewS3StorageWithClient("assets", client)
	ctx := context.Background()

	names, err := s.List(ctx, "banners/spk")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names)

	_, err = s.List(ctx, "banners/none")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := s.Read(ctx, "financials/ASELS_financials.json")
	require.NoError(t, err)
	assert.Equal(t, `{"x":2}`, string(data))

	_, err = s.Read(ctx, "financials/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "s3", s.Kind())
}
