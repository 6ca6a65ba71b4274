package s3blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// Reader reads object metadata from an S3-compatible backend.
type Reader struct {
	client *s3.Client
	bucket string
}

// NewReader creates a Reader for the given client's configured bucket.
func NewReader(c *Client) *Reader {
	return &Reader{
		client: c.S3(),
		bucket: c.Bucket(),
	}
}

// Size returns the stored length of the object at path, or domain.ErrNotFound
// when it does not exist.
func (r *Reader) Size(ctx context.Context, path string) (int64, error) {
	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("s3blob: head %s: %w", path, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("s3blob: head %s: %w", path, err)
	}
	return aws.ToInt64(out.ContentLength), nil
}

// isNotFound reports whether err means the object does not exist. HeadObject
// returns a bare 404 rather than NoSuchKey, and some S3-compatible providers
// return neither typed error.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	type httpResponseError interface {
		HTTPStatusCode() int
	}
	var httpErr httpResponseError
	return errors.As(err, &httpErr) && httpErr.HTTPStatusCode() == 404
}
