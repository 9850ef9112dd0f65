// Package read opens sequential byte streams for single source objects.
package read

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/emteq-ltd/lambda-s3-archiver/errors"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/s3api"
)

// Reader opens source entry streams for the archive pipeline.
type Reader struct {
	client s3api.S3API
}

// New creates a new Reader.
func New(client s3api.S3API) *Reader {
	return &Reader{
		client: client,
	}
}

// Open returns a lazily-consumed, single-pass byte stream for one source
// object. The caller owns the returned stream and must close it. Any
// failure is tagged as a read failure; a missing object additionally
// matches errors.ErrObjectNotFound and an access failure
// errors.ErrAccessDenied.
func (r *Reader) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := r.client.GetObject(ctx, input)
	if err != nil {
		return nil, errors.NewStageError("read", errors.ErrRead, classify(err)).
			WithBucket(bucket).
			WithKey(key)
	}

	return output.Body, nil
}

// classify tags AWS SDK errors with the module's sentinel errors where the
// failure mode is recognizable.
func classify(err error) error {
	var noSuchKey *types.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %w", errors.ErrObjectNotFound, err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %w", errors.ErrObjectNotFound, err)
		case "AccessDenied":
			return fmt.Errorf("%w: %w", errors.ErrAccessDenied, err)
		}
	}

	return err
}
