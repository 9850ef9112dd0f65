// Package upload commits the archive byte stream to S3 as one object.
//
// The stream's total length is unknown while the upload is in flight, so
// the sink drives the AWS transfer manager, which reads the stream in
// part-sized chunks and switches to a multipart upload when the content
// outgrows a single part. Nothing here buffers more than one part.
package upload

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/emteq-ltd/lambda-s3-archiver/archivetypes"
	"github.com/emteq-ltd/lambda-s3-archiver/errors"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/s3api"
)

const (
	// DefaultContentType is used when content type detection fails
	DefaultContentType = "application/octet-stream"

	// sniffLen is how many leading bytes are examined for content type
	// detection (matches mimetype's own read limit)
	sniffLen = 3072
)

// Sink streams archive bytes into a single S3 object.
type Sink struct {
	client      s3api.S3API
	partSize    int64
	concurrency int
	logger      *slog.Logger
}

// New creates a new Sink.
func New(client s3api.S3API, partSize int64, concurrency int, logger *slog.Logger) *Sink {
	return &Sink{
		client:      client,
		partSize:    partSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Upload consumes body to EOF and commits it at bucket/key, returning once
// the store confirms the object. overrides is an opaque parameter bag
// merged into the request; the sink is the only component that interprets
// it. The result's Size is the number of bytes consumed from body.
func (s *Sink) Upload(
	ctx context.Context,
	bucket, key string,
	body io.Reader,
	overrides *archivetypes.UploadOverrides,
) (*archivetypes.UploadResult, error) {
	startTime := time.Now()

	counted := &countingReader{r: body}

	contentType := overrides.ContentType
	var stream io.Reader = counted
	if contentType == "" {
		detected, rest, err := sniffContentType(counted)
		if err != nil {
			return nil, errors.NewStageError("upload", errors.ErrUpload, err).
				WithBucket(bucket).
				WithKey(key)
		}
		contentType = detected
		stream = rest
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        stream,
		ContentType: aws.String(contentType),
	}
	if overrides.ACL != "" {
		input.ACL = awstypes.ObjectCannedACL(overrides.ACL)
	}
	if overrides.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(overrides.StorageClass)
	}
	if len(overrides.Metadata) > 0 {
		input.Metadata = overrides.Metadata
	}

	uploader := manager.NewUploader(s.client, func(u *manager.Uploader) {
		u.PartSize = s.partSize
		u.Concurrency = s.concurrency
	})

	output, err := uploader.Upload(ctx, input)
	if err != nil {
		return nil, errors.NewStageError("upload", errors.ErrUpload, err).
			WithBucket(bucket).
			WithKey(key)
	}

	result := &archivetypes.UploadResult{
		Bucket:   bucket,
		Key:      key,
		Size:     counted.count.Load(),
		ETag:     aws.ToString(output.ETag),
		Duration: time.Since(startTime),
	}

	s.logger.DebugContext(ctx, "upload committed",
		"bucket", bucket, "key", key, "bytes", result.Size, "content_type", contentType)

	return result, nil
}

// sniffContentType detects the content type from the stream's leading
// bytes and returns a reader that replays them ahead of the remainder.
func sniffContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}

	contentType := DefaultContentType
	if n > 0 {
		if mt := mimetype.Detect(head[:n]); mt != nil {
			contentType = mt.String()
		}
	}

	return contentType, io.MultiReader(bytes.NewReader(head[:n]), r), nil
}

// countingReader counts bytes drained from the archive stream.
type countingReader struct {
	r     io.Reader
	count atomic.Int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.count.Add(int64(n))
	return n, err
}
