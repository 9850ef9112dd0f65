// Package enumerate resolves the definitive set of source object keys for
// one archive operation: either the caller-supplied list, or a paginated
// listing under a prefix.
package enumerate

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/emteq-ltd/lambda-s3-archiver/errors"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/s3api"
)

// Enumerator resolves source entries for the archive pipeline.
type Enumerator struct {
	client s3api.S3API
	logger *slog.Logger
}

// New creates a new Enumerator.
func New(client s3api.S3API, logger *slog.Logger) *Enumerator {
	return &Enumerator{
		client: client,
		logger: logger,
	}
}

// Resolve returns the ordered list of full source keys to archive.
//
// With a non-empty explicit list, each entry is prefixed and returned in
// caller order without any existence check; a missing object surfaces later
// at read time. Otherwise the bucket is listed under the prefix, following
// continuation tokens until the store reports no further pages. A listed
// key exactly equal to the prefix (the directory marker object) is
// excluded. Ordering across and within pages is preserved.
func (e *Enumerator) Resolve(ctx context.Context, bucket, prefix string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		keys := make([]string, 0, len(explicit))
		for _, entry := range explicit {
			keys = append(keys, prefix+entry)
		}
		e.logger.DebugContext(ctx, "using explicit entry list",
			"bucket", bucket, "prefix", prefix, "count", len(keys))
		return keys, nil
	}

	var keys []string
	var continuationToken *string
	pages := 0

	for {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
			Prefix: aws.String(prefix),
		}
		if continuationToken != nil {
			input.ContinuationToken = continuationToken
		}

		result, err := e.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, errors.NewStageError("enumerate", errors.ErrEnumeration, err).
				WithBucket(bucket)
		}

		pages++
		for _, obj := range result.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			keys = append(keys, key)
		}

		e.logger.DebugContext(ctx, "listed page",
			"bucket", bucket, "prefix", prefix, "page", pages, "discovered", len(keys))

		if !aws.ToBool(result.IsTruncated) {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	e.logger.InfoContext(ctx, "resolved entries",
		"bucket", bucket, "prefix", prefix, "pages", pages, "count", len(keys))

	return keys, nil
}
