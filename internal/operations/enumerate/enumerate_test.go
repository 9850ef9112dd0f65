package enumerate

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/emteq-ltd/lambda-s3-archiver/errors"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestResolve_ExplicitEntries(t *testing.T) {
	listCalls := 0
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			listCalls++
			return &s3.ListObjectsV2Output{}, nil
		},
	}

	e := New(mock, discardLogger())
	keys, err := e.Resolve(context.Background(), "test-bucket", "exports/", []string{"b.csv", "a.csv", "sub/c.csv"})
	require.NoError(t, err)

	assert.Equal(t, []string{"exports/b.csv", "exports/a.csv", "exports/sub/c.csv"}, keys,
		"explicit entries keep caller order and gain the prefix")
	assert.Zero(t, listCalls)
}

func TestResolve_ListingPagination(t *testing.T) {
	var tokens []string
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			tokens = append(tokens, aws.ToString(params.ContinuationToken))
			if len(tokens) == 1 {
				return &s3.ListObjectsV2Output{
					Contents: []s3types.Object{
						{Key: aws.String("exports/a.csv")},
						{Key: aws.String("exports/b.csv")},
					},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("next-page"),
				}, nil
			}
			return &s3.ListObjectsV2Output{
				Contents: []s3types.Object{
					{Key: aws.String("exports/c.csv")},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}

	e := New(mock, discardLogger())
	keys, err := e.Resolve(context.Background(), "test-bucket", "exports/", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "next-page"}, tokens)
	assert.Equal(t, []string{"exports/a.csv", "exports/b.csv", "exports/c.csv"}, keys)
}

func TestResolve_ExcludesPrefixMarker(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{
				Contents: []s3types.Object{
					{Key: aws.String("exports/")},
					{Key: aws.String("exports/a.csv")},
				},
			}, nil
		},
	}

	e := New(mock, discardLogger())
	keys, err := e.Resolve(context.Background(), "test-bucket", "exports/", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"exports/a.csv"}, keys)
}

func TestResolve_EmptyListing(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{}, nil
		},
	}

	e := New(mock, discardLogger())
	keys, err := e.Resolve(context.Background(), "test-bucket", "exports/", nil)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestResolve_ListingError(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, errors.New("SlowDown: please reduce your request rate")
		},
	}

	e := New(mock, discardLogger())
	keys, err := e.Resolve(context.Background(), "test-bucket", "exports/", nil)
	require.Error(t, err)
	assert.Nil(t, keys)
	assert.True(t, apperrors.IsEnumerationFailure(err))
	assert.Contains(t, err.Error(), "SlowDown")
}

func TestResolve_MidPaginationError(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			if calls == 1 {
				return &s3.ListObjectsV2Output{
					Contents:              []s3types.Object{{Key: aws.String("exports/a.csv")}},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("next-page"),
				}, nil
			}
			return nil, errors.New("InternalError")
		},
	}

	e := New(mock, discardLogger())
	keys, err := e.Resolve(context.Background(), "test-bucket", "exports/", nil)
	require.Error(t, err)
	assert.Nil(t, keys, "a failed page discards everything, no partial results")
	assert.True(t, apperrors.IsEnumerationFailure(err))
	assert.Equal(t, 2, calls)
}
