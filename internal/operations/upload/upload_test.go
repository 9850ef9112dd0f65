package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emteq-ltd/lambda-s3-archiver/archivetypes"
	apperrors "github.com/emteq-ltd/lambda-s3-archiver/errors"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/testutil"
)

const testPartSize = 5 * 1024 * 1024

func newSink(client *testutil.MockS3Client) *Sink {
	return New(client, testPartSize, 2, slog.New(slog.DiscardHandler))
}

func TestUpload_SmallStreamSinglePut(t *testing.T) {
	var got bytes.Buffer
	var gotInput *s3.PutObjectInput
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotInput = params
			_, err := io.Copy(&got, params.Body)
			require.NoError(t, err)
			return &s3.PutObjectOutput{ETag: aws.String("etag-abc")}, nil
		},
	}

	s := newSink(mock)
	result, err := s.Upload(context.Background(), "test-bucket", "out/archive.zip",
		strings.NewReader("archive bytes"), &archivetypes.UploadOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "test-bucket", aws.ToString(gotInput.Bucket))
	assert.Equal(t, "out/archive.zip", aws.ToString(gotInput.Key))
	assert.Equal(t, "archive bytes", got.String())
	assert.Equal(t, int64(len("archive bytes")), result.Size)
	assert.Equal(t, "etag-abc", result.ETag)
}

func TestUpload_SniffsContentType(t *testing.T) {
	// A ZIP local file header signature is enough for detection.
	zipHead := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)

	var gotContentType string
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotContentType = aws.ToString(params.ContentType)
			_, err := io.Copy(io.Discard, params.Body)
			require.NoError(t, err)
			return &s3.PutObjectOutput{}, nil
		},
	}

	s := newSink(mock)
	_, err := s.Upload(context.Background(), "test-bucket", "out/archive.zip",
		bytes.NewReader(zipHead), &archivetypes.UploadOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "application/zip", gotContentType)
}

func TestUpload_ContentTypeOverrideSkipsSniffing(t *testing.T) {
	var gotContentType string
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotContentType = aws.ToString(params.ContentType)
			_, err := io.Copy(io.Discard, params.Body)
			require.NoError(t, err)
			return &s3.PutObjectOutput{}, nil
		},
	}

	s := newSink(mock)
	_, err := s.Upload(context.Background(), "test-bucket", "out/archive.tar",
		strings.NewReader("not actually a tar"), &archivetypes.UploadOverrides{
			ContentType: "application/x-tar",
		})
	require.NoError(t, err)

	assert.Equal(t, "application/x-tar", gotContentType)
}

func TestUpload_EmptyStreamUsesDefaultContentType(t *testing.T) {
	var gotContentType string
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotContentType = aws.ToString(params.ContentType)
			return &s3.PutObjectOutput{}, nil
		},
	}

	s := newSink(mock)
	result, err := s.Upload(context.Background(), "test-bucket", "out/archive.zip",
		strings.NewReader(""), &archivetypes.UploadOverrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultContentType, gotContentType)
	assert.Zero(t, result.Size)
}

func TestUpload_AppliesOverrides(t *testing.T) {
	var gotInput *s3.PutObjectInput
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotInput = params
			_, err := io.Copy(io.Discard, params.Body)
			require.NoError(t, err)
			return &s3.PutObjectOutput{}, nil
		},
	}

	s := newSink(mock)
	_, err := s.Upload(context.Background(), "test-bucket", "out/archive.zip",
		strings.NewReader("content"), &archivetypes.UploadOverrides{
			ACL:          archivetypes.ACLPrivate,
			StorageClass: archivetypes.StorageClassGlacier,
			Metadata:     map[string]string{"retention": "90d"},
		})
	require.NoError(t, err)

	assert.Equal(t, s3types.ObjectCannedACLPrivate, gotInput.ACL)
	assert.Equal(t, s3types.StorageClassGlacier, gotInput.StorageClass)
	assert.Equal(t, "90d", gotInput.Metadata["retention"])
}

func TestUpload_PutFailure(t *testing.T) {
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("RequestTimeout")
		},
	}

	s := newSink(mock)
	result, err := s.Upload(context.Background(), "test-bucket", "out/archive.zip",
		strings.NewReader("content"), &archivetypes.UploadOverrides{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsUploadFailure(err))
	assert.Contains(t, err.Error(), "RequestTimeout")
}

func TestUpload_SourceFailureMidStream(t *testing.T) {
	streamErr := errors.New("upstream producer failed")
	mock := &testutil.MockS3Client{}

	s := newSink(mock)
	result, err := s.Upload(context.Background(), "test-bucket", "out/archive.zip",
		io.MultiReader(strings.NewReader("partial"), &failingReader{err: streamErr}),
		&archivetypes.UploadOverrides{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsUploadFailure(err))
	assert.ErrorIs(t, err, streamErr)
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
