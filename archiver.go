// Package archiver provides client initialization and the archive pipeline.
package archiver

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/emteq-ltd/lambda-s3-archiver/archivetypes"
	apperrors "github.com/emteq-ltd/lambda-s3-archiver/errors"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/operations/encode"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/operations/enumerate"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/operations/read"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/operations/upload"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/s3api"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/validation"
)

// DefaultOutputName is the archive name used when the caller doesn't
// supply one; the format extension is appended to it.
const DefaultOutputName = "archive"

// Archiver runs streaming archive pipelines against S3. Each Archive call
// owns its own pipeline instance; the Archiver itself holds no per-run
// state and is safe for concurrent use.
type Archiver struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// partSize and concurrency tune the streaming upload
	partSize    int64
	concurrency int

	// logger receives pipeline progress; defaults to a discard handler
	logger *slog.Logger
}

// New creates a new Archiver with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := archiver.New(
//	    archiver.WithRegion("us-west-2"),
//	    archiver.WithMaxRetries(3),
//	)
func New(opts ...archivetypes.Option) (*Archiver, error) {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, apperrors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return &Archiver{
		s3Client:    s3.NewFromConfig(cfg, s3Opts...),
		config:      cfg,
		partSize:    clientCfg.PartSize,
		concurrency: clientCfg.Concurrency,
		logger:      clientCfg.Logger,
	}, nil
}

// NewWithClient creates a new Archiver with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(client s3api.S3API, opts ...archivetypes.Option) *Archiver {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	return &Archiver{
		s3Client:    client,
		config:      aws.Config{},
		partSize:    clientCfg.PartSize,
		concurrency: clientCfg.Concurrency,
		logger:      clientCfg.Logger,
	}
}

func defaultClientConfig() *archivetypes.ClientConfig {
	return &archivetypes.ClientConfig{
		MaxRetries:  3,               // Default retry count
		Concurrency: 5,               // Default upload concurrency
		PartSize:    8 * 1024 * 1024, // 8MB default part size
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// Archive collects the requested source objects from bucket, packs them
// into a single archive, and uploads the archive back to bucket under
// prefix, all in one streaming pass.
//
// The source set is the explicit list given via WithEntries (each key
// prefixed with prefix, caller order preserved, no listing call made), or
// failing that every object listed under prefix across all pages, in
// listing order, excluding the directory marker object equal to the prefix
// itself. The output key is prefix + name + "." + format, with name
// defaulting to "archive" and format to ZIP.
//
// Entries are named inside the archive by the naming policy when one is
// set, otherwise by the part of the key after the last "/". Duplicate
// names are appended as-is; archive readers generally keep the last one.
//
// Returns:
//   - *ArchiveResult: the committed archive's location and byte size
//   - error: the first failure from any stage; no result is produced
//
// Errors (check with errors.Is or the errors package helpers):
//   - ErrInvalidInput: bucket, output key, or an entry name is invalid
//   - ErrEnumeration: a listing call failed at some page
//   - ErrRead: a source object could not be opened or fully read
//     (ErrObjectNotFound / ErrAccessDenied also match where applicable)
//   - ErrEncode: the container writer rejected an append or the trailer
//   - ErrUpload: the streaming upload failed or never committed
//
// A failure does not roll back an upload already in flight; a partial
// object may remain at the output key.
func (a *Archiver) Archive(
	ctx context.Context,
	bucket, prefix string,
	opts ...archivetypes.ArchiveOption,
) (*archivetypes.ArchiveResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, apperrors.NewError("archive", apperrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	cfg := &archivetypes.ArchiveOptionConfig{
		OutputName: DefaultOutputName,
		Format:     archivetypes.FormatZip,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.OutputName == "" {
		cfg.OutputName = DefaultOutputName
	}
	// Unrecognized formats fall back to ZIP rather than failing.
	cfg.Format = archivetypes.ParseFormat(string(cfg.Format))

	key := prefix + cfg.OutputName + "." + cfg.Format.Extension()
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, apperrors.NewError("archive", apperrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	startTime := time.Now()
	a.logger.DebugContext(ctx, "starting archive pipeline",
		"bucket", bucket, "prefix", prefix, "key", key, "format", cfg.Format)

	// The pipe joins the two concurrently-running halves of the pipeline:
	// the encoder produces archive bytes into the write end while the sink
	// drains the read end into a chunked upload. The upload is wired up
	// before any entry is appended, and the unbuffered pipe makes a slow
	// upload throttle the producer.
	pr, pw := io.Pipe()
	sink := upload.New(a.s3Client, a.partSize, a.concurrency, a.logger)

	type uploadOutcome struct {
		result *archivetypes.UploadResult
		err    error
	}
	done := make(chan uploadOutcome, 1)
	go func() {
		result, err := sink.Upload(ctx, bucket, key, pr, &cfg.Upload)
		if err != nil {
			// Unblock any encoder write still pending on the pipe. The
			// write returns this exact error, which the producer loop
			// recognizes as an upload failure.
			pr.CloseWithError(err)
		}
		done <- uploadOutcome{result: result, err: err}
	}()

	// fail tears down the pipeline on the first error: the pipe is closed
	// with it so the sink stops, and the sink's outcome is always drained
	// to avoid leaking the goroutine. When the producer-side error was
	// itself caused by an upload failure, the sink's error is the real
	// first failure and wins.
	fail := func(err error) (*archivetypes.ArchiveResult, error) {
		pw.CloseWithError(err)
		outcome := <-done
		if stderrors.Is(err, apperrors.ErrUpload) && outcome.err != nil {
			return nil, outcome.err
		}
		return nil, err
	}

	entries, err := enumerate.New(a.s3Client, a.logger).Resolve(ctx, bucket, prefix, cfg.Entries)
	if err != nil {
		return fail(err)
	}

	enc := encode.New(cfg.Format, pw)
	reader := read.New(a.s3Client)

	for _, fullKey := range entries {
		name := entryName(fullKey, cfg.NamingPolicy)
		if name == "" {
			return fail(apperrors.NewError("archive", apperrors.ErrInvalidInput).
				WithBucket(bucket).
				WithKey(fullKey).
				WithMessage("entry resolves to an empty archive name"))
		}

		rc, err := reader.Open(ctx, bucket, fullKey)
		if err != nil {
			return fail(err)
		}

		err = enc.Append(name, &entrySource{r: rc})
		closeErr := rc.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("%w: %w", apperrors.ErrRead, closeErr)
		}
		if err != nil {
			return fail(classifyStreamError("append", err, bucket, fullKey))
		}
	}

	if err := enc.Finalize(); err != nil {
		return fail(classifyStreamError("finalize", err, bucket, key))
	}
	_ = pw.Close() // signals EOF to the sink; always returns nil

	outcome := <-done
	if outcome.err != nil {
		return nil, outcome.err
	}

	result := &archivetypes.ArchiveResult{
		Bucket:   bucket,
		Key:      key,
		Size:     enc.BytesWritten(),
		Entries:  len(entries),
		Duration: time.Since(startTime),
	}

	a.logger.InfoContext(ctx, "archive committed",
		"bucket", bucket, "key", key, "entries", result.Entries, "bytes", result.Size)

	return result, nil
}

// entryName derives the archive entry name for a resolved key.
func entryName(fullKey string, policy archivetypes.NamingPolicy) string {
	if policy != nil {
		return policy(fullKey)
	}
	if idx := strings.LastIndex(fullKey, "/"); idx >= 0 {
		return fullKey[idx+1:]
	}
	return fullKey
}

// classifyStreamError attributes a mid-stream failure to the stage it came
// from. Errors surfacing from the pipe after an upload failure are passed
// through untouched; source read errors keep their read tag; everything
// else is the encoder's.
func classifyStreamError(op string, err error, bucket, key string) error {
	switch {
	case stderrors.Is(err, apperrors.ErrUpload):
		return err
	case stderrors.Is(err, apperrors.ErrRead):
		return apperrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	default:
		return apperrors.NewStageError(op, apperrors.ErrEncode, err).WithBucket(bucket).WithKey(key)
	}
}

// entrySource tags failures from a source object stream so they stay
// distinguishable from container write failures once they have passed
// through the encoder.
type entrySource struct {
	r io.Reader
}

func (s *entrySource) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("%w: %w", apperrors.ErrRead, err)
	}
	return n, err
}
