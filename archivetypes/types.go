// Package archivetypes provides shared type definitions for the archiver module.
package archivetypes

import (
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Format is the archive container format produced by the pipeline.
type Format string

// Supported container formats.
const (
	// FormatZip packs entries into a ZIP container (default)
	FormatZip Format = "zip"

	// FormatTar packs entries into a TAR container
	FormatTar Format = "tar"
)

// ParseFormat normalizes a format string, case-insensitively. Unrecognized
// values fall back to ZIP rather than failing.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "tar":
		return FormatTar
	default:
		return FormatZip
	}
}

// Extension returns the file extension appended to the output key.
func (f Format) Extension() string {
	return string(f)
}

// NamingPolicy maps a full source object key to the name the entry gets
// inside the archive. Returning an empty string fails the operation.
type NamingPolicy func(fullKey string) string

// StorageClass represents the S3 storage class for the uploaded archive.
type StorageClass string

// Predefined S3 storage classes.
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"
)

// ObjectACL represents the access control list for the uploaded archive.
type ObjectACL string

// Predefined object ACLs.
const (
	// ACLPrivate grants private access (default)
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access
	ACLPublicRead ObjectACL = "public-read"

	// ACLAuthenticatedRead grants authenticated users read access
	ACLAuthenticatedRead ObjectACL = "authenticated-read"

	// ACLBucketOwnerFullControl grants the bucket owner full control
	ACLBucketOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// ArchiveResult is the terminal artifact of a successful archive run.
// It is produced exactly once, after the upload is fully committed.
type ArchiveResult struct {
	// Bucket is the bucket the archive was uploaded to
	Bucket string

	// Key is the object key of the uploaded archive
	Key string

	// Size is the total number of bytes the encoder emitted, which equals
	// the number of bytes the upload sink received
	Size int64

	// Entries is the number of source objects packed into the archive
	Entries int

	// Duration is how long the whole pipeline took
	Duration time.Duration
}

// UploadResult contains the result of the streaming upload stage.
type UploadResult struct {
	// Bucket is the bucket the object was uploaded to
	Bucket string

	// Key is the object key that was uploaded
	Key string

	// Size is the number of bytes the sink consumed from the archive stream
	Size int64

	// ETag is the S3 entity tag for the uploaded object
	ETag string

	// Duration is how long the upload took
	Duration time.Duration
}

// UploadOverrides is an opaque parameter bag merged into the sink's upload
// request. The pipeline orchestrator never interprets its contents; only
// the sink does.
type UploadOverrides struct {
	// ContentType forces the Content-Type of the uploaded archive. When
	// empty the sink sniffs it from the leading bytes of the stream.
	ContentType string

	// ACL is the canned ACL applied to the uploaded archive
	ACL ObjectACL

	// StorageClass is the storage class for the uploaded archive
	StorageClass StorageClass

	// Metadata is user-defined metadata attached to the uploaded archive
	Metadata map[string]string
}

// Configuration types for functional options

// ClientConfig holds configuration for the archiver client.
type ClientConfig struct {
	Region          string
	MaxRetries      int
	Timeout         time.Duration
	Concurrency     int
	PartSize        int64
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config
	Logger          *slog.Logger
}

// ArchiveOptionConfig holds per-operation configuration applied via
// functional options on Archive calls.
type ArchiveOptionConfig struct {
	Entries      []string
	OutputName   string
	Format       Format
	NamingPolicy NamingPolicy
	Upload       UploadOverrides
}

// Option is a functional option for configuring the archiver client.
type (
	Option func(*ClientConfig)
	// ArchiveOption is a functional option for configuring a single
	// archive operation.
	ArchiveOption func(*ArchiveOptionConfig)
)
