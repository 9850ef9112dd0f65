package archiver

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/emteq-ltd/lambda-s3-archiver/archivetypes"
)

// WithRegion sets the AWS region for the client.
func WithRegion(region string) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed requests.
func WithMaxRetries(retries int) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		c.MaxRetries = retries
	}
}

// WithTimeout sets the timeout for HTTP requests made by the client.
func WithTimeout(timeout time.Duration) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the number of parts uploaded in parallel by the
// streaming sink.
func WithConcurrency(concurrency int) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithPartSize sets the chunk size for the streaming upload. Values below
// the S3 minimum part size (5MB) are ignored.
func WithPartSize(size int64) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		if size >= 5*1024*1024 {
			c.PartSize = size
		}
	}
}

// WithForcePathStyle forces path-style addressing (bucket in the URL path
// instead of the hostname). Required for most S3-compatible endpoints.
func WithForcePathStyle(force bool) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		c.ForcePathStyle = force
	}
}

// WithAWSConfig uses a pre-configured AWS config instead of loading the
// default credential chain.
func WithAWSConfig(cfg aws.Config) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		c.CustomAWSConfig = &cfg
	}
}

// WithLogger sets the logger used for pipeline progress. By default all
// log output is discarded.
func WithLogger(logger *slog.Logger) archivetypes.Option {
	return func(c *archivetypes.ClientConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithEntries selects an explicit set of source objects, named relative to
// the archive prefix. When set, no listing is performed and the archive
// contains exactly these entries in the given order.
func WithEntries(entries []string) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.Entries = entries
	}
}

// WithOutputName sets the archive file name, without extension.
// Defaults to "archive".
func WithOutputName(name string) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.OutputName = name
	}
}

// WithFormat sets the archive container format.
func WithFormat(format archivetypes.Format) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.Format = format
	}
}

// WithFormatName sets the archive container format from a string such as
// "zip" or "tar". Unrecognized values fall back to ZIP.
func WithFormatName(format string) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.Format = archivetypes.ParseFormat(format)
	}
}

// WithNamingPolicy overrides how source keys are mapped to entry names
// inside the archive. The policy receives the full object key.
func WithNamingPolicy(policy archivetypes.NamingPolicy) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.NamingPolicy = policy
	}
}

// WithUploadContentType sets the Content-Type of the uploaded archive.
// When unset, the type is sniffed from the archive's leading bytes.
func WithUploadContentType(contentType string) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.Upload.ContentType = contentType
	}
}

// WithUploadACL sets the canned ACL applied to the uploaded archive.
func WithUploadACL(acl archivetypes.ObjectACL) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.Upload.ACL = acl
	}
}

// WithUploadStorageClass sets the storage class of the uploaded archive.
func WithUploadStorageClass(class archivetypes.StorageClass) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.Upload.StorageClass = class
	}
}

// WithUploadMetadata sets user metadata on the uploaded archive.
func WithUploadMetadata(metadata map[string]string) archivetypes.ArchiveOption {
	return func(c *archivetypes.ArchiveOptionConfig) {
		c.Upload.Metadata = metadata
	}
}
