// Package archiver bundles a set of S3 objects into a single ZIP or TAR
// archive and uploads it back to S3, streaming end to end: archive bytes
// flow from the encoder straight into a chunked upload, so the whole
// archive is never buffered in memory or on disk.
//
// The input set is either an explicit list of keys or a paginated listing
// under a prefix. Entries are appended one at a time in enumeration order,
// and the upload consumes the encoder's output concurrently, with the
// connecting pipe providing backpressure.
//
// Key features:
//   - Simple, zero-configuration usage with the AWS credential chain
//   - Progressive enhancement through functional options
//   - Streaming multipart upload of archives with unknown total size
//   - ZIP and TAR containers, selected per operation
//   - Fail-fast error propagation across all pipeline stages
//
// Example usage:
//
//	client, err := archiver.New(archiver.WithRegion("us-west-2"))
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.Archive(ctx, "my-bucket", "reports/2026/",
//	    archiver.WithOutputName("reports-2026"),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("wrote %s/%s (%d bytes)\n", result.Bucket, result.Key, result.Size)
//
// A failed run never produces a result, but an upload already in flight is
// not aborted: a partial object may remain in the bucket. Cleaning those up
// is the caller's responsibility.
package archiver
