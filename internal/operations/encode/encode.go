// Package encode turns a sequence of named entry streams into a single
// continuous archive byte stream in ZIP or TAR format.
//
// The encoder writes to whatever io.Writer it is constructed over; the
// pipeline hands it the write end of a pipe, so archive bytes flow to the
// upload sink as they are produced and the pipe provides backpressure.
package encode

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/emteq-ltd/lambda-s3-archiver/archivetypes"
	"github.com/emteq-ltd/lambda-s3-archiver/internal/pool"
)

// Encoder appends named entries to one archive container and tracks the
// cumulative bytes emitted. Entries are appended one at a time, in caller
// order; the order is preserved in the output container.
type Encoder struct {
	format archivetypes.Format
	cw     *countingWriter
	zw     *zip.Writer
	tw     *tar.Writer
}

// New creates an Encoder for the given container format writing to w.
func New(format archivetypes.Format, w io.Writer) *Encoder {
	cw := &countingWriter{w: w}
	e := &Encoder{
		format: format,
		cw:     cw,
	}
	switch format {
	case archivetypes.FormatTar:
		e.tw = tar.NewWriter(cw)
	default:
		e.zw = zip.NewWriter(cw)
	}
	return e
}

// Append fully drains r into the container as one entry named name.
// A failure while reading r or writing the container aborts the entry and
// must abort the whole encode; the container is corrupt past this point.
func (e *Encoder) Append(name string, r io.Reader) error {
	if e.format == archivetypes.FormatTar {
		return e.appendTar(name, r)
	}
	return e.appendZip(name, r)
}

func (e *Encoder) appendZip(name string, r io.Reader) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	w, err := e.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("write zip entry %q: %w", name, err)
	}
	return nil
}

// appendTar stages the entry in memory first: the TAR header needs the
// entry size before any of its data is written. Only one entry is staged
// at a time, never the whole archive.
func (e *Encoder) appendTar(name string, r io.Reader) error {
	staging := pool.GetBuffer(pool.SmallBufferSize)
	buf := bytes.NewBuffer(staging)
	defer func() {
		pool.PutBuffer(buf.Bytes())
	}()

	size, err := io.Copy(buf, r)
	if err != nil {
		return fmt.Errorf("stage tar entry %q: %w", name, err)
	}

	header := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     size,
		ModTime:  time.Now(),
		Typeflag: tar.TypeReg,
	}
	if err := e.tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write tar header %q: %w", name, err)
	}
	if _, err := e.tw.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write tar entry %q: %w", name, err)
	}
	return nil
}

// Finalize writes the container trailer (central directory for ZIP, the
// terminating blocks for TAR) and flushes everything to the underlying
// writer. No entries may be appended afterwards.
func (e *Encoder) Finalize() error {
	if e.tw != nil {
		if err := e.tw.Close(); err != nil {
			return fmt.Errorf("finalize tar: %w", err)
		}
		return nil
	}
	if err := e.zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}

// BytesWritten returns the cumulative bytes emitted so far. The count is
// monotonically non-decreasing and safe to read while the consuming side
// is still draining the stream.
func (e *Encoder) BytesWritten() int64 {
	return e.cw.count.Load()
}

// countingWriter counts bytes flowing into the underlying writer.
type countingWriter struct {
	w     io.Writer
	count atomic.Int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count.Add(int64(n))
	return n, err
}
