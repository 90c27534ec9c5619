package packaging

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/bnema/ferry/internal/domain"
)

var errArchiveClosed = errors.New("archive writer is closed")

// ArchiveWriter writes named entries into a container, optionally wrapped in
// stream compression. It never closes the underlying sink.
type ArchiveWriter struct {
	archive    domain.ArchiveFormat
	compressor io.WriteCloser
	out        io.Writer
	zw         *zip.Writer
	tw         *tar.Writer
	spoolDir   string
	entries    int
	closed     bool
}

// NewArchiveWriter validates the archive/compression pair and prepares a
// writer over sink. Nothing is written to sink when the pair is rejected.
func NewArchiveWriter(sink io.Writer, archive domain.ArchiveFormat, compression domain.Compression) (*ArchiveWriter, error) {
	if err := domain.ValidateContainer(archive, compression); err != nil {
		return nil, err
	}

	w := &ArchiveWriter{archive: archive, out: sink}

	switch compression {
	case domain.CompressionGZIP:
		gz, err := gzip.NewWriterLevel(sink, gzip.DefaultCompression)
		if err != nil {
			return nil, err
		}
		w.compressor = gz
	case domain.CompressionZSTD:
		enc, err := zstd.NewWriter(sink)
		if err != nil {
			return nil, err
		}
		w.compressor = enc
	case domain.CompressionXZ:
		xw, err := xz.NewWriter(sink)
		if err != nil {
			return nil, err
		}
		w.compressor = xw
	}
	if w.compressor != nil {
		w.out = w.compressor
	}

	switch archive {
	case domain.ArchiveZIP:
		w.zw = zip.NewWriter(w.out)
	case domain.ArchiveTAR:
		w.tw = tar.NewWriter(w.out)
	}

	return w, nil
}

// SetSpoolDir sets where entries of unknown size are buffered before being
// written to a tar container.
func (w *ArchiveWriter) SetSpoolDir(dir string) {
	w.spoolDir = dir
}

// WriteEntry copies r into the archive under name. size may be -1 when
// unknown. It returns the number of bytes copied.
func (w *ArchiveWriter) WriteEntry(name string, size int64, modTime time.Time, r io.Reader) (int64, error) {
	if w.closed {
		return 0, errArchiveClosed
	}
	defer func() { w.entries++ }()

	switch w.archive {
	case domain.ArchiveZIP:
		hdr := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modTime.UTC(),
		}
		hdr.SetMode(0o644)
		fw, err := w.zw.CreateHeader(hdr)
		if err != nil {
			return 0, err
		}
		return io.Copy(fw, r)

	case domain.ArchiveTAR:
		if size < 0 {
			return w.writeSpooledTarEntry(name, modTime, r)
		}
		return w.writeTarEntry(name, size, modTime, r)

	default:
		if w.entries > 0 {
			return 0, fmt.Errorf("%w: archive format none holds exactly one file", domain.ErrUnsupportedOptions)
		}
		return io.Copy(w.out, r)
	}
}

func (w *ArchiveWriter) writeTarEntry(name string, size int64, modTime time.Time, r io.Reader) (int64, error) {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     size,
		Mode:     0o644,
		ModTime:  modTime.UTC().Truncate(time.Second),
		Format:   tar.FormatPAX,
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return 0, err
	}

	n, err := io.Copy(w.tw, r)
	if err != nil {
		return n, err
	}
	if n != size {
		return n, fmt.Errorf("entry %s: expected %d bytes, read %d", name, size, n)
	}
	return n, nil
}

// writeSpooledTarEntry buffers r to learn its size; tar headers precede data.
func (w *ArchiveWriter) writeSpooledTarEntry(name string, modTime time.Time, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(w.spoolDir, "ferry-entry-*")
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return 0, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return w.writeTarEntry(name, size, modTime, tmp)
}

// Close finishes the container and flushes the compressor.
func (w *ArchiveWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	switch {
	case w.zw != nil:
		errs = append(errs, w.zw.Close())
	case w.tw != nil:
		errs = append(errs, w.tw.Close())
	}
	if w.compressor != nil {
		errs = append(errs, w.compressor.Close())
	}
	return errors.Join(errs...)
}
