package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// indexExtensions lists the variants probed for an index file, preferred first.
var indexExtensions = []string{".xz", ".gz", ""}

type indexReader struct {
	io.Reader
	closers []io.Closer
}

func (r *indexReader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openIndex opens the first existing variant of base (base.xz, base.gz, base)
// and returns a reader over its decompressed content along with the path used.
func openIndex(base string) (io.ReadCloser, string, error) {
	for _, ext := range indexExtensions {
		path := base + ext
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
		}

		switch ext {
		case ".xz":
			zr, err := xz.NewReader(f)
			if err != nil {
				f.Close()
				return nil, "", fmt.Errorf("failed to read xz stream %s: %w", path, err)
			}
			return &indexReader{Reader: zr, closers: []io.Closer{f}}, path, nil
		case ".gz":
			zr, err := gzip.NewReader(f)
			if err != nil {
				f.Close()
				return nil, "", fmt.Errorf("failed to read gzip stream %s: %w", path, err)
			}
			return &indexReader{Reader: zr, closers: []io.Closer{f, zr}}, path, nil
		default:
			return f, path, nil
		}
	}
	return nil, "", fmt.Errorf("%w: missing index file: %s{.xz,.gz,}", ErrMalformedSnapshot, base)
}

// FindIndex returns the path of the variant openIndex would read for base.
func FindIndex(base string) (string, error) {
	for _, ext := range indexExtensions {
		path := base + ext
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: missing index file: %s{.xz,.gz,}", ErrMalformedSnapshot, base)
}
