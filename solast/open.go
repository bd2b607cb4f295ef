// compiler AST scanning
//
// Walks JSON AST dumps (a single source unit or a standard
// JSON output with many) and checks every type string and
// variable declaration against the type front-end.
package solast

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error { return rc.close() }

// Opens path for reading, decompressing
// .gz and .zst files transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return readCloser{gz, func() error {
			gz.Close()
			return f.Close()
		}}, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return readCloser{zr, func() error {
			zr.Close()
			return f.Close()
		}}, nil
	default:
		return f, nil
	}
}
