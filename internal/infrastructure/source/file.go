// ABOUTME: File stream provider backed by an afero filesystem
// ABOUTME: Yields seekable streams for local media files
package source

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/harper/stream-media-source/internal/domain"
)

type FileSource struct {
	fs   afero.Fs
	path string
}

var _ domain.StreamProvider = (*FileSource)(nil)

// NewFile opens path on fs; a nil fs means the OS filesystem.
func NewFile(fs afero.Fs, path string) *FileSource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileSource{fs: fs, path: path}
}

func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := f.fs.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %s: %w", f.path, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("open %s: is a directory", f.path)
	}

	return file, nil
}
