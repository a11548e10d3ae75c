package camera

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

// DirSource replays the JPEG and PNG files of a directory in name order and
// reports io.EOF once they are exhausted.
type DirSource struct {
	paths []string
	next  int
}

var _ ports.FrameSource = (*DirSource)(nil)

// OpenDir lists the images in dir. A directory without images is an error.
func OpenDir(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("camera: open %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("camera: no images in %s", dir)
	}
	sort.Strings(paths)
	return &DirSource{paths: paths}, nil
}

// Read decodes the next image.
func (d *DirSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.next >= len(d.paths) {
		return nil, io.EOF
	}
	path := d.paths[d.next]
	d.next++

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("camera: decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Close is a no-op; files are closed after each read.
func (d *DirSource) Close() error {
	return nil
}
