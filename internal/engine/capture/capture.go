// Package capture writes framebuffer snapshots to PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshots names and writes snapshot files into a directory.
type Screenshots struct {
	dir    string
	prefix string
	now    func() time.Time
	last   string
	seq    int
}

// NewScreenshots writes files named <prefix>_<timestamp>.png into dir.
func NewScreenshots(dir, prefix string) *Screenshots {
	return &Screenshots{dir: dir, prefix: prefix, now: time.Now}
}

// Save writes bottom-up RGBA rows, as read back from OpenGL, as a top-down
// PNG and returns the file path.
func (s *Screenshots) Save(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := range height {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	path := s.nextName()

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return path, f.Close()
}

// nextName returns a unique file name. Snapshots taken within the same
// second get a numeric suffix.
func (s *Screenshots) nextName() string {
	stamp := s.now().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("%s_%s", s.prefix, stamp)
	if name == s.last {
		s.seq++
		name = fmt.Sprintf("%s_%d", name, s.seq)
	} else {
		s.last, s.seq = name, 0
	}
	return filepath.Join(s.dir, name+".png")
}
