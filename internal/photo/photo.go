// Package photo stores uploaded item photos on disk. Swap this package to
// use object storage later; callers only see opaque stored filenames.
package photo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/shramba/internal/imaging"
)

// MaxSizeBytes is the upload size cap.
const MaxSizeBytes = 10 << 20 // 10 MiB

// allowedExtensions are the accepted upload file extensions.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store saves photos under a single directory.
type Store struct {
	Dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save validates and stores an uploaded photo, returning the stored
// filename. JPEG and PNG uploads are downscaled and re-encoded; GIF and
// WebP are stored as-is. Validation failures are reported as a problem
// string suitable for the request's accumulated error list.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file type %s not allowed (use jpg, jpeg, png, gif or webp)", ext)
	}

	// Read one byte past the cap so oversized uploads are detected without
	// buffering the whole stream.
	data, err := io.ReadAll(io.LimitReader(r, MaxSizeBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxSizeBytes {
		return "", fmt.Errorf("file too large (max 10 MiB)")
	}

	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		result, err := imaging.Process(bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		data = result.Data
	}

	filename := strings.ReplaceAll(uuid.New().String(), "-", "") + ext
	if err := os.WriteFile(filepath.Join(s.Dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return filename, nil
}

// URLFor maps a stored filename to its serving path. Empty in, empty out.
func URLFor(filename string) string {
	if filename == "" {
		return ""
	}
	return "/uploads/" + filename
}
