package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// FileSource reads a results snapshot from disk. Paths ending in ".csv" are
// read as CSV, anything else as a JSON array. A trailing ".gz" is gunzipped
// first, so "results.csv.gz" is compressed CSV.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the snapshot at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(ctx context.Context) ([]models.EvaluationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	r, err := maybeGunzip(f, s.path)
	if err != nil {
		return nil, err
	}
	defer r.Close() //nolint:errcheck

	if IsCSV(s.path) {
		return DecodeCSV(r)
	}
	return DecodeJSON(r)
}

// IsCSV reports whether name is a CSV file, compressed or not.
func IsCSV(name string) bool {
	return strings.HasSuffix(strings.TrimSuffix(strings.ToLower(name), ".gz"), ".csv")
}

func (s *FileSource) Close() error { return nil }

func (s *FileSource) String() string { return "file:" + s.path }

// maybeGunzip wraps r in a gzip reader when name says it is compressed.
func maybeGunzip(r io.Reader, name string) (io.ReadCloser, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".gz") {
		return io.NopCloser(r), nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	return zr, nil
}
