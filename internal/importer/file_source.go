package importer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// fileSource implements Source for files on the local file system.
type fileSource struct {
	logger zerolog.Logger
}

// NewFileSource creates a new local file system source.
func NewFileSource(logger zerolog.Logger) Source {
	return &fileSource{
		logger: logger.With().Str("component", "file-source").Logger(),
	}
}

// Open opens a local definition file for reading.
func (s *fileSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	file, err := os.Open(ref)
	if err != nil {
		s.logger.Error().Err(err).Str("file", ref).Msg("failed to open definition file")
		return nil, fmt.Errorf("failed to open definition file %s: %w", ref, err)
	}

	s.logger.Debug().Str("file", ref).Msg("definition file opened")

	return file, nil
}
