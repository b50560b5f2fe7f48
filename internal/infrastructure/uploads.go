package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/model"
)

// UploadsURLPrefix is the URL path under which disk-stored posters are served
const UploadsURLPrefix = "/uploads/"

type DiskPosterStore struct {
	uploadsPath string
}

// NewDiskPosterStore initializes the uploads folder
func NewDiskPosterStore(uploadsPath string) (*DiskPosterStore, error) {
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		return nil, fmt.Errorf("could not create uploads directory: %w", err)
	}
	uploadsPath, err := filepath.Abs(uploadsPath)
	if err != nil {
		return nil, fmt.Errorf("could not resolve uploads directory: %w", err)
	}
	log.Info().Str("path", uploadsPath).Msg("Using uploads directory")

	return &DiskPosterStore{
		uploadsPath: uploadsPath,
	}, nil
}

// GetPosterPath returns the full path of a file in the uploads folder.
// The input cannot escape the uploads folder.
func (ds DiskPosterStore) GetPosterPath(filePath string) string {
	return filepath.Join(ds.uploadsPath, filepath.Clean("/"+filePath))
}

// StorePoster writes the poster under a generated unique name, keeping its extension,
// and returns the URL path it is served from
func (ds DiskPosterStore) StorePoster(ctx context.Context, poster model.PosterUpload) (string, error) {
	name := uniquePosterName(poster.Filename)

	in, err := poster.Open()
	if err != nil {
		return "", fmt.Errorf("could not open poster '%s': %w", poster.Filename, err)
	}
	defer in.Close()

	path := ds.GetPosterPath(name)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create poster file: %w", err)
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", path).Msg("Could not remove partial poster file")
		}
		return "", fmt.Errorf("could not write poster file: %w", err)
	}

	return UploadsURLPrefix + name, nil
}

// RemovePoster deletes a poster previously stored with StorePoster
func (ds DiskPosterStore) RemovePoster(ctx context.Context, ref string) error {
	if !strings.HasPrefix(ref, UploadsURLPrefix) {
		return fmt.Errorf("poster '%s' is not stored on disk", ref)
	}
	err := os.Remove(ds.GetPosterPath(strings.TrimPrefix(ref, UploadsURLPrefix)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// uniquePosterName generates a file name that cannot collide with another upload
func uniquePosterName(originalName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}
