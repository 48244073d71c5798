package main

import (
	"fmt"
	"path/filepath"

	"storefront/internal/util"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// diskSaver writes exports into a directory
type diskSaver struct {
	fs  afero.Fs
	dir string
}

func newDiskSaver(fs afero.Fs, dir string) *diskSaver {
	return &diskSaver{fs: fs, dir: dir}
}

func (s *diskSaver) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

func (s *diskSaver) Save(data []byte, filename, mimeType string) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	if err := afero.WriteFile(s.fs, s.Path(filename), data, 0o644); err != nil {
		return err
	}
	util.GetLogger().Debug("Export written",
		zap.String("path", s.Path(filename)),
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(data)))
	return nil
}
