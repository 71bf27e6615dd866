package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type LocalDiskStorage struct {
	basepath string
}

func NewLocalDisk(basepath string) Storage {
	slog.Info("creating new local disk storage", "basepath", basepath)
	return &LocalDiskStorage{basepath: basepath}
}

func (s *LocalDiskStorage) fullpath(path string) string {
	return filepath.Join(s.basepath, path)
}

// Save stores the data under a uuid-based name so repeated uploads never
// collide; the original extension is kept for content-type sniffing.
func (s *LocalDiskStorage) Save(dir, filename string, data io.Reader) (string, error) {
	name := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(dir, name)
	fullpath := s.fullpath(path)

	err := os.MkdirAll(filepath.Dir(fullpath), 0777)
	if err != nil {
		slog.Error("error creating parent directory", "path", fullpath, "error", err)
		return "", fmt.Errorf("error creating parent directory %v: %v", path, err)
	}

	file, err := os.OpenFile(fullpath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		slog.Error("error opening file for writing", "path", fullpath, "error", err)
		return "", fmt.Errorf("error opening file %v: %v", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		slog.Error("error writing file", "path", fullpath, "error", err)
		return "", fmt.Errorf("error writing file %v: %v", path, err)
	}

	return path, nil
}

func (s *LocalDiskStorage) Read(path string) (io.ReadCloser, error) {
	fullpath := s.fullpath(path)
	file, err := os.Open(fullpath)
	if err != nil {
		slog.Error("error opening file for read", "path", fullpath, "error", err)
		return nil, fmt.Errorf("error reading file %v: %v", path, err)
	}

	return file, nil
}

func (s *LocalDiskStorage) Delete(path string) error {
	fullpath := s.fullpath(path)
	err := os.Remove(fullpath)
	if err != nil && !os.IsNotExist(err) {
		slog.Error("error deleting file", "path", fullpath, "error", err)
		return fmt.Errorf("error deleting file %v: %v", path, err)
	}
	return nil
}

func (s *LocalDiskStorage) Exists(path string) bool {
	_, err := os.Stat(s.fullpath(path))
	return err == nil
}
