package storage

import "io"

// Storage is the file-storage collaborator used for image uploads. Records
// store the returned path; replacing an image deletes the old file.
type Storage interface {
	// Save writes data under a generated name in the given directory and
	// returns the storage path to persist on the record.
	Save(dir, filename string, data io.Reader) (string, error)

	Read(path string) (io.ReadCloser, error)

	Delete(path string) error

	Exists(path string) bool
}
