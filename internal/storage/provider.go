// Package storage is the file-system target of note export and import.
package storage

import "time"

// Entry describes one file under the storage root.
type Entry struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for export directory operations.
type Provider interface {
	// Glob returns the files whose root-relative, slash-separated path
	// matches pattern. "**" matches any number of directories.
	Glob(pattern string) ([]Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
