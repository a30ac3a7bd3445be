package ports

import "io"

// FileSystem is the file access the pipeline needs: whole-file writes for
// reports and debug dumps, streaming writes for encoded output.
type FileSystem interface {
	// WriteFile replaces path with data. Readers never observe a partially
	// written file.
	WriteFile(path string, data []byte) error

	// Create opens path for streaming writes, truncating an existing file.
	Create(path string) (io.WriteCloser, error)

	MkdirAll(path string) error

	// Size returns the length in bytes of the file at path.
	Size(path string) (int64, error)
}
