package loader

import "io"

// FileResolver locates source files and opens them for reading.
type FileResolver interface {
	// Resolve takes a path as given on the command line (or by a caller) and
	// returns:
	// 1. An io.ReadCloser for the content of the file.
	// 2. The canonical path of the file, used in diagnostics and to detect
	//    the same file being named twice.
	// 3. An error if resolution or opening fails.
	Resolve(path string) (content io.ReadCloser, canonicalPath string, err error)
}
