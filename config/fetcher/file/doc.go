// Package file provides a file-based DataFetcher implementation for the config package.
//
// The file is read at construction time and cached, meaning subsequent calls
// to Fetch() return the same data without re-reading the filesystem. A loader
// stage therefore sees one consistent snapshot of the file.
//
// Usage:
//
//	fetcher, err := file.New("/path/to/config.toml")
//	if err != nil {
//	    // Handle error: file not found, permission denied, path is directory, etc.
//	}
//	data, err := fetcher.Fetch()
//
// Error Handling:
//   - Construction returns error if file cannot be read or path is a directory
//   - Errors include the filepath for easier debugging
//   - Use errors.Is(err, fs.ErrNotExist) to detect a missing file
//   - Use errors.Is(err, file.ErrPathIsDirectory) to check for directory errors
package file
