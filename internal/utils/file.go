package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileTooLarge is wrapped by ValidateInputFile when a file exceeds the limit.
var ErrFileTooLarge = errors.New("file too large")

// ValidateInputFile checks that filename is an existing, readable regular
// file no larger than maxSize bytes. A maxSize of zero disables the check.
func ValidateInputFile(filename string, maxSize int64) (os.FileInfo, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("file does not exist: %s: %w", filename, err)
	case err != nil:
		return nil, fmt.Errorf("cannot access file %s: %w", filename, err)
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("not a regular file: %s", filename)
	case maxSize > 0 && info.Size() > maxSize:
		return nil, fmt.Errorf("%w: %s is %s, larger than the %s limit",
			ErrFileTooLarge, filename, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}

	return info, nil
}

// EnsureParentDir creates the directory that will hold filename. An empty
// name means stdout and needs nothing.
func EnsureParentDir(filename string) error {
	if filename == "" {
		return nil
	}
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// GetFileExtension returns the lowercased extension, dot included
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return u.Host, key, true
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
