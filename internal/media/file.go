// Package media holds the user's selected recording and the rules for
// accepting it.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultBaseName is used for exports when no file is selected.
const DefaultBaseName = "transcription"

// SizeHint is shown next to the picker. It is not enforced.
const SizeHint = "MP3, WAV, MP4, M4A (Max 2GB)"

var acceptedPrefixes = []string{"audio/", "video/"}

// File is a selected recording. The bytes are read lazily through Open.
type File struct {
	Name     string
	MIMEType string
	Size     int64

	open    func() (io.ReadCloser, error)
	release func() error
}

// NewFile wraps an opener. release may be nil.
func NewFile(name, mimeType string, size int64, open func() (io.ReadCloser, error), release func() error) *File {
	return &File{
		Name:     name,
		MIMEType: mimeType,
		Size:     size,
		open:     open,
		release:  release,
	}
}

// FromBytes builds an in-memory file.
func FromBytes(name, mimeType string, data []byte) *File {
	return NewFile(name, mimeType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil)
}

// FromPath builds a file backed by a path on disk. The declared type is
// sniffed from the content because there is no browser to declare it.
func FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect media type of %s: %w", path, err)
	}

	return NewFile(filepath.Base(path), mtype.String(), info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path) //nolint:gosec // user-chosen input file
	}, nil), nil
}

// FromUpload copies a multipart upload into a temp file so the bytes outlive
// the request. The declared Content-Type of the part is kept as-is.
func FromUpload(fh *multipart.FileHeader) (*File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "audioscribe-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	path := tmp.Name()

	return NewFile(fh.Filename, fh.Header.Get("Content-Type"), size, func() (io.ReadCloser, error) {
		return os.Open(path) //nolint:gosec // our own temp file
	}, func() error {
		return os.Remove(path)
	}), nil
}

// Open returns a fresh reader over the file contents.
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, errors.New("file has no content")
	}

	return f.open()
}

// Bytes reads the whole file.
func (f *File) Bytes() ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}

	return data, nil
}

// Release frees any backing storage. Safe to call more than once.
func (f *File) Release() error {
	if f == nil || f.release == nil {
		return nil
	}

	release := f.release
	f.release = nil

	return release()
}

// IsVideo reports whether the declared type is a video type.
func (f *File) IsVideo() bool {
	return strings.HasPrefix(f.MIMEType, "video/")
}

// SizeLabel renders the size in megabytes, e.g. "12.34 MB".
func (f *File) SizeLabel() string {
	return SizeLabel(f.Size)
}

// SizeLabel renders n bytes in megabytes with two decimals.
func SizeLabel(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
}

// BaseName derives the export base name: everything before the first '.'.
// An empty name, or one that starts with '.', falls back to DefaultBaseName.
func BaseName(name string) string {
	base, _, _ := strings.Cut(name, ".")
	if base == "" {
		return DefaultBaseName
	}

	return base
}
