// Package export renders text to downloadable files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is an export file type.
type Format string

const (
	TXT  Format = "txt"
	PDF  Format = "pdf"
	DOCX Format = "docx"
)

// Formats lists every supported format.
var Formats = []Format{TXT, PDF, DOCX}

// Suffixes distinguish exports of the three panes.
const (
	SuffixOriginal = ""
	SuffixRemix    = "_remix"
	SuffixFinal    = "_final"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}

	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the media type served for a format.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName returns <base><suffix>.<ext>.
func FileName(base, suffix string, f Format) string {
	return base + suffix + "." + string(f)
}

// Render produces the bytes of content in format f.
func Render(content string, f Format) ([]byte, error) {
	switch f {
	case TXT:
		return Text(content), nil
	case PDF:
		return PDFBytes(content)
	case DOCX:
		return DOCXBytes(content)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Text returns content unchanged as bytes.
func Text(content string) []byte {
	return []byte(content)
}

// Save writes data to dir/name, creating dir if needed, and returns the path.
func Save(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // user documents
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
