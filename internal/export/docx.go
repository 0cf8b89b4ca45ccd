package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
)

const (
	docxFont = "Times New Roman"
	docxSize = 12
)

// DOCXBytes writes one paragraph per line of content.
func DOCXBytes(content string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	for _, line := range strings.Split(content, "\n") {
		p := doc.AddParagraph("")
		if line != "" {
			p.AddText(line).Font(docxFont).Size(docxSize).Color("000000")
		}
	}

	dir, err := os.MkdirTemp("", "audioscribe-docx-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.docx")
	if err := doc.SaveTo(path); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // our own temp file
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return data, nil
}
