package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFontSize   = 12.0
	pdfLineHeight = 1.5
	pdfMargin     = 20.0
	// ptToMM converts points to millimetres, approximately.
	ptToMM = 0.3527
	// pdfLineStep is the vertical advance per line in mm.
	pdfLineStep = pdfFontSize * pdfLineHeight * ptToMM
	// pdfBottomGuard is the space a line needs below the cursor.
	pdfBottomGuard = 10.0
)

// placedLine is one line of text at its page position.
type placedLine struct {
	Page int
	X, Y float64
	Text string
}

// layoutLines positions wrapped lines top to bottom, starting a new page
// whenever the next line would cross into the bottom margin.
func layoutLines(lines []string, pageHeight float64) []placedLine {
	placed := make([]placedLine, 0, len(lines))
	page := 1
	y := pdfMargin

	for _, line := range lines {
		if y+pdfBottomGuard > pageHeight-pdfMargin {
			page++
			y = pdfMargin
		}
		placed = append(placed, placedLine{Page: page, X: pdfMargin, Y: y, Text: line})
		y += pdfLineStep
	}

	return placed
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// splitLines wraps cp1252 text to width. SplitText breaks only on '\n', so
// CRLF and lone CR endings are folded first.
func splitLines(pdf *fpdf.Fpdf, text string, width float64) []string {
	return pdf.SplitText(widen(lineEndings.Replace(text)), width)
}

// PDFBytes renders content on A4 pages in 12pt Helvetica with 20mm margins,
// word-wrapped to the page width. Characters outside cp1252 are replaced.
func PDFBytes(content string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", pdfFontSize)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	lines := splitLines(pdf, translate(content), pageWidth-2*pdfMargin)

	page := 1
	for _, pl := range layoutLines(lines, pageHeight) {
		if pl.Page != page {
			pdf.AddPage()
			page = pl.Page
		}
		pdf.Text(pl.X, pl.Y, narrow(pl.Text))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// widen maps each code-page byte to the rune of the same value, which is
// what the font width table is indexed by.
func widen(s string) string {
	rs := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		rs[i] = rune(s[i])
	}

	return string(rs)
}

// narrow reverses widen.
func narrow(s string) string {
	bs := make([]byte, 0, len(s))
	for _, r := range s {
		bs = append(bs, byte(r))
	}

	return string(bs)
}
