package export

import (
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
)

func TestLayoutLines_StaysInsideMargins(t *testing.T) {
	t.Parallel()

	const a4Height = 297.0

	lines := make([]string, 200)
	placed := layoutLines(lines, a4Height)

	assert.Len(t, placed, 200)

	pages := 0
	for i, pl := range placed {
		assert.Equal(t, pdfMargin, pl.X)
		assert.GreaterOrEqual(t, pl.Y, pdfMargin)
		assert.LessOrEqual(t, pl.Y+pdfBottomGuard, a4Height-pdfMargin, "line %d crosses the bottom margin", i)
		pages = max(pages, pl.Page)

		if i > 0 && pl.Page == placed[i-1].Page {
			assert.InDelta(t, pdfLineStep, pl.Y-placed[i-1].Y, 1e-9)
		}
		if i > 0 && pl.Page != placed[i-1].Page {
			assert.Equal(t, pdfMargin, pl.Y, "new page restarts at the top margin")
		}
	}

	assert.Greater(t, pages, 1)
}

func TestWidenNarrow(t *testing.T) {
	t.Parallel()

	in := string([]byte{'a', 0xE9, '\n', 0x80})
	assert.Equal(t, in, narrow(widen(in)))
	assert.Equal(t, []rune{'a', 0xE9, '\n', 0x80}, []rune(widen(in)))
}

func TestSplitLines_FoldsCarriageReturns(t *testing.T) {
	t.Parallel()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", pdfFontSize)

	for _, in := range []string{"Line one\r\nLine two", "Line one\rLine two", "Line one\nLine two"} {
		lines := splitLines(pdf, in, 170)
		assert.Equal(t, []string{"Line one", "Line two"}, lines, "%q", in)
		for _, l := range lines {
			assert.NotContains(t, l, "\r")
		}
	}
}
