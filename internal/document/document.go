// Package document models the final document as paragraphs of styled text
// runs and converts it to and from HTML markup.
package document

import (
	"strings"
	"unicode/utf8"

	"github.com/alkime/audioscribe/pkg/collections"
)

// Placeholder is the content of a fresh final document.
const Placeholder = "<p>Start building your final document here...</p>"

// Font sizes follow the legacy HTML scale, where 3 is the browser default.
const (
	FontSizeStandard = 3
	FontSizeLarge    = 4
)

// Style is the formatting carried by a run. A zero Size means standard.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Size      int
}

func (s Style) normalized() Style {
	if s.Size == FontSizeStandard {
		s.Size = 0
	}

	return s
}

// Run is a span of text with one style. Line breaks inside a paragraph are
// kept as '\n'.
type Run struct {
	Text  string
	Style Style
}

// Block is a paragraph.
type Block struct {
	Runs []Run
}

// Text returns the unstyled paragraph text.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}

	return sb.String()
}

// Document is an ordered list of paragraphs.
type Document struct {
	Blocks []Block
}

// Selection is a half-open range of rune offsets into Text().
type Selection struct {
	Start int
	End   int
}

// Empty reports whether the selection covers no text.
func (s Selection) Empty() bool {
	return s.End <= s.Start
}

// Text joins the paragraphs with single newlines. Selections index into it.
func (d *Document) Text() string {
	return strings.Join(collections.Apply(d.Blocks, Block.Text), "\n")
}

// Len returns the length of Text() in runes.
func (d *Document) Len() int {
	return utf8.RuneCountInString(d.Text())
}

// AppendText adds a paragraph of unstyled text.
func (d *Document) AppendText(text string) {
	d.Blocks = append(d.Blocks, Block{Runs: []Run{{Text: text}}})
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	out := &Document{Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		out.Blocks[i] = Block{Runs: append([]Run(nil), b.Runs...)}
	}

	return out
}

// styleAll reports whether every selected rune satisfies pred. An empty
// selection reports false.
func (d *Document) styleAll(sel Selection, pred func(Style) bool) bool {
	seen := false
	all := true

	d.eachSelected(sel, func(b *Block, lo, hi int) {
		pos := 0
		for _, r := range b.Runs {
			n := utf8.RuneCountInString(r.Text)
			if pos < hi && pos+n > lo {
				seen = true
				if !pred(r.Style) {
					all = false
				}
			}
			pos += n
		}
	})

	return seen && all
}

// restyle applies f to every selected rune, splitting runs at the edges.
func (d *Document) restyle(sel Selection, f func(Style) Style) {
	d.eachSelected(sel, func(b *Block, lo, hi int) {
		var runs []Run
		pos := 0
		for _, r := range b.Runs {
			rs := []rune(r.Text)
			n := len(rs)
			a := collections.Clamp(lo-pos, 0, n)
			z := collections.Clamp(hi-pos, 0, n)

			if a > 0 {
				runs = append(runs, Run{Text: string(rs[:a]), Style: r.Style})
			}
			if z > a {
				runs = append(runs, Run{Text: string(rs[a:z]), Style: f(r.Style).normalized()})
			}
			if n > z {
				runs = append(runs, Run{Text: string(rs[z:]), Style: r.Style})
			}
			pos += n
		}
		b.Runs = mergeRuns(runs)
	})
}

// eachSelected calls fn with block-local rune bounds for every block the
// selection touches.
func (d *Document) eachSelected(sel Selection, fn func(b *Block, lo, hi int)) {
	if sel.Empty() {
		return
	}

	pos := 0
	for i := range d.Blocks {
		n := utf8.RuneCountInString(d.Blocks[i].Text())
		lo := max(sel.Start, pos) - pos
		hi := min(sel.End, pos+n) - pos
		if hi > lo {
			fn(&d.Blocks[i], lo, hi)
		}
		pos += n + 1
	}
}

func mergeRuns(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1].Style == r.Style {
			out[len(out)-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}

	return out
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
