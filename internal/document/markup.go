package document

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/alkime/audioscribe/pkg/collections"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// Parse reads rich-text markup. Unknown tags contribute their text; block
// elements start paragraphs; b/strong, i/em, u and font size carry style.
func Parse(markup string) (*Document, error) {
	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := xhtml.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	p := &parser{}
	for _, n := range nodes {
		p.walk(n, Style{})
	}
	p.flush()

	return &Document{Blocks: p.blocks}, nil
}

type parser struct {
	blocks []Block
	cur    *Block
}

func (p *parser) flush() {
	if p.cur != nil {
		p.cur.Runs = mergeRuns(p.cur.Runs)
		p.blocks = append(p.blocks, *p.cur)
		p.cur = nil
	}
}

func (p *parser) add(text string, style Style) {
	if p.cur == nil {
		p.cur = &Block{}
	}
	p.cur.Runs = append(p.cur.Runs, Run{Text: text, Style: style.normalized()})
}

func (p *parser) walk(n *xhtml.Node, style Style) {
	switch n.Type {
	case xhtml.TextNode:
		text := strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(n.Data)
		if p.cur == nil && strings.TrimSpace(text) == "" {
			return
		}
		p.add(text, style)
		return
	case xhtml.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Br:
		p.add("\n", style)
		return
	case atom.B, atom.Strong:
		style.Bold = true
	case atom.I, atom.Em:
		style.Italic = true
	case atom.U:
		style.Underline = true
	case atom.Font:
		for _, a := range n.Attr {
			if a.Key == "size" {
				if size, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil {
					style.Size = size
				}
			}
		}
	case atom.Script, atom.Style:
		return
	}

	block := blockTags[n.DataAtom]
	if block {
		p.flush()
		p.cur = &Block{}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, style)
	}

	if block {
		p.flush()
	}
}

// Markup renders the document as one <p> per paragraph.
func (d *Document) Markup() string {
	var sb strings.Builder
	for _, b := range d.Blocks {
		sb.WriteString("<p>")
		for _, r := range b.Runs {
			writeRun(&sb, r)
		}
		sb.WriteString("</p>")
	}

	return sb.String()
}

func writeRun(sb *strings.Builder, r Run) {
	var closers []string
	open := func(tag, attrs string) {
		sb.WriteString("<" + tag + attrs + ">")
		closers = append(closers, "</"+tag+">")
	}

	if r.Style.Size != 0 {
		open("font", fmt.Sprintf(` size="%d"`, r.Style.Size))
	}
	if r.Style.Bold {
		open("b", "")
	}
	if r.Style.Italic {
		open("i", "")
	}
	if r.Style.Underline {
		open("u", "")
	}

	sb.WriteString(escapeText(r.Text))

	for i := len(closers) - 1; i >= 0; i-- {
		sb.WriteString(closers[i])
	}
}

// escapeText escapes markup characters and turns newlines into <br/>.
func escapeText(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br/>")
}

// FragmentMarkup renders text as a standalone paragraph.
func FragmentMarkup(text string) string {
	return "<p>" + escapeText(text) + "</p>"
}

// AppendFragment appends text as a new paragraph. Existing markup is kept
// byte for byte. Empty text leaves the markup unchanged.
func AppendFragment(markup, text string) string {
	if text == "" {
		return markup
	}

	return markup + FragmentMarkup(text)
}

// PlainText reduces markup to text, separating paragraphs with a blank line
// the way a browser's innerText does.
func PlainText(markup string) string {
	doc, err := Parse(markup)
	if err != nil {
		return markup
	}

	return strings.Join(collections.Apply(doc.Blocks, Block.Text), "\n\n")
}
