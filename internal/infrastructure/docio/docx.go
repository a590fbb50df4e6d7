package docio

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/docufill/docufill/internal/core/ports"
)

var (
	paragraphPattern = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	runTextPattern   = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>.*?</w:t>|<w:t(?: [^>]*)?/>`)
	runTextInner     = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>(.*)</w:t>`)
)

type docxFile struct {
	archive  *docx.ReplaceDocx
	editable *docx.Docx
	content  string
	spans    [][]int
	paras    []*docxParagraph
}

func openDocx(path string) (*docxFile, error) {
	archive, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	f := &docxFile{
		archive:  archive,
		editable: archive.Editable(),
	}
	f.content = f.editable.GetContent()
	f.spans = paragraphPattern.FindAllStringIndex(f.content, -1)
	f.paras = make([]*docxParagraph, 0, len(f.spans))
	for _, span := range f.spans {
		f.paras = append(f.paras, newDocxParagraph(f.content[span[0]:span[1]]))
	}
	return f, nil
}

func (f *docxFile) Paragraphs() []ports.ParagraphHandle {
	out := make([]ports.ParagraphHandle, len(f.paras))
	for i, p := range f.paras {
		out[i] = p
	}
	return out
}

func (f *docxFile) SaveAs(path string) error {
	var b strings.Builder
	b.Grow(len(f.content))
	prev := 0
	for i, span := range f.spans {
		b.WriteString(f.content[prev:span[0]])
		b.WriteString(f.paras[i].rebuild())
		prev = span[1]
	}
	b.WriteString(f.content[prev:])

	f.editable.SetContent(b.String())
	if err := f.editable.WriteToFile(path); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func (f *docxFile) Close() error {
	return f.archive.Close()
}

// docxParagraph exposes the paragraph's <w:t> elements as text runs.
// Formatting markup between the runs is preserved byte for byte; only run
// text content is replaced on write-back.
type docxParagraph struct {
	raw   string
	elems [][]int
	texts []string
	dirty bool
}

func newDocxParagraph(raw string) *docxParagraph {
	p := &docxParagraph{raw: raw}
	p.elems = runTextPattern.FindAllStringIndex(raw, -1)
	p.texts = make([]string, len(p.elems))
	for i, span := range p.elems {
		p.texts[i] = innerText(raw[span[0]:span[1]])
	}
	return p
}

func (p *docxParagraph) RunTexts() []string {
	out := make([]string, len(p.texts))
	copy(out, p.texts)
	return out
}

func (p *docxParagraph) SetRunTexts(texts []string) {
	for i := range p.texts {
		if i < len(texts) {
			p.texts[i] = texts[i]
		} else {
			p.texts[i] = ""
		}
	}
	p.dirty = true
}

func (p *docxParagraph) rebuild() string {
	if !p.dirty {
		return p.raw
	}
	var b strings.Builder
	b.Grow(len(p.raw))
	prev := 0
	for i, span := range p.elems {
		b.WriteString(p.raw[prev:span[0]])
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(escapeXML(p.texts[i]))
		b.WriteString(`</w:t>`)
		prev = span[1]
	}
	b.WriteString(p.raw[prev:])
	return b.String()
}

func innerText(elem string) string {
	m := runTextInner.FindStringSubmatch(elem)
	if m == nil {
		// Self-closing <w:t/> carries no text.
		return ""
	}
	return unescapeXML(m[1])
}

var (
	xmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	xmlUnescaper = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
)

func escapeXML(s string) string   { return xmlEscaper.Replace(s) }
func unescapeXML(s string) string { return xmlUnescaper.Replace(s) }
