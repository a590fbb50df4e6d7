package docio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const paragraphXML = `<w:p w14:paraId="1"><w:pPr><w:jc w:val="both"/></w:pPr>` +
	`<w:r><w:rPr><w:b/></w:rPr><w:t>This Agreement is between [Cli</w:t></w:r>` +
	`<w:r><w:t xml:space="preserve">ent Name] &amp; the Company.</w:t></w:r>` +
	`<w:r><w:t/></w:r></w:p>`

func TestDocxParagraphSplitsRuns(t *testing.T) {
	p := newDocxParagraph(paragraphXML)
	runs := p.RunTexts()
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %v", len(runs), runs)
	}
	if runs[0] != "This Agreement is between [Cli" {
		t.Fatalf("run 0 = %q", runs[0])
	}
	if runs[1] != "ent Name] & the Company." {
		t.Fatalf("run 1 not unescaped: %q", runs[1])
	}
	if runs[2] != "" {
		t.Fatalf("self-closing run = %q", runs[2])
	}
	if got := strings.Join(runs, ""); !strings.Contains(got, "[Client Name]") {
		t.Fatalf("concatenated runs do not restore the marker: %q", got)
	}
}

func TestDocxParagraphRebuildPreservesMarkup(t *testing.T) {
	p := newDocxParagraph(paragraphXML)
	p.SetRunTexts([]string{"This Agreement is between {{ Client_Name }} & the Company.", "", ""})

	rebuilt := p.rebuild()
	if !strings.Contains(rebuilt, `<w:jc w:val="both"/>`) {
		t.Fatalf("paragraph properties lost: %s", rebuilt)
	}
	if !strings.Contains(rebuilt, `<w:b/>`) {
		t.Fatalf("run properties lost: %s", rebuilt)
	}
	if !strings.Contains(rebuilt, "{{ Client_Name }} &amp; the Company.") {
		t.Fatalf("text not escaped into first run: %s", rebuilt)
	}
	if strings.Count(rebuilt, "<w:t") != 3 {
		t.Fatalf("run count changed: %s", rebuilt)
	}
}

func TestDocxParagraphRebuildWithoutEditsIsIdentity(t *testing.T) {
	p := newDocxParagraph(paragraphXML)
	if got := p.rebuild(); got != paragraphXML {
		t.Fatalf("untouched paragraph changed:\n%s", got)
	}
}

func TestParagraphPatternIgnoresProperties(t *testing.T) {
	content := `<w:body><w:p><w:pPr/><w:r><w:t>first</w:t></w:r></w:p>` +
		`<w:sectPr/><w:p w14:paraId="2"><w:r><w:t>second</w:t></w:r></w:p></w:body>`
	spans := paragraphPattern.FindAllString(content, -1)
	if len(spans) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %v", len(spans), spans)
	}
}

func TestOpenTextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(src, []byte("Name: [Client Name]\nDate: [___]"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mux := NewMux()
	file, err := mux.Open(context.Background(), src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	paras := file.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paras))
	}
	if got := strings.Join(paras[0].RunTexts(), ""); got != "Name: [Client Name]" {
		t.Fatalf("paragraph 0 = %q", got)
	}

	paras[0].SetRunTexts([]string{"Name: {{ Client_Name }}"})
	out := filepath.Join(dir, "template.txt")
	if err := file.SaveAs(out); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "Name: {{ Client_Name }}\nDate: [___]"
	if string(written) != want {
		t.Fatalf("output = %q, want %q", written, want)
	}
}

func TestOpenRejectsUnknownExtension(t *testing.T) {
	mux := NewMux()
	if _, err := mux.Open(context.Background(), "document.pdf"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
