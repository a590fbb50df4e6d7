package docio

import (
	"fmt"
	"os"
	"strings"

	"github.com/docufill/docufill/internal/core/ports"
)

type textFile struct {
	paras []*textParagraph
}

func openText(path string) (*textFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	paras := make([]*textParagraph, len(lines))
	for i, line := range lines {
		paras[i] = &textParagraph{runs: []string{line}}
	}
	return &textFile{paras: paras}, nil
}

func (f *textFile) Paragraphs() []ports.ParagraphHandle {
	out := make([]ports.ParagraphHandle, len(f.paras))
	for i, p := range f.paras {
		out[i] = p
	}
	return out
}

func (f *textFile) SaveAs(path string) error {
	lines := make([]string, len(f.paras))
	for i, p := range f.paras {
		lines[i] = strings.Join(p.runs, "")
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write text file: %w", err)
	}
	return nil
}

func (f *textFile) Close() error { return nil }

type textParagraph struct {
	runs []string
}

func (p *textParagraph) RunTexts() []string {
	out := make([]string, len(p.runs))
	copy(out, p.runs)
	return out
}

func (p *textParagraph) SetRunTexts(texts []string) {
	p.runs = make([]string, len(texts))
	copy(p.runs, texts)
}
