// Package docio opens structured documents as paragraph/run trees so the
// extraction pipeline can scan and rewrite them in place. A .docx file is
// edited through its document XML; a .txt file is treated as one paragraph
// per line with a single run.
package docio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/ports"
)

// Mux dispatches to the format adapter by file extension.
type Mux struct{}

func NewMux() *Mux {
	return &Mux{}
}

func (m *Mux) Open(_ context.Context, path string) (ports.DocumentFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return openDocx(path)
	case ".txt":
		return openText(path)
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "open document",
			fmt.Errorf("unsupported extension %q", filepath.Ext(path)))
	}
}
