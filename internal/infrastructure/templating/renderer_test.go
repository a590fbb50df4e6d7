package templating

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docufill/docufill/internal/infrastructure/docio"
)

func writeTemplate(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "template.txt")
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return src, filepath.Join(dir, "completed.txt")
}

func TestRenderSubstitutesAllTags(t *testing.T) {
	src, out := writeTemplate(t,
		"This Agreement is between {{ Client_Name }} and the Company.\nSigned on {{ Effective_Date }}.")
	r := New(docio.NewMux())

	err := r.Render(context.Background(), src, map[string]string{
		"Client_Name":    "Acme Corp",
		"Effective_Date": "2026-01-15",
	}, out)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rendered, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "This Agreement is between Acme Corp and the Company.\nSigned on 2026-01-15."
	if string(rendered) != want {
		t.Fatalf("rendered = %q, want %q", rendered, want)
	}
}

func TestRenderToleratesFlexibleTagSpacing(t *testing.T) {
	src, out := writeTemplate(t, "{{Client_Name}} / {{  Client_Name  }}")
	r := New(docio.NewMux())

	if err := r.Render(context.Background(), src, map[string]string{"Client_Name": "Acme"}, out); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rendered, _ := os.ReadFile(out)
	if string(rendered) != "Acme / Acme" {
		t.Fatalf("rendered = %q", rendered)
	}
}

func TestRenderFailsOnUnresolvedTag(t *testing.T) {
	src, out := writeTemplate(t, "Between {{ Client_Name }} and {{ Other_Party }}.")
	r := New(docio.NewMux())

	err := r.Render(context.Background(), src, map[string]string{"Client_Name": "Acme"}, out)
	if err == nil {
		t.Fatal("expected error for unresolved tag")
	}
	if !strings.Contains(err.Error(), "Other_Party") {
		t.Fatalf("error does not name the missing tag: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("output written despite unresolved tags")
	}
}

func TestRenderLeavesTemplateUntouched(t *testing.T) {
	const content = "Hello {{ Client_Name }}."
	src, out := writeTemplate(t, content)
	r := New(docio.NewMux())

	if err := r.Render(context.Background(), src, map[string]string{"Client_Name": "Acme"}, out); err != nil {
		t.Fatalf("Render: %v", err)
	}
	template, _ := os.ReadFile(src)
	if string(template) != content {
		t.Fatalf("template mutated: %q", template)
	}
}
