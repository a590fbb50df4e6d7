// Package templating binds collected values into a rewritten template
// artifact, producing the completed document.
package templating

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/docufill/docufill/internal/core/ports"
)

var tagPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Renderer substitutes template tags across every paragraph run. A tag
// without a feeding value fails the render; the template stays untouched on
// disk because only the output path is written.
type Renderer struct {
	docIO ports.DocumentIO
}

func New(docIO ports.DocumentIO) *Renderer {
	return &Renderer{docIO: docIO}
}

func (r *Renderer) Render(ctx context.Context, templatePath string, values map[string]string, outputPath string) error {
	file, err := r.docIO.Open(ctx, templatePath)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer file.Close()

	missing := make(map[string]struct{})
	for _, para := range file.Paragraphs() {
		runs := para.RunTexts()
		changed := false
		for i, run := range runs {
			if !strings.Contains(run, "{{") {
				continue
			}
			runs[i] = tagPattern.ReplaceAllStringFunc(run, func(tag string) string {
				name := tagPattern.FindStringSubmatch(tag)[1]
				value, ok := values[name]
				if !ok {
					missing[name] = struct{}{}
					return tag
				}
				return value
			})
			changed = true
		}
		if changed {
			para.SetRunTexts(runs)
		}
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unresolved template tags: %s", strings.Join(names, ", "))
	}

	if err := file.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save rendered document: %w", err)
	}
	return nil
}
