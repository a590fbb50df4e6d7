// Package placeholder implements the marker extraction engine: locating
// bracket and blank markers in paragraph text, deriving stable names and
// semantic types, and rewriting marker spans into template tags.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/docufill/docufill/internal/core/domain"
)

const (
	bracketContextRadius = 100
	blankContextRadius   = 30
)

var (
	bracketPattern = regexp.MustCompile(`\[([A-Za-z0-9 \-]+)\]`)
	blankPattern   = regexp.MustCompile(`\[_{3,}\]`)
)

type MarkerKind int

const (
	KindBracket MarkerKind = iota
	KindBlank
)

// Match is one located marker within a paragraph's reconstructed text.
type Match struct {
	Kind        MarkerKind
	Raw         string
	StableName  string
	Type        domain.PlaceholderType
	Description string
	Context     string
	Start       int
	End         int
}

// ScanState carries document-wide state across paragraphs: blank markers are
// numbered sequentially in the order encountered over the whole document.
type ScanState struct {
	blankCounter int
}

// Scan locates all markers in the reconstructed paragraph text. The two
// grammars are applied independently against the original text and the
// combined result is ordered left to right, so matching is invariant to how
// the paragraph was split into runs. The bracket grammar cannot match a body
// of underscores (its charset excludes them); such runs are claimed by the
// blank grammar.
func Scan(text string, state *ScanState) []Match {
	matches := make([]Match, 0, 4)

	for _, loc := range bracketPattern.FindAllStringSubmatchIndex(text, -1) {
		body := strings.TrimSpace(text[loc[2]:loc[3]])
		matches = append(matches, Match{
			Kind:        KindBracket,
			Raw:         text[loc[0]:loc[1]],
			StableName:  Name(body),
			Type:        InferType(body),
			Description: fmt.Sprintf("Fill in the value for %s", body),
			Context:     contextWindow(text, loc[0], loc[1], bracketContextRadius),
			Start:       loc[0],
			End:         loc[1],
		})
	}

	for _, loc := range blankPattern.FindAllStringIndex(text, -1) {
		state.blankCounter++
		matches = append(matches, Match{
			Kind:        KindBlank,
			Raw:         text[loc[0]:loc[1]],
			StableName:  fmt.Sprintf("blank_%d", state.blankCounter),
			Type:        domain.TypeText,
			Description: fmt.Sprintf("Fill in the blank field #%d", state.blankCounter),
			Context:     contextWindow(text, loc[0], loc[1], blankContextRadius),
			Start:       loc[0],
			End:         loc[1],
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
	return matches
}

// contextWindow returns the surrounding text for a match span, clamped to the
// paragraph bounds. All context derivation goes through here so every caller
// sees identical windows. The radius is in bytes; cut points that land inside
// a multibyte rune widen to the enclosing rune boundary so the window is
// always valid UTF-8.
func contextWindow(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

// Rewrite replaces every matched marker span with its template tag in a
// single left-to-right pass over the original text.
func Rewrite(text string, matches []Match) string {
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range matches {
		if m.Start < prev {
			continue
		}
		b.WriteString(text[prev:m.Start])
		b.WriteString(Tag(m.StableName))
		prev = m.End
	}
	b.WriteString(text[prev:])
	return b.String()
}

// Tag renders the template tag for a stable name.
func Tag(name string) string {
	return "{{ " + name + " }}"
}
