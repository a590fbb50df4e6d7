package placeholder

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/docufill/docufill/internal/core/domain"
)

func TestScanBracketMarkerAtStart(t *testing.T) {
	var state ScanState
	matches := Scan("[Client Name] agrees to the terms below.", &state)

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.StableName != "Client_Name" {
		t.Fatalf("expected stable name Client_Name, got %q", m.StableName)
	}
	if m.Type != domain.TypeName {
		t.Fatalf("expected type name, got %q", m.Type)
	}
	if m.Raw != "[Client Name]" {
		t.Fatalf("expected raw marker preserved, got %q", m.Raw)
	}
	if m.Start != 0 || m.End != len("[Client Name]") {
		t.Fatalf("unexpected span: %d..%d", m.Start, m.End)
	}
}

func TestScanNumbersBlanksAcrossParagraphs(t *testing.T) {
	var state ScanState
	first := Scan("Signed on [____] by [_____].", &state)
	second := Scan("Witnessed by [______].", &state)

	all := append(first, second...)
	if len(all) != 3 {
		t.Fatalf("expected 3 blanks, got %d", len(all))
	}
	for i, m := range all {
		want := []string{"blank_1", "blank_2", "blank_3"}[i]
		if m.StableName != want {
			t.Fatalf("blank %d: expected %s, got %s", i, want, m.StableName)
		}
		if m.Type != domain.TypeText {
			t.Fatalf("blank %d: expected type text, got %q", i, m.Type)
		}
	}
}

func TestScanRejectsShortUnderscoreRuns(t *testing.T) {
	var state ScanState
	if matches := Scan("A [__] is not a blank marker.", &state); len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestScanUnderscoreBodyNeverMatchesBracketGrammar(t *testing.T) {
	var state ScanState
	matches := Scan("Fill [____] here.", &state)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Kind != KindBlank {
		t.Fatalf("expected blank kind, got %v", matches[0].Kind)
	}
}

func TestScanOrdersMixedMarkersLeftToRight(t *testing.T) {
	var state ScanState
	matches := Scan("Between [Party Name] and [____] on [Effective Date].", &state)

	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	names := []string{matches[0].StableName, matches[1].StableName, matches[2].StableName}
	want := []string{"Party_Name", "blank_1", "Effective_Date"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, names, want)
		}
	}
}

func TestScanContextClampedToParagraphBounds(t *testing.T) {
	var state ScanState
	text := "x [Fee Amount] y"
	matches := Scan(text, &state)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Context != text {
		t.Fatalf("expected full paragraph as context, got %q", matches[0].Context)
	}
}

func TestScanBlankContextUsesNarrowWindow(t *testing.T) {
	var state ScanState
	pad := strings.Repeat("a", 80)
	text := pad + "[____]" + pad
	matches := Scan(text, &state)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	wantLen := blankContextRadius + len("[____]") + blankContextRadius
	if len(matches[0].Context) != wantLen {
		t.Fatalf("expected context of %d chars, got %d", wantLen, len(matches[0].Context))
	}
}

// Matching must be invariant to how the paragraph is split into runs,
// because scanning always runs over the concatenated text.
func TestScanEqualForArbitraryRunSplits(t *testing.T) {
	text := "This Agreement between [Client Name] and [Vendor-Name] dated [____]."

	var wholeState ScanState
	whole := Scan(text, &wholeState)

	for split := 1; split < len(text); split++ {
		runs := []string{text[:split], text[split:]}
		joined := strings.Join(runs, "")

		var splitState ScanState
		got := Scan(joined, &splitState)
		if len(got) != len(whole) {
			t.Fatalf("split at %d: got %d matches, want %d", split, len(got), len(whole))
		}
		for i := range got {
			if got[i].StableName != whole[i].StableName || got[i].Start != whole[i].Start {
				t.Fatalf("split at %d: match %d differs: %+v vs %+v", split, i, got[i], whole[i])
			}
		}
	}
}

func TestRewriteReplacesSpansWithTags(t *testing.T) {
	text := "Between [Client Name] and [____]."
	var state ScanState
	matches := Scan(text, &state)

	got := Rewrite(text, matches)
	want := "Between {{ Client_Name }} and {{ blank_1 }}."
	if got != want {
		t.Fatalf("Rewrite() = %q, want %q", got, want)
	}
}

func TestRewriteNoMatchesReturnsInput(t *testing.T) {
	if got := Rewrite("no markers here", nil); got != "no markers here" {
		t.Fatalf("unexpected rewrite: %q", got)
	}
}

func TestScanContextWindowStaysValidUTF8(t *testing.T) {
	// Multibyte runes straddle both window boundaries: one two bytes before
	// the leading cut point, one right on the trailing cut point.
	text := strings.Repeat("a", 100) + "\u00e9" + strings.Repeat("b", 99) +
		"[Client Name]" + strings.Repeat("c", 99) + "\u00e9" + strings.Repeat("d", 10)

	var state ScanState
	matches := Scan(text, &state)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	ctx := matches[0].Context
	if !utf8.ValidString(ctx) {
		t.Fatalf("context window contains invalid UTF-8: %q", ctx)
	}
	if got := strings.Count(ctx, "\u00e9"); got != 2 {
		t.Fatalf("expected both boundary runes kept whole, found %d", got)
	}
}
