package ollama

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docufill/docufill/internal/core/ports"
)

const (
	maxSummaryChars  = 4000
	maxTranscriptLen = 12
)

const directiveInstructions = `You are an assistant helping a user fill out a legal document.
You are collecting the value for exactly one placeholder at a time.
Return a strict JSON object with an "action" key and nothing else. Allowed actions:

{"action":"fill","value":"<the extracted value>","rationale":"<short reason>"}
  Use when the user's message contains the value for the current placeholder.

{"action":"request_more_info","question":"<what to ask>","examples":"<comma separated examples>"}
  Use when the value is missing, ambiguous or incomplete.

{"action":"complete","message":"<closing message>"}
  Use only when the user indicates the document should be finished as is.

No markdown, no extra keys, no commentary outside the JSON object.`

func buildDirectivePrompt(dc ports.DialogueContext) string {
	var b strings.Builder
	b.WriteString(directiveInstructions)
	b.WriteString("\n\n")
	b.WriteString(truncate(dc.DocumentSummary, maxSummaryChars))
	b.WriteString("\n\n")

	ph := dc.Placeholder
	fmt.Fprintf(&b, "Current placeholder: %s\n", ph.RawText)
	fmt.Fprintf(&b, "Field name: %s\n", ph.StableName)
	fmt.Fprintf(&b, "Expected type: %s\n", ph.Type)
	if ph.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", ph.Description)
	}
	if ph.Context != "" {
		fmt.Fprintf(&b, "Surrounding text: %s\n", ph.Context)
	}
	fmt.Fprintf(&b, "Progress: %d of %d placeholders filled\n", dc.Progress.Filled, dc.Progress.Total)

	if len(dc.ReuseHints) > 0 {
		b.WriteString("\nAlready collected values that may be relevant:\n")
		for _, hint := range dc.ReuseHints {
			value := ""
			if hint.FilledValue != nil {
				value = *hint.FilledValue
			}
			fmt.Fprintf(&b, "- %s: %s\n", hint.StableName, value)
		}
	}

	writeTranscript(&b, dc)

	fmt.Fprintf(&b, "\nUser message: %s\n", dc.Input)
	return b.String()
}

func buildIntroPrompt(dc ports.DialogueContext) string {
	var b strings.Builder
	b.WriteString(`You are an assistant helping a user fill out a legal document.
Introduce the next placeholder to the user in one or two friendly sentences
and ask for the required information. Plain text only, no JSON.`)
	b.WriteString("\n\n")
	b.WriteString(truncate(dc.DocumentSummary, maxSummaryChars))
	b.WriteString("\n\n")

	ph := dc.Placeholder
	fmt.Fprintf(&b, "Next placeholder: %s\n", ph.RawText)
	fmt.Fprintf(&b, "Expected type: %s\n", ph.Type)
	if ph.Context != "" {
		fmt.Fprintf(&b, "Surrounding text: %s\n", ph.Context)
	}
	fmt.Fprintf(&b, "Progress: %d of %d placeholders filled\n", dc.Progress.Filled, dc.Progress.Total)

	if len(dc.ReuseHints) > 0 {
		b.WriteString("\nValues already collected for similar fields; offer to reuse one if it fits:\n")
		for _, hint := range dc.ReuseHints {
			value := ""
			if hint.FilledValue != nil {
				value = *hint.FilledValue
			}
			fmt.Fprintf(&b, "- %s: %s\n", hint.StableName, value)
		}
	}
	return b.String()
}

// writeTranscript appends the most recent turns so the model sees the tail of
// the conversation without unbounded prompt growth.
func writeTranscript(b *strings.Builder, dc ports.DialogueContext) {
	transcript := dc.Transcript
	if len(transcript) == 0 {
		return
	}
	if len(transcript) > maxTranscriptLen {
		transcript = transcript[len(transcript)-maxTranscriptLen:]
	}
	b.WriteString("\nConversation so far:\n")
	for _, turn := range transcript {
		fmt.Fprintf(b, "%s: %s\n", turn.Role, turn.Content)
	}
}

// truncate cuts s to at most max bytes, never splitting a multibyte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
