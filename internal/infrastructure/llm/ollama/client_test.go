package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/ports"
)

func dialogueContext() ports.DialogueContext {
	return ports.DialogueContext{
		DocumentSummary: "Document: agreement.docx",
		Placeholder: &domain.Placeholder{
			RawText:    "[Client Name]",
			StableName: "Client_Name",
			Type:       domain.TypeName,
			Context:    "between [Client Name] and the Company",
		},
		Progress: domain.Progress{Filled: 0, Total: 3},
		Input:    "The client is Acme Corp",
	}
}

func directiveServer(t *testing.T, response string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if capture != nil {
			*capture, _ = payload["prompt"].(string)
		}
		body, _ := json.Marshal(map[string]string{"response": response})
		_, _ = w.Write(body)
	}))
}

func TestNextDirectiveParsesFill(t *testing.T) {
	var prompt string
	server := directiveServer(t, `{"action":"fill","value":"Acme Corp","rationale":"stated directly"}`, &prompt)
	defer server.Close()

	client := New(server.URL, "gen")
	directive, err := client.NextDirective(context.Background(), dialogueContext())
	if err != nil {
		t.Fatalf("NextDirective: %v", err)
	}
	if directive.Kind != domain.DirectiveFill || directive.Value != "Acme Corp" {
		t.Fatalf("directive = %+v", directive)
	}
	if !strings.Contains(prompt, "[Client Name]") || !strings.Contains(prompt, "The client is Acme Corp") {
		t.Fatalf("prompt missing context: %s", prompt)
	}
	if !strings.Contains(prompt, "0 of 3 placeholders filled") {
		t.Fatalf("prompt missing progress: %s", prompt)
	}
}

func TestNextDirectiveParsesRequestMoreInfo(t *testing.T) {
	server := directiveServer(t, `{"action":"request_more_info","question":"What is the full legal name?","examples":"Acme Corporation"}`, nil)
	defer server.Close()

	client := New(server.URL, "gen")
	directive, err := client.NextDirective(context.Background(), dialogueContext())
	if err != nil {
		t.Fatalf("NextDirective: %v", err)
	}
	if directive.Kind != domain.DirectiveRequestMoreInfo {
		t.Fatalf("directive = %+v", directive)
	}
	if directive.Question != "What is the full legal name?" || directive.Examples != "Acme Corporation" {
		t.Fatalf("directive = %+v", directive)
	}
}

func TestNextDirectivePlainTextBecomesQuestion(t *testing.T) {
	server := directiveServer(t, "Could you tell me the client's name?", nil)
	defer server.Close()

	client := New(server.URL, "gen")
	directive, err := client.NextDirective(context.Background(), dialogueContext())
	if err != nil {
		t.Fatalf("NextDirective: %v", err)
	}
	if directive.Kind != domain.DirectiveRequestMoreInfo {
		t.Fatalf("directive = %+v", directive)
	}
	if directive.Question != "Could you tell me the client's name?" {
		t.Fatalf("question = %q", directive.Question)
	}
}

func TestNextDirectiveRejectsUnknownAction(t *testing.T) {
	server := directiveServer(t, `{"action":"delete_document"}`, nil)
	defer server.Close()

	client := New(server.URL, "gen")
	_, err := client.NextDirective(context.Background(), dialogueContext())
	if !domain.IsKind(err, domain.ErrCapability) {
		t.Fatalf("expected ErrCapability, got %v", err)
	}
}

func TestNextDirectiveRejectsFillWithoutValue(t *testing.T) {
	server := directiveServer(t, `{"action":"fill","value":""}`, nil)
	defer server.Close()

	client := New(server.URL, "gen")
	_, err := client.NextDirective(context.Background(), dialogueContext())
	if !domain.IsKind(err, domain.ErrCapability) {
		t.Fatalf("expected ErrCapability, got %v", err)
	}
}

func TestGenerateIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "gen")
	_, err := client.NextDirective(context.Background(), dialogueContext())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	// 502 is retryable, so the failure surfaces as temporary.
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestIntroduceReturnsPlainText(t *testing.T) {
	server := directiveServer(t, "Great, now let's fill in the effective date.", nil)
	defer server.Close()

	client := New(server.URL, "gen")
	intro, err := client.Introduce(context.Background(), dialogueContext())
	if err != nil {
		t.Fatalf("Introduce: %v", err)
	}
	if !strings.Contains(intro, "effective date") {
		t.Fatalf("intro = %q", intro)
	}
}

func TestDirectivePromptTruncatesSummaryOnRuneBoundary(t *testing.T) {
	dc := dialogueContext()
	dc.DocumentSummary = strings.Repeat("a", maxSummaryChars-1) + "\u00e9" + strings.Repeat("b", 100)

	prompt := buildDirectivePrompt(dc)
	if !utf8.ValidString(prompt) {
		t.Fatal("prompt contains invalid UTF-8 after summary truncation")
	}
	if strings.Contains(prompt, strings.Repeat("b", 100)) {
		t.Fatal("summary was not truncated")
	}
}
