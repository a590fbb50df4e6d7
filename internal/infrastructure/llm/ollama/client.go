// Package ollama implements the language capability port against an Ollama
// server. Dialogue turns are driven through a strict-JSON directive protocol
// so model output always maps onto the closed directive set.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/ports"
	"github.com/docufill/docufill/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithExecutor wraps generate calls in the retry/circuit-breaker executor.
func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

// directiveEnvelope is the wire shape the model is instructed to produce.
type directiveEnvelope struct {
	Action    string `json:"action"`
	Value     string `json:"value,omitempty"`
	Rationale string `json:"rationale,omitempty"`
	Question  string `json:"question,omitempty"`
	Examples  string `json:"examples,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (c *Client) NextDirective(ctx context.Context, dc ports.DialogueContext) (domain.Directive, error) {
	raw, err := c.generateJSON(ctx, buildDirectivePrompt(dc))
	if err != nil {
		return domain.Directive{}, wrapTemporaryIfNeeded("next directive", err)
	}
	return parseDirective(raw)
}

func (c *Client) Introduce(ctx context.Context, dc ports.DialogueContext) (string, error) {
	text, err := c.generateText(ctx, buildIntroPrompt(dc))
	if err != nil {
		return "", wrapTemporaryIfNeeded("introduce placeholder", err)
	}
	return text, nil
}

// parseDirective maps model output onto the directive set. A bare text reply
// without a JSON envelope is treated as a clarifying question; an envelope
// with an unknown action is a capability failure.
func parseDirective(raw string) (domain.Directive, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Directive{}, domain.WrapError(domain.ErrCapability, "parse directive",
			fmt.Errorf("empty model response"))
	}

	var env directiveEnvelope
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &env); err != nil {
		return domain.Directive{
			Kind:     domain.DirectiveRequestMoreInfo,
			Question: raw,
		}, nil
	}

	switch env.Action {
	case "fill":
		if strings.TrimSpace(env.Value) == "" {
			return domain.Directive{}, domain.WrapError(domain.ErrCapability, "parse directive",
				fmt.Errorf("fill directive without value"))
		}
		return domain.Directive{
			Kind:      domain.DirectiveFill,
			Value:     env.Value,
			Rationale: env.Rationale,
		}, nil
	case "request_more_info":
		question := env.Question
		if strings.TrimSpace(question) == "" {
			question = "Could you please provide more details?"
		}
		return domain.Directive{
			Kind:     domain.DirectiveRequestMoreInfo,
			Question: question,
			Examples: env.Examples,
		}, nil
	case "complete":
		message := env.Message
		if strings.TrimSpace(message) == "" {
			message = "All the information has been collected."
		}
		return domain.Directive{
			Kind:    domain.DirectiveComplete,
			Message: message,
		}, nil
	case "":
		// JSON without an action field, for example when the model answers
		// with prose inside an object.
		return domain.Directive{}, domain.WrapError(domain.ErrCapability, "parse directive",
			fmt.Errorf("directive envelope missing action"))
	default:
		return domain.Directive{}, domain.WrapError(domain.ErrCapability, "parse directive",
			fmt.Errorf("unknown directive action %q", env.Action))
	}
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
