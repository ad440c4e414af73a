// Package generator wraps structured-output requests to an external
// language model (spec §4.3). It is deliberately thin: one call in, one
// decoded JSON value (or a classified error) out. Retries are an upper
// layer's decision (spec §4.3: "Retry: none by default at this layer").
//
// Grounded on pkg/connector/provider_openai.go's OpenAIProvider (the
// client construction, chat-completions call shape, and
// errors.As(*openai.Error) status-code classification), generalized from
// a multi-turn tool-calling provider to a single-shot structured call,
// and on pkg/agents/tools/*.go's JSON-schema literal convention
// (map[string]any, mirroring mcp.Tool.InputSchema) for describing the
// expected response shape.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"github.com/rs/zerolog"

	"github.com/hanzidojo/engine/internal/engerr"
)

// Schema is a declarative JSON-schema literal describing the expected
// response shape — the same literal-map convention the teacher's MCP tool
// definitions use for InputSchema (pkg/agents/tools/calculator.go et al.).
type Schema map[string]any

// Request is a single structured-generation call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Schema       Schema
	MaxTokens    int // 0 means "use the client's configured default"
}

// Client talks to an OpenAI-compatible structured-output endpoint via
// openai-go, the corpus's standard client for this concern
// (pkg/connector/provider_openai.go).
type Client struct {
	client           openai.Client
	model            string
	defaultMaxTokens int
	log              zerolog.Logger
}

// New builds a Client. defaultMaxTokens backs requests that don't specify
// their own budget (spec §4.3: "Maximum-token budget is a per-call
// parameter; default drawn from configuration").
func New(baseURL, apiKey string, model string, defaultMaxTokens int, log zerolog.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		client:           openai.NewClient(opts...),
		model:            model,
		defaultMaxTokens: defaultMaxTokens,
		log:              log.With().Str("component", "generator").Logger(),
	}
}

// StructuredGenerate performs one structured-output request and decodes
// the result into out (a pointer). Implements the collaborator interface
// named in spec §6: generate_structured(system_prompt, user_prompt,
// schema, max_tokens) -> Result<decoded, err>.
func (c *Client) StructuredGenerate(ctx context.Context, req Request, out any) error {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxCompletionTokens: param.NewOpt(int64(maxTokens)),
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "structured_response",
					Schema: map[string]any(req.Schema),
					Strict: param.NewOpt(true),
				},
			},
		}
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return classifyError(ctx, err)
	}
	c.log.Debug().Dur("elapsed", time.Since(start)).Msg("generator round-trip complete")

	if len(resp.Choices) == 0 {
		return engerr.NewIncompleteResponseError("no_choices")
	}
	choice := resp.Choices[0]
	if choice.FinishReason != "" && choice.FinishReason != "stop" {
		return engerr.NewIncompleteResponseError(choice.FinishReason)
	}

	content := Sanitize(choice.Message.Content)
	if content == "" {
		return engerr.NewIncompleteResponseError("empty_content")
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return engerr.WrapSchemaError(err, "generator: response did not match schema")
	}
	return nil
}

// classifyError maps an openai-go error onto the engine's error taxonomy,
// the way pkg/aierrors/errors.go and pkg/connector/errors.go classify
// *openai.Error by status code (with a fallback to ctx for timeouts that
// never reach the transport).
func classifyError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return engerr.WrapTimeoutError(err, "generator: request timed out")
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode >= 500:
			return engerr.WrapTransportError(err, "generator: server error")
		case apiErr.StatusCode == http.StatusRequestTimeout, apiErr.StatusCode == http.StatusGatewayTimeout:
			return engerr.WrapTimeoutError(err, "generator: request timed out")
		case apiErr.StatusCode >= 400:
			return engerr.WrapSchemaError(err, "generator: request rejected")
		}
	}
	return engerr.WrapTransportError(err, "generator: request failed")
}
