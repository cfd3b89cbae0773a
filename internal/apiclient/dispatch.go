package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/api/schemas"
)

// DefaultDispatchTimeout is the budget applied when a DispatchRequest does
// not set one. Agent tasks routinely run for many minutes.
const DefaultDispatchTimeout = 1000 * time.Second

// DefaultTimeZone is sent with every dispatch unless overridden.
const DefaultTimeZone = "America/Los_Angeles"

// DispatchRequest describes one agent task submission. It is immutable once
// passed to Dispatch; only the polling GET is ever retried, so a task is
// submitted at most once.
type DispatchRequest struct {
	Prompt          string
	Agent           schemas.AgentType
	BrowserWindowID string

	// CustomAgentPrefix routes the prompt to a named custom agent instead of
	// Agent. The value is prepended verbatim plus a trailing space.
	CustomAgentPrefix string

	ClearChat   *bool
	GenerateGIF *bool

	// OutputSchema is a JSON Schema document. When set, the server is asked
	// to answer in that shape and the terminal response's StructuredOutput is
	// populated from its text.
	OutputSchema json.RawMessage

	PreviousRequestID       string
	ChatHistory             []schemas.ChatHistoryItem
	AdditionalContext       map[string]string
	Attachment              *schemas.FileRef
	TimeZone                string
	UserResourceCredentials schemas.UserResourceCredentials
	Variables               map[string]string

	CallbackURL     string
	CallbackSecret  string
	CallbackHeaders map[string]any

	// Timeout bounds submission plus polling. Zero means
	// DefaultDispatchTimeout.
	Timeout time.Duration
}

func (r *DispatchRequest) effectiveTimeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultDispatchTimeout
	}
	return r.Timeout
}

func (r *DispatchRequest) prefixedPrompt() string {
	if r.CustomAgentPrefix != "" {
		return r.CustomAgentPrefix + " " + r.Prompt
	}
	return r.Agent.PromptPrefix() + r.Prompt
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"jsonSchema"`
}

type dispatchBody struct {
	Prompt                  string                          `json:"prompt"`
	BrowserWindowID         string                          `json:"browserWindowId"`
	TimeZone                string                          `json:"timeZone"`
	ClearChat               *bool                           `json:"clearChat,omitempty"`
	SaveScreenshots         *bool                           `json:"saveScreenshots,omitempty"`
	ResponseFormat          *responseFormat                 `json:"responseFormat,omitempty"`
	PreviousRequestID       string                          `json:"previousRequestId,omitempty"`
	ChatHistory             []schemas.ChatHistoryItem       `json:"chatHistory,omitempty"`
	AdditionalContext       map[string]string               `json:"additionalContext,omitempty"`
	Attachment              *schemas.FileRef                `json:"attachment,omitempty"`
	UserResourceCredentials schemas.UserResourceCredentials `json:"userResourceCredentials,omitempty"`
	Variables               map[string]string               `json:"variables,omitempty"`
	CallbackURL             string                          `json:"callbackUrl,omitempty"`
	CallbackSecret          string                          `json:"callbackSecret,omitempty"`
	CallbackHeaders         map[string]any                  `json:"callbackHeaders,omitempty"`
}

type dispatchSubmitResponse struct {
	RequestID string `json:"requestId"`
}

// Dispatch submits the task and polls until the response reaches a terminal
// status or the request's timeout elapses. Exactly one submission happens per
// call. A lapsed deadline surfaces as *schemas.AgentTimeoutError carrying the
// original timeout, never as a bare transport error.
func (c *Client) Dispatch(ctx context.Context, req *DispatchRequest) (*schemas.DispatchResponse, error) {
	timeout := req.effectiveTimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tz := req.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	body := dispatchBody{
		Prompt:                  req.prefixedPrompt(),
		BrowserWindowID:         req.BrowserWindowID,
		TimeZone:                tz,
		ClearChat:               req.ClearChat,
		SaveScreenshots:         req.GenerateGIF,
		PreviousRequestID:       req.PreviousRequestID,
		ChatHistory:             req.ChatHistory,
		AdditionalContext:       req.AdditionalContext,
		Attachment:              req.Attachment,
		UserResourceCredentials: req.UserResourceCredentials,
		Variables:               req.Variables,
		CallbackURL:             req.CallbackURL,
		CallbackSecret:          req.CallbackSecret,
		CallbackHeaders:         req.CallbackHeaders,
	}
	if len(req.OutputSchema) > 0 {
		body.ResponseFormat = &responseFormat{Type: "jsonSchema", JSONSchema: req.OutputSchema}
	}

	var submitted dispatchSubmitResponse
	if _, err := c.doJSON(ctx, "POST", "/remote-dispatch", body, &submitted); err != nil {
		return nil, mapDeadline(err, timeout)
	}
	if submitted.RequestID == "" {
		return nil, fmt.Errorf("dispatch submission returned no request id")
	}
	c.logger.Debug("dispatch submitted", zap.String("request_id", submitted.RequestID))

	path := "/remote-dispatch/responses/" + submitted.RequestID
	for {
		var polled schemas.DispatchResponse
		if _, err := c.doJSON(ctx, "GET", path, nil, &polled); err != nil {
			return nil, mapDeadline(err, timeout)
		}
		polled.RequestID = submitted.RequestID

		if polled.Status.Terminal() {
			if polled.Response != nil && len(req.OutputSchema) > 0 {
				if !json.Valid([]byte(polled.Response.Text)) {
					return nil, fmt.Errorf("agent response text is not valid JSON for the requested output schema")
				}
				polled.Response.StructuredOutput = json.RawMessage(polled.Response.Text)
			}
			return &polled, nil
		}

		select {
		case <-ctx.Done():
			return nil, mapDeadline(ctx.Err(), timeout)
		case <-time.After(c.pollInterval):
		}
	}
}

// mapDeadline converts a deadline-exceeded failure from the submit/poll loop
// into the agent-timeout error; everything else passes through unchanged.
func mapDeadline(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &schemas.AgentTimeoutError{Timeout: timeout}
	}
	return err
}
