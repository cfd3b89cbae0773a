package schemas

import (
	"encoding/json"
	"fmt"
)

// -- Remote Dispatch Wire Types --
// Shapes exchanged with POST /remote-dispatch and its polling endpoint.

// AgentType selects which agent handles a dispatched prompt. The zero value
// is the generalist.
type AgentType int

const (
	AgentGeneralist AgentType = iota
	AgentOperator
)

// PromptPrefix returns the prefix prepended to the user prompt to route it to
// the selected agent.
func (a AgentType) PromptPrefix() string {
	switch a {
	case AgentOperator:
		return "/Operator "
	default:
		return ""
	}
}

// ResponseStatus is the lifecycle state of a dispatched request. It moves
// from pending to exactly one terminal state and never changes afterwards.
type ResponseStatus string

const (
	StatusPending       ResponseStatus = "pending"
	StatusSuccess       ResponseStatus = "success"
	StatusError         ResponseStatus = "error"
	StatusInputRequired ResponseStatus = "input-required"
)

// Terminal reports whether the status is final.
func (s ResponseStatus) Terminal() bool {
	return s != StatusPending && s != ""
}

// ChatHistoryItem is one prior conversation turn supplied with a dispatch.
type ChatHistoryItem struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// UserResourceCredentials carries per-resource credentials forwarded to the
// agent, keyed by resource name (e.g. "salesforce", "jira").
type UserResourceCredentials map[string]map[string]string

// FileRef identifies a previously uploaded attachment.
type FileRef struct {
	Key string `json:"key"`
}

// PresignedPost is the upload target returned by the presigned-post endpoint.
// The client POSTs the file as multipart form data with these fields.
type PresignedPost struct {
	URL    string         `json:"url"`
	Fields map[string]any `json:"fields"`
}

// Usage reports the cost of a dispatched request.
type Usage struct {
	Actions int `json:"actions"`
	Credits int `json:"credits"`
}

// ResponseContent is the payload of a terminal dispatch response.
// StructuredOutput is populated client-side from Text when the request
// supplied an output schema; the API itself never returns it.
type ResponseContent struct {
	Text             string          `json:"text"`
	StructuredOutput json.RawMessage `json:"structuredOutput,omitempty"`
	ActionTrace      *ActionTrace    `json:"actionTrace,omitempty"`
}

// DispatchResponse is the full polled state of a dispatched request. Once the
// status is terminal the content is frozen; repeated polls return identical
// data.
type DispatchResponse struct {
	RequestID   string           `json:"requestId"`
	Status      ResponseStatus   `json:"status"`
	Response    *ResponseContent `json:"response"`
	Usage       Usage            `json:"usage"`
	CreatedAt   string           `json:"createdAt"`
	CompletedAt string           `json:"completedAt,omitempty"`
}

// AgentResponse is the simplified view returned by the high-level Agent call.
type AgentResponse struct {
	RequestID        string
	Status           ResponseStatus
	Text             string
	StructuredOutput json.RawMessage
	Usage            Usage
	ActionTrace      *ActionTrace
}

// DecodeStructuredOutput unmarshals the structured output into v. It fails if
// the request did not ask for structured output.
func (r *AgentResponse) DecodeStructuredOutput(v any) error {
	if len(r.StructuredOutput) == 0 {
		return fmt.Errorf("response has no structured output")
	}
	return json.Unmarshal(r.StructuredOutput, v)
}

// -- Cloud Browser Session Wire Types --

// CloudBrowserSession is returned by create-cloud-browser-session. The CDP
// WebSocket URL is pre-authorized for the session's lifetime.
type CloudBrowserSession struct {
	SessionID       string            `json:"session_id"`
	CDPWebSocketURL string            `json:"cdp_websocket_url"`
	LoginURL        string            `json:"login_url"`
	CDPAuthHeaders  map[string]string `json:"cdp_auth_headers"`
}

// -- SDK Config Wire Types --

// SDKPackageConfig is the server-declared compatibility floor for one SDK
// package.
type SDKPackageConfig struct {
	MinRequiredVersion string `json:"min_required_version"`
}

// SDKConfig is the response of GET /sdk/config.
type SDKConfig struct {
	Packages map[string]SDKPackageConfig `json:"packages"`
}
