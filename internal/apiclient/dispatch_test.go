package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaradaAI/narada-go/api/schemas"
)

// dispatchServer answers the submit POST with a fixed request id and replays
// the given poll responses in order, repeating the last one.
func dispatchServer(t *testing.T, polls []string, onSubmit func(body map[string]any)) (http.Handler, *atomic.Int32) {
	t.Helper()
	var pollCount atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /remote-dispatch", func(w http.ResponseWriter, r *http.Request) {
		if onSubmit != nil {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			onSubmit(body)
		}
		w.Write([]byte(`{"requestId": "req-42"}`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /remote-dispatch/responses/req-42", func(w http.ResponseWriter, r *http.Request) {
		i := int(pollCount.Add(1)) - 1
		if i >= len(polls) {
			i = len(polls) - 1
		}
		w.Write([]byte(polls[i])) //nolint:errcheck
	})
	return mux, &pollCount
}

func TestDispatchPollsUntilTerminal(t *testing.T) {
	t.Parallel()

	pending := `{"status": "pending", "response": null, "usage": {"actions": 0, "credits": 0}, "createdAt": "2026-08-26T10:00:00Z"}`
	success := `{"status": "success", "response": {"text": "done"}, "usage": {"actions": 7, "credits": 2}, "createdAt": "2026-08-26T10:00:00Z", "completedAt": "2026-08-26T10:01:00Z"}`

	var submitted map[string]any
	handler, pollCount := dispatchServer(t, []string{pending, pending, success}, func(body map[string]any) {
		submitted = body
	})
	c, _ := newTestClient(t, handler)

	resp, err := c.Dispatch(context.Background(), &DispatchRequest{
		Prompt:          "Summarize this page",
		Agent:           schemas.AgentOperator,
		BrowserWindowID: "win-1",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(3), pollCount.Load())
	assert.Equal(t, "req-42", resp.RequestID)
	assert.Equal(t, schemas.StatusSuccess, resp.Status)
	require.NotNil(t, resp.Response)
	assert.Equal(t, "done", resp.Response.Text)
	assert.Nil(t, resp.Response.StructuredOutput)
	assert.Equal(t, 7, resp.Usage.Actions)

	assert.Equal(t, "/Operator Summarize this page", submitted["prompt"])
	assert.Equal(t, "win-1", submitted["browserWindowId"])
	assert.Equal(t, "America/Los_Angeles", submitted["timeZone"])
	assert.NotContains(t, submitted, "clearChat")
	assert.NotContains(t, submitted, "responseFormat")
}

func TestDispatchPopulatesStructuredOutput(t *testing.T) {
	t.Parallel()

	success := `{"status": "success", "response": {"text": "{\"count\": 3}"}, "usage": {"actions": 1, "credits": 1}, "createdAt": "2026-08-26T10:00:00Z"}`

	var submitted map[string]any
	handler, _ := dispatchServer(t, []string{success}, func(body map[string]any) {
		submitted = body
	})
	c, _ := newTestClient(t, handler)

	schema := json.RawMessage(`{"type": "object", "properties": {"count": {"type": "integer"}}}`)
	resp, err := c.Dispatch(context.Background(), &DispatchRequest{
		Prompt:          "Count the rows",
		BrowserWindowID: "win-1",
		OutputSchema:    schema,
	})
	require.NoError(t, err)

	format, ok := submitted["responseFormat"].(map[string]any)
	require.True(t, ok, "submission must carry the response format")
	assert.Equal(t, "jsonSchema", format["type"])

	require.NotNil(t, resp.Response)
	assert.JSONEq(t, `{"count": 3}`, string(resp.Response.StructuredOutput))

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Response.StructuredOutput, &out))
	assert.Equal(t, 3, out.Count)
}

func TestDispatchTimeoutCarriesBudget(t *testing.T) {
	t.Parallel()

	pending := `{"status": "pending", "response": null, "usage": {"actions": 0, "credits": 0}, "createdAt": "2026-08-26T10:00:00Z"}`
	handler, _ := dispatchServer(t, []string{pending}, nil)
	c, _ := newTestClient(t, handler)

	_, err := c.Dispatch(context.Background(), &DispatchRequest{
		Prompt:          "never finishes",
		BrowserWindowID: "win-1",
		Timeout:         50 * time.Millisecond,
	})

	var timeoutErr *schemas.AgentTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestDispatchSubmitsExactlyOnce(t *testing.T) {
	t.Parallel()

	var submits atomic.Int32
	pending := `{"status": "pending", "response": null, "usage": {"actions": 0, "credits": 0}, "createdAt": "2026-08-26T10:00:00Z"}`
	success := `{"status": "error", "response": {"text": "agent gave up"}, "usage": {"actions": 2, "credits": 1}, "createdAt": "2026-08-26T10:00:00Z"}`

	handler, _ := dispatchServer(t, []string{pending, success}, func(map[string]any) {
		submits.Add(1)
	})
	c, _ := newTestClient(t, handler)

	resp, err := c.Dispatch(context.Background(), &DispatchRequest{
		Prompt:          "fails eventually",
		BrowserWindowID: "win-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), submits.Load())
	assert.Equal(t, schemas.StatusError, resp.Status)
}

func TestDispatchOptionalFieldsOnTheWire(t *testing.T) {
	t.Parallel()

	success := `{"status": "success", "response": {"text": "ok"}, "usage": {"actions": 0, "credits": 0}, "createdAt": "2026-08-26T10:00:00Z"}`
	var submitted map[string]any
	handler, _ := dispatchServer(t, []string{success}, func(body map[string]any) {
		submitted = body
	})
	c, _ := newTestClient(t, handler)

	clearChat := true
	_, err := c.Dispatch(context.Background(), &DispatchRequest{
		Prompt:            "continue where we left off",
		BrowserWindowID:   "win-1",
		ClearChat:         &clearChat,
		PreviousRequestID: "req-41",
		ChatHistory: []schemas.ChatHistoryItem{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
		},
		Attachment: &schemas.FileRef{Key: "uploads/a.pdf"},
		Variables:  map[string]string{"ticker": "ACME"},
		TimeZone:   "Europe/Berlin",
	})
	require.NoError(t, err)

	assert.Equal(t, true, submitted["clearChat"])
	assert.Equal(t, "req-41", submitted["previousRequestId"])
	assert.Equal(t, "Europe/Berlin", submitted["timeZone"])
	assert.Len(t, submitted["chatHistory"], 2)
	attachment, ok := submitted["attachment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "uploads/a.pdf", attachment["key"])
	assert.Equal(t, map[string]any{"ticker": "ACME"}, submitted["variables"])
}

func TestDispatchCustomAgentPrefix(t *testing.T) {
	t.Parallel()

	success := `{"status": "success", "response": {"text": "ok"}, "usage": {"actions": 0, "credits": 0}, "createdAt": "2026-08-26T10:00:00Z"}`
	var submitted map[string]any
	handler, _ := dispatchServer(t, []string{success}, func(body map[string]any) {
		submitted = body
	})
	c, _ := newTestClient(t, handler)

	_, err := c.Dispatch(context.Background(), &DispatchRequest{
		Prompt:            "review the invoice",
		CustomAgentPrefix: "/InvoiceBot",
		BrowserWindowID:   "win-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "/InvoiceBot review the invoice", submitted["prompt"])
}
