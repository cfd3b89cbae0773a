package narada

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaradaAI/narada-go/api/schemas"
)

func TestAgentReturnsSimplifiedResponse(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /remote-dispatch", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/Operator Extract the order total", body["prompt"])
		assert.Equal(t, "win-1", body["browserWindowId"])
		w.Write([]byte(`{"requestId": "req-1"}`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /remote-dispatch/responses/req-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "success",
			"response": {
				"text": "The total is $42",
				"actionTrace": [
					{"url": "https://shop.example.com/orders", "action": "click('Order #7')"}
				]
			},
			"usage": {"actions": 3, "credits": 1},
			"createdAt": "2026-08-26T10:00:00Z",
			"completedAt": "2026-08-26T10:00:30Z"
		}`)) //nolint:errcheck
	})

	c, _ := newTestServerClient(t, mux)
	w := c.ConnectToBrowserWindow("win-1")

	resp, err := w.Agent(context.Background(), &DispatchRequest{
		Prompt: "Extract the order total",
		Agent:  AgentOperator,
	})
	require.NoError(t, err)

	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "The total is $42", resp.Text)
	assert.Equal(t, 3, resp.Usage.Actions)
	require.NotNil(t, resp.ActionTrace)
	require.Len(t, resp.ActionTrace.Operator, 1)
	assert.Equal(t, "https://shop.example.com/orders", resp.ActionTrace.Operator[0].URL)
}

func TestAgenticSelectorDecodesValue(t *testing.T) {
	t.Parallel()

	var envelope map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /extension-actions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		w.Write([]byte(`{"status": "success", "data": "{\"value\": \"in stock\"}"}`)) //nolint:errcheck
	})

	c, _ := newTestServerClient(t, mux)
	w := c.ConnectToBrowserWindow("win-1")

	result, err := w.AgenticSelector(context.Background(),
		schemas.SelectorGetText{},
		Selectors{ID: "availability", TagName: "span"},
		"read the availability label",
		0,
	)
	require.NoError(t, err)
	require.NotNil(t, result.Value)
	assert.Equal(t, "in stock", *result.Value)

	// Default timeout applies when none was given.
	assert.Equal(t, float64(60), envelope["timeout"])

	action, ok := envelope["action"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "agentic_selector", action["name"])
	assert.Equal(t, "read the availability label", action["fallback_operator_query"])
	assert.JSONEq(t, `{"type": "getText"}`, mustJSON(t, action["action"]))
	assert.JSONEq(t, `{"id": {"value": "availability"}, "tagName": {"value": "span"}}`,
		mustJSON(t, action["selectors"]))
}

func TestAgenticSelectorNonValueAction(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /extension-actions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success"}`)) //nolint:errcheck
	})

	c, _ := newTestServerClient(t, mux)
	w := c.ConnectToBrowserWindow("win-1")

	result, err := w.AgenticSelector(context.Background(),
		schemas.SelectorClick{}, Selectors{ID: "submit"}, "click the submit button", 0)
	require.NoError(t, err)
	assert.Nil(t, result.Value)
}

func TestAgenticMouseActionEnvelope(t *testing.T) {
	t.Parallel()

	var envelope map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /extension-actions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		w.Write([]byte(`{"status": "success"}`)) //nolint:errcheck
	})

	c, _ := newTestServerClient(t, mux)
	w := c.ConnectToBrowserWindow("win-1")

	err := w.AgenticMouseAction(context.Background(),
		schemas.MouseFill{Text: "hello", PressEnter: true},
		RecordedClick{X: 100, Y: 200, Viewport: Viewport{Width: 1280, Height: 800}},
		"type hello into the search box",
		true,
		30*time.Second,
	)
	require.NoError(t, err)

	action, ok := envelope["action"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "agentic_mouse_action", action["name"])
	assert.Equal(t, true, action["resize_window"])
	assert.JSONEq(t, `{"type": "fill", "text": "hello", "pressEnter": true}`, mustJSON(t, action["action"]))
	assert.JSONEq(t, `{"x": 100, "y": 200, "viewport": {"width": 1280, "height": 800}}`,
		mustJSON(t, action["recorded_click"]))
}

func TestGetURL(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /extension-actions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "data": "{\"url\": \"https://example.com/cart\"}"}`)) //nolint:errcheck
	})

	c, _ := newTestServerClient(t, mux)
	w := c.ConnectToBrowserWindow("win-1")

	url, err := w.GetURL(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cart", url)
}

func TestReadGoogleSheet(t *testing.T) {
	t.Parallel()

	var envelope map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /extension-actions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		w.Write([]byte(`{"status": "success", "data": "{\"values\": [[\"a\", \"b\"], [\"c\", \"d\"]]}"}`)) //nolint:errcheck
	})

	c, _ := newTestServerClient(t, mux)
	w := c.ConnectToBrowserWindow("win-1")

	resp, err := w.ReadGoogleSheet(context.Background(), "sheet-1", "A1:B2", 0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, resp.Values)

	action, ok := envelope["action"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "read_google_sheet", action["name"])
	assert.Equal(t, "sheet-1", action["spreadsheet_id"])
	assert.Equal(t, "A1:B2", action["range"])
}

func TestCloudSessionDisposeStopsSession(t *testing.T) {
	t.Parallel()

	var stopped map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /cloud-browser/stop-cloud-browser-session", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&stopped))
		w.Write([]byte(`{}`)) //nolint:errcheck
	})

	c, _ := newTestServerClient(t, mux)
	w := newBrowserWindow(c.api, "win-cloud", c.logger, &cloudSession{
		conn:      stubConn{},
		api:       c.api,
		sessionID: "sess-3",
	})

	assert.Equal(t, "sess-3", w.SessionID())
	require.NoError(t, w.Disconnect(context.Background()))
	assert.Equal(t, "sess-3", stopped["session_id"])
	assert.Equal(t, "completed", stopped["status"])
}

type stubConn struct{}

func (stubConn) Reinitialize(context.Context) error { return nil }
func (stubConn) Close()                             {}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
