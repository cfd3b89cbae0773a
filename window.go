package narada

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/api/schemas"
	"github.com/NaradaAI/narada-go/internal/apiclient"
)

// Re-exported wire types used in the public API.
type (
	AgentType               = schemas.AgentType
	ResponseStatus          = schemas.ResponseStatus
	ChatHistoryItem         = schemas.ChatHistoryItem
	UserResourceCredentials = schemas.UserResourceCredentials
	FileRef                 = schemas.FileRef
	Usage                   = schemas.Usage
	DispatchResponse        = schemas.DispatchResponse
	AgentResponse           = schemas.AgentResponse
	ActionTrace             = schemas.ActionTrace

	SelectorAction       = schemas.SelectorAction
	Selectors            = schemas.Selectors
	AgenticSelectorValue = schemas.AgenticSelectorValue
	MouseAction          = schemas.MouseAction
	RecordedClick        = schemas.RecordedClick
	Viewport             = schemas.Viewport
)

const (
	AgentGeneralist = schemas.AgentGeneralist
	AgentOperator   = schemas.AgentOperator

	StatusPending       = schemas.StatusPending
	StatusSuccess       = schemas.StatusSuccess
	StatusError         = schemas.StatusError
	StatusInputRequired = schemas.StatusInputRequired
)

// defaultAgenticActionTimeout gives the Operator fallback room to run.
const defaultAgenticActionTimeout = 60 * time.Second

// session is the part of a BrowserWindow that differs per origin: a window we
// launched locally, a window initialized elsewhere, or a cloud session.
type session interface {
	// reinitialize reloads the extension side panel, cancelling inflight
	// operations in the window.
	reinitialize(ctx context.Context) error
	// dispose releases the session's resources (CDP connection, cloud
	// session). It does not close the browser window itself.
	dispose(ctx context.Context) error
}

// windowConn is the slice of browser.Connection the sessions rely on,
// abstracted for tests.
type windowConn interface {
	Reinitialize(ctx context.Context) error
	Close()
}

type localSession struct {
	conn windowConn
	pid  int
}

func (s *localSession) reinitialize(ctx context.Context) error { return s.conn.Reinitialize(ctx) }
func (s *localSession) dispose(context.Context) error {
	s.conn.Close()
	return nil
}

type remoteSession struct{}

func (remoteSession) reinitialize(context.Context) error {
	return fmt.Errorf("narada: reinitialize requires a window opened by this client")
}
func (remoteSession) dispose(context.Context) error { return nil }

type cloudSession struct {
	conn      windowConn
	api       *apiclient.Client
	sessionID string
}

func (s *cloudSession) reinitialize(ctx context.Context) error { return s.conn.Reinitialize(ctx) }
func (s *cloudSession) dispose(ctx context.Context) error {
	s.conn.Close()
	return s.api.StopCloudBrowserSession(ctx, s.sessionID, "completed")
}

// BrowserWindow is the stable handle for one initialized browser window. All
// operations address the window by its immutable browser window ID through
// the API; the handle itself holds no page state. Concurrent windows are
// independent; within one window, callers who care about ordering must await
// each call before issuing the next.
type BrowserWindow struct {
	id      string
	api     *apiclient.Client
	logger  *zap.Logger
	session session
}

func newBrowserWindow(api *apiclient.Client, id string, logger *zap.Logger, s session) *BrowserWindow {
	return &BrowserWindow{
		id:      id,
		api:     api,
		logger:  logger.Named("window").With(zap.String("browser_window_id", id)),
		session: s,
	}
}

// BrowserWindowID returns the window's stable identifier.
func (w *BrowserWindow) BrowserWindowID() string { return w.id }

// BrowserPID returns the launched browser's process ID, or zero for windows
// this client did not launch.
func (w *BrowserWindow) BrowserPID() int {
	if s, ok := w.session.(*localSession); ok {
		return s.pid
	}
	return 0
}

// SessionID returns the cloud session ID, or "" for non-cloud windows.
func (w *BrowserWindow) SessionID() string {
	if s, ok := w.session.(*cloudSession); ok {
		return s.sessionID
	}
	return ""
}

// DispatchRequest describes one agent task. See Dispatch.
type DispatchRequest struct {
	// Prompt is the natural-language task.
	Prompt string
	// Agent selects the handling agent; default is the generalist. Set
	// CustomAgentPrefix instead to route to a named custom agent.
	Agent             AgentType
	CustomAgentPrefix string

	ClearChat   *bool
	GenerateGIF *bool

	// OutputSchema is a JSON Schema document; when set, the agent answers in
	// that shape and the response's StructuredOutput is populated.
	OutputSchema json.RawMessage

	// PreviousRequestID continues the conversation of an earlier dispatch.
	PreviousRequestID string
	ChatHistory       []ChatHistoryItem
	AdditionalContext map[string]string
	Attachment        *FileRef
	// TimeZone for the agent's reasoning; default America/Los_Angeles.
	TimeZone                string
	UserResourceCredentials UserResourceCredentials
	Variables               map[string]string

	CallbackURL     string
	CallbackSecret  string
	CallbackHeaders map[string]any

	// Timeout bounds submission plus polling; default 1000s.
	Timeout time.Duration
}

func (r *DispatchRequest) toWire(windowID string) *apiclient.DispatchRequest {
	return &apiclient.DispatchRequest{
		Prompt:                  r.Prompt,
		Agent:                   r.Agent,
		CustomAgentPrefix:       r.CustomAgentPrefix,
		BrowserWindowID:         windowID,
		ClearChat:               r.ClearChat,
		GenerateGIF:             r.GenerateGIF,
		OutputSchema:            r.OutputSchema,
		PreviousRequestID:       r.PreviousRequestID,
		ChatHistory:             r.ChatHistory,
		AdditionalContext:       r.AdditionalContext,
		Attachment:              r.Attachment,
		TimeZone:                r.TimeZone,
		UserResourceCredentials: r.UserResourceCredentials,
		Variables:               r.Variables,
		CallbackURL:             r.CallbackURL,
		CallbackSecret:          r.CallbackSecret,
		CallbackHeaders:         r.CallbackHeaders,
		Timeout:                 r.Timeout,
	}
}

// Dispatch submits an agent task and polls until it reaches a terminal
// status. This is the low-level call; most callers want Agent.
func (w *BrowserWindow) Dispatch(ctx context.Context, req *DispatchRequest) (*DispatchResponse, error) {
	return w.api.Dispatch(ctx, req.toWire(w.id))
}

// Agent invokes an agent in this window's side panel chat and returns the
// simplified terminal response.
func (w *BrowserWindow) Agent(ctx context.Context, req *DispatchRequest) (*AgentResponse, error) {
	resp, err := w.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, fmt.Errorf("narada: terminal dispatch response has no content")
	}
	return &AgentResponse{
		RequestID:        resp.RequestID,
		Status:           resp.Status,
		Text:             resp.Response.Text,
		StructuredOutput: resp.Response.StructuredOutput,
		Usage:            resp.Usage,
		ActionTrace:      resp.Response.ActionTrace,
	}, nil
}

// AgenticSelector performs action on the element matched by selectors,
// escalating to the Operator agent with fallbackQuery when the selectors do
// not resolve a unique element. For value-producing actions (get text,
// get property) the result carries the value; otherwise Value is nil.
func (w *BrowserWindow) AgenticSelector(ctx context.Context, action SelectorAction, selectors Selectors, fallbackQuery string, timeout time.Duration) (*AgenticSelectorValue, error) {
	if timeout <= 0 {
		timeout = defaultAgenticActionTimeout
	}
	data, err := w.api.RunExtensionAction(ctx, w.id, schemas.AgenticSelectorRequest{
		Action:                action,
		Selectors:             selectors,
		FallbackOperatorQuery: fallbackQuery,
	}, timeout)
	if err != nil {
		return nil, err
	}

	if !action.ReturnsValue() || data == "" {
		return &AgenticSelectorValue{}, nil
	}
	var value AgenticSelectorValue
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, fmt.Errorf("decoding selector action result: %w", err)
	}
	return &value, nil
}

// AgenticMouseAction performs action at the recorded coordinates, escalating
// to the Operator agent with fallbackQuery when the replay fails. resizeWindow
// restores the recorded viewport before clicking.
func (w *BrowserWindow) AgenticMouseAction(ctx context.Context, action MouseAction, click RecordedClick, fallbackQuery string, resizeWindow bool, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultAgenticActionTimeout
	}
	_, err := w.api.RunExtensionAction(ctx, w.id, schemas.AgenticMouseActionRequest{
		Action:                action,
		RecordedClick:         click,
		FallbackOperatorQuery: fallbackQuery,
		ResizeWindow:          resizeWindow,
	}, timeout)
	return err
}

// Close gracefully closes the browser window.
func (w *BrowserWindow) Close(ctx context.Context, timeout time.Duration) error {
	_, err := w.api.RunExtensionAction(ctx, w.id, schemas.CloseWindowRequest{}, timeout)
	return err
}

// GoToURL navigates the window's active page, or opens the URL in a new tab.
func (w *BrowserWindow) GoToURL(ctx context.Context, url string, newTab bool, timeout time.Duration) error {
	_, err := w.api.RunExtensionAction(ctx, w.id, schemas.GoToURLRequest{URL: url, NewTab: newTab}, timeout)
	return err
}

// PrintMessage prints a message in the extension side panel chat.
func (w *BrowserWindow) PrintMessage(ctx context.Context, message string, timeout time.Duration) error {
	_, err := w.api.RunExtensionAction(ctx, w.id, schemas.PrintMessageRequest{Message: message}, timeout)
	return err
}

// ReadGoogleSheet reads a range of cells from a Google Sheet using the
// window's signed-in Google session.
func (w *BrowserWindow) ReadGoogleSheet(ctx context.Context, spreadsheetID, cellRange string, timeout time.Duration) (*schemas.ReadGoogleSheetResponse, error) {
	var out schemas.ReadGoogleSheetResponse
	if err := w.runDecodedAction(ctx, schemas.ReadGoogleSheetRequest{SpreadsheetID: spreadsheetID, Range: cellRange}, timeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WriteGoogleSheet writes a range of cells to a Google Sheet.
func (w *BrowserWindow) WriteGoogleSheet(ctx context.Context, spreadsheetID, cellRange string, values [][]string, timeout time.Duration) error {
	_, err := w.api.RunExtensionAction(ctx, w.id, schemas.WriteGoogleSheetRequest{
		SpreadsheetID: spreadsheetID,
		Range:         cellRange,
		Values:        values,
	}, timeout)
	return err
}

// GetFullHTML returns the full HTML of the window's active page.
func (w *BrowserWindow) GetFullHTML(ctx context.Context, timeout time.Duration) (*schemas.GetFullHTMLResponse, error) {
	var out schemas.GetFullHTMLResponse
	if err := w.runDecodedAction(ctx, schemas.GetFullHTMLRequest{}, timeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSimplifiedHTML returns a reduced HTML view of the active page.
func (w *BrowserWindow) GetSimplifiedHTML(ctx context.Context, timeout time.Duration) (*schemas.GetSimplifiedHTMLResponse, error) {
	var out schemas.GetSimplifiedHTMLResponse
	if err := w.runDecodedAction(ctx, schemas.GetSimplifiedHTMLRequest{}, timeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetScreenshot captures the window as an image.
func (w *BrowserWindow) GetScreenshot(ctx context.Context, timeout time.Duration) (*schemas.GetScreenshotResponse, error) {
	var out schemas.GetScreenshotResponse
	if err := w.runDecodedAction(ctx, schemas.GetScreenshotRequest{}, timeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetURL returns the URL of the window's active page.
func (w *BrowserWindow) GetURL(ctx context.Context, timeout time.Duration) (string, error) {
	var out schemas.GetURLResponse
	if err := w.runDecodedAction(ctx, schemas.GetURLRequest{}, timeout, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// UploadFile uploads an attachment for a subsequent Agent call in this
// window.
func (w *BrowserWindow) UploadFile(ctx context.Context, filename string, contents io.Reader) (*FileRef, error) {
	return w.api.UploadFile(ctx, filename, contents)
}

// Reinitialize reloads the extension side panel, cancelling any inflight
// operations in this window. Only available for windows this client
// initialized over the debugging protocol.
func (w *BrowserWindow) Reinitialize(ctx context.Context) error {
	return w.session.reinitialize(ctx)
}

// Disconnect releases the window's client-side resources: the DevTools
// connection for local windows, the cloud session for cloud windows. The
// browser window itself stays open; use Close for that.
func (w *BrowserWindow) Disconnect(ctx context.Context) error {
	return w.session.dispose(ctx)
}

func (w *BrowserWindow) runDecodedAction(ctx context.Context, action schemas.ExtensionAction, timeout time.Duration, out any) error {
	data, err := w.api.RunExtensionAction(ctx, w.id, action, timeout)
	if err != nil {
		return err
	}
	if data == "" {
		return fmt.Errorf("narada: %s returned no data", action.ActionName())
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decoding %s result: %w", action.ActionName(), err)
	}
	return nil
}
