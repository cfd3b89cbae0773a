package schemas

import "encoding/json"

// -- Extension Action Wire Types --
//
// Each action has a deterministic, hand-specified wire encoding. The action
// payload travels inside POST /extension-actions as the "action" field; the
// backend forwards it to the extension and relays {status, error?, data?}
// back. Field casing is part of the protocol: action bodies use camelCase
// keys while the request envelope keeps snake_case keys.

// ExtensionAction is the closed set of low-level actions the extension can
// execute. Implementations own their exact wire form via MarshalJSON.
type ExtensionAction interface {
	json.Marshaler

	// ActionName is the protocol name carried in the "name" field.
	ActionName() string
}

// ExtensionActionResponse is the backend's relay of the extension's result.
// Data, when present, is a serialized JSON payload specific to the action.
type ExtensionActionResponse struct {
	Status string `json:"status"` // "success" or "error"
	Error  string `json:"error,omitempty"`
	Data   string `json:"data,omitempty"`
}

// -- Agentic Selector Actions --
//
// A selector action names a primary deterministic strategy (the selector bag)
// and is always paired with a natural-language fallback query. If the
// selectors fail to resolve exactly one element the backend escalates to the
// Operator agent using the fallback query; that escalation is a server-side
// contract, the client only supplies both strategies.

// SelectorAction is one operation performed on the matched element.
type SelectorAction interface {
	json.Marshaler

	// ReturnsValue reports whether the action produces response data.
	ReturnsValue() bool
}

type SelectorClick struct{}

func (SelectorClick) ReturnsValue() bool { return false }
func (SelectorClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "click"})
}

type SelectorRightClick struct{}

func (SelectorRightClick) ReturnsValue() bool { return false }
func (SelectorRightClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "rightClick"})
}

type SelectorDoubleClick struct{}

func (SelectorDoubleClick) ReturnsValue() bool { return false }
func (SelectorDoubleClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "doubleClick"})
}

type SelectorHover struct{}

func (SelectorHover) ReturnsValue() bool { return false }
func (SelectorHover) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "hover"})
}

// SelectorFill types Value into the matched element.
type SelectorFill struct {
	Value string
}

func (SelectorFill) ReturnsValue() bool { return false }
func (a SelectorFill) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "fill", "value": a.Value})
}

// SelectorSelectOptionByIndex picks the Index-th option of a select element.
type SelectorSelectOptionByIndex struct {
	Index int
}

func (SelectorSelectOptionByIndex) ReturnsValue() bool { return false }
func (a SelectorSelectOptionByIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "selectOptionByIndex", "value": a.Index})
}

// SelectorSelectOptionByValue picks the option whose value equals Value.
type SelectorSelectOptionByValue struct {
	Value string
}

func (SelectorSelectOptionByValue) ReturnsValue() bool { return false }
func (a SelectorSelectOptionByValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "selectOptionByValue", "value": a.Value})
}

type SelectorGetText struct{}

func (SelectorGetText) ReturnsValue() bool { return true }
func (SelectorGetText) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "getText"})
}

// SelectorGetProperty reads the named DOM property of the matched element.
type SelectorGetProperty struct {
	PropertyName string
}

func (SelectorGetProperty) ReturnsValue() bool { return true }
func (a SelectorGetProperty) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "getProperty", "propertyName": a.PropertyName})
}

// Selectors is the deterministic element-matching strategy. Only the fields
// that are set participate in matching; each present field is wrapped as
// {"<key>": {"value": <v>}} on the wire.
type Selectors struct {
	ID          string
	DataTestID  string
	Name        string
	AriaLabel   string
	Role        string
	Type        string
	TextContent string
	TagName     string
	ClassName   string
	DOMPath     string
	XPath       string
}

func (s Selectors) MarshalJSON() ([]byte, error) {
	type wrapped struct {
		Value string `json:"value"`
	}
	out := make(map[string]wrapped)
	set := func(key, value string) {
		if value != "" {
			out[key] = wrapped{Value: value}
		}
	}
	set("id", s.ID)
	set("dataTestId", s.DataTestID)
	set("name", s.Name)
	set("ariaLabel", s.AriaLabel)
	set("role", s.Role)
	set("type", s.Type)
	set("textContent", s.TextContent)
	set("tagName", s.TagName)
	set("className", s.ClassName)
	set("domPath", s.DOMPath)
	set("xpath", s.XPath)
	return json.Marshal(out)
}

// AgenticSelectorRequest performs Action on the element matched by Selectors,
// falling back to FallbackOperatorQuery when matching fails.
type AgenticSelectorRequest struct {
	Action                SelectorAction
	Selectors             Selectors
	FallbackOperatorQuery string
}

func (AgenticSelectorRequest) ActionName() string { return "agentic_selector" }

func (r AgenticSelectorRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":                    r.ActionName(),
		"action":                  r.Action,
		"selectors":               r.Selectors,
		"fallback_operator_query": r.FallbackOperatorQuery,
	})
}

// AgenticSelectorValue is the decoded data of a get_text or get_property
// selector action. Value is nil when the action produced nothing.
type AgenticSelectorValue struct {
	Value *string `json:"value"`
}

// -- Agentic Mouse Actions --

// MouseAction is one operation performed at recorded coordinates.
type MouseAction interface {
	json.Marshaler

	mouseAction()
}

type MouseClick struct{}

func (MouseClick) mouseAction() {}
func (MouseClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "click"})
}

type MouseRightClick struct{}

func (MouseRightClick) mouseAction() {}
func (MouseRightClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "rightClick"})
}

type MouseDoubleClick struct{}

func (MouseDoubleClick) mouseAction() {}
func (MouseDoubleClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "doubleClick"})
}

// MouseFill clicks the location and types Text, optionally pressing Enter.
type MouseFill struct {
	Text       string
	PressEnter bool
}

func (MouseFill) mouseAction() {}
func (a MouseFill) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "fill", "text": a.Text, "pressEnter": a.PressEnter})
}

// MouseScroll scrolls by the given deltas at the location.
type MouseScroll struct {
	Horizontal int
	Vertical   int
}

func (MouseScroll) mouseAction() {}
func (a MouseScroll) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"type": "scroll", "deltaX": a.Horizontal, "deltaY": a.Vertical})
}

// Viewport is the window size at the time a click was recorded.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RecordedClick is an exact pixel location plus the viewport it was recorded
// in, so the backend can rescale when the window size differs.
type RecordedClick struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Viewport Viewport `json:"viewport"`
}

// AgenticMouseActionRequest performs Action at RecordedClick, falling back to
// FallbackOperatorQuery when the click cannot be replayed.
type AgenticMouseActionRequest struct {
	Action                MouseAction
	RecordedClick         RecordedClick
	FallbackOperatorQuery string
	ResizeWindow          bool
}

func (AgenticMouseActionRequest) ActionName() string { return "agentic_mouse_action" }

func (r AgenticMouseActionRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":                    r.ActionName(),
		"action":                  r.Action,
		"recorded_click":          r.RecordedClick,
		"resize_window":           r.ResizeWindow,
		"fallback_operator_query": r.FallbackOperatorQuery,
	})
}

// -- Simple Actions --

type CloseWindowRequest struct{}

func (CloseWindowRequest) ActionName() string { return "close_window" }
func (r CloseWindowRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": r.ActionName()})
}

type GoToURLRequest struct {
	URL    string
	NewTab bool
}

func (GoToURLRequest) ActionName() string { return "go_to_url" }
func (r GoToURLRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": r.ActionName(), "url": r.URL, "new_tab": r.NewTab})
}

type PrintMessageRequest struct {
	Message string
}

func (PrintMessageRequest) ActionName() string { return "print_message" }
func (r PrintMessageRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": r.ActionName(), "message": r.Message})
}

type ReadGoogleSheetRequest struct {
	SpreadsheetID string
	Range         string
}

func (ReadGoogleSheetRequest) ActionName() string { return "read_google_sheet" }
func (r ReadGoogleSheetRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":           r.ActionName(),
		"spreadsheet_id": r.SpreadsheetID,
		"range":          r.Range,
	})
}

type ReadGoogleSheetResponse struct {
	Values [][]string `json:"values"`
}

type WriteGoogleSheetRequest struct {
	SpreadsheetID string
	Range         string
	Values        [][]string
}

func (WriteGoogleSheetRequest) ActionName() string { return "write_google_sheet" }
func (r WriteGoogleSheetRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":           r.ActionName(),
		"spreadsheet_id": r.SpreadsheetID,
		"range":          r.Range,
		"values":         r.Values,
	})
}

type GetFullHTMLRequest struct{}

func (GetFullHTMLRequest) ActionName() string { return "get_full_html" }
func (r GetFullHTMLRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": r.ActionName()})
}

type GetFullHTMLResponse struct {
	HTML string `json:"html"`
}

type GetSimplifiedHTMLRequest struct{}

func (GetSimplifiedHTMLRequest) ActionName() string { return "get_simplified_html" }
func (r GetSimplifiedHTMLRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": r.ActionName()})
}

type GetSimplifiedHTMLResponse struct {
	HTML string `json:"html"`
}

type GetScreenshotRequest struct{}

func (GetScreenshotRequest) ActionName() string { return "get_screenshot" }
func (r GetScreenshotRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": r.ActionName()})
}

type GetScreenshotResponse struct {
	Base64Content string `json:"base64_content"`
	Name          string `json:"name"`
	MimeType      string `json:"mime_type"`
	Timestamp     string `json:"timestamp"`
}

type GetURLRequest struct{}

func (GetURLRequest) ActionName() string { return "get_url" }
func (r GetURLRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": r.ActionName()})
}

type GetURLResponse struct {
	URL string `json:"url"`
}
