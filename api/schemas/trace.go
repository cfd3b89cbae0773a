package schemas

import (
	"encoding/json"
	"fmt"
)

// -- Action Traces --
//
// A terminal dispatch response may carry a trace of what the agent executed.
// Two shapes exist on the wire: a flat operator trace ({url, action} records)
// and a workflow trace, a recursively nested list of step records
// discriminated by a "step_type" tag (loops carry nested per-iteration step
// lists). Traces are audit data, never control flow.

// OperatorAction is one record of a flat operator trace.
type OperatorAction struct {
	URL    string `json:"url"`
	Action string `json:"action"`
}

// TraceStep is one record of a workflow trace.
type TraceStep interface {
	// StepType returns the discriminant tag of this step.
	StepType() string
}

// TraceSteps is an ordered list of workflow steps; it decodes each element by
// its step_type tag.
type TraceSteps []TraceStep

// ActionTrace is either a flat operator trace or a workflow trace; exactly
// one of the two fields is populated after decoding.
type ActionTrace struct {
	Operator []OperatorAction
	Steps    TraceSteps

	raw json.RawMessage
}

func (t *ActionTrace) UnmarshalJSON(data []byte) error {
	t.raw = append(json.RawMessage(nil), data...)

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("action trace is not a list: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	var tag struct {
		StepType string `json:"step_type"`
	}
	if err := json.Unmarshal(items[0], &tag); err != nil {
		return err
	}
	if tag.StepType == "" {
		return json.Unmarshal(data, &t.Operator)
	}

	var steps TraceSteps
	if err := json.Unmarshal(data, &steps); err != nil {
		return err
	}
	t.Steps = steps
	return nil
}

// MarshalJSON re-emits the trace exactly as it was received.
func (t ActionTrace) MarshalJSON() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	if t.Operator != nil {
		return json.Marshal(t.Operator)
	}
	return json.Marshal([]TraceStep(t.Steps))
}

func (s *TraceSteps) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	steps := make(TraceSteps, 0, len(items))
	for i, item := range items {
		step, err := decodeTraceStep(item)
		if err != nil {
			return fmt.Errorf("trace step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	*s = steps
	return nil
}

// decodeTraceStep dispatches on the step_type discriminant into the matching
// variant. Step kinds without dedicated structure decode as SimpleStep so new
// server-side kinds never break parsing.
func decodeTraceStep(data []byte) (TraceStep, error) {
	var tag struct {
		StepType string `json:"step_type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	var step TraceStep
	switch tag.StepType {
	case "print":
		step = &PrintStep{}
	case "agent":
		step = &AgentStep{}
	case "for":
		step = &ForLoopStep{}
	case "while":
		step = &WhileLoopStep{}
	case "agenticSelector":
		step = &AgenticSelectorStep{}
	case "agenticMouseAction":
		step = &AgenticMouseActionStep{}
	case "runCustomAgent":
		step = &RunCustomAgentStep{}
	default:
		simple := &SimpleStep{Kind: tag.StepType}
		if err := json.Unmarshal(data, simple); err != nil {
			return nil, err
		}
		return simple, nil
	}
	if err := json.Unmarshal(data, step); err != nil {
		return nil, err
	}
	return step, nil
}

// SimpleStep covers the step kinds that carry only a URL and a description
// (goToUrl, getUrl, waitForElement, pressKeys, readGoogleSheet, start, end,
// wait, if, setVariable, getScreenshot and friends).
type SimpleStep struct {
	Kind        string `json:"step_type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (s *SimpleStep) StepType() string { return s.Kind }

// PrintStep is a message printed to the side panel chat.
type PrintStep struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

func (*PrintStep) StepType() string { return "print" }

// AgentStep is a nested agent invocation with its own trace.
type AgentStep struct {
	URL         string       `json:"url"`
	AgentType   string       `json:"agent_type"`
	ActionTrace *ActionTrace `json:"action_trace"`
	Text        string       `json:"text"`
}

func (*AgentStep) StepType() string { return "agent" }

// ForLoopStep is a counted or collection-driven loop; Iterations holds the
// steps of each executed iteration.
type ForLoopStep struct {
	URL         string       `json:"url"`
	LoopType    string       `json:"loop_type"` // nTimes, forEachRowInDataTable, forEachItemsInArray
	Description string       `json:"description"`
	Iterations  []TraceSteps `json:"iterations"`
}

func (*ForLoopStep) StepType() string { return "for" }

// WhileLoopStep is a condition-driven loop.
type WhileLoopStep struct {
	URL             string       `json:"url"`
	Condition       string       `json:"condition"`
	Iterations      []TraceSteps `json:"iterations"`
	TotalIterations int          `json:"total_iterations"`
}

func (*WhileLoopStep) StepType() string { return "while" }

// AgenticSelectorStep records a selector action, including the operator
// fallback trace when the backend escalated.
type AgenticSelectorStep struct {
	URL         string       `json:"url"`
	Description string       `json:"description"`
	ActionTrace *ActionTrace `json:"action_trace"`
}

func (*AgenticSelectorStep) StepType() string { return "agenticSelector" }

// AgenticMouseActionStep records a mouse action, including the operator
// fallback trace when the backend escalated.
type AgenticMouseActionStep struct {
	URL         string       `json:"url"`
	Description string       `json:"description"`
	ActionTrace *ActionTrace `json:"action_trace"`
}

func (*AgenticMouseActionStep) StepType() string { return "agenticMouseAction" }

// RunCustomAgentStep records a sub-workflow invocation.
type RunCustomAgentStep struct {
	URL          string `json:"url"`
	WorkflowID   string `json:"workflow_id"`
	WorkflowName string `json:"workflow_name"`
	Status       string `json:"status"` // "success" or "error"
	ErrorMessage string `json:"error_message"`
}

func (*RunCustomAgentStep) StepType() string { return "runCustomAgent" }
