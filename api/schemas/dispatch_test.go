package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaradaAI/narada-go/api/schemas"
)

func TestDispatchResponseDecode(t *testing.T) {
	t.Parallel()

	data := `{
		"requestId": "req-42",
		"status": "success",
		"response": {
			"text": "The order total is $18.50.",
			"actionTrace": [
				{"url": "https://shop.example.com/orders/42", "action": "read total"}
			]
		},
		"usage": {"actions": 4, "credits": 2},
		"createdAt": "2025-11-03T17:01:02Z",
		"completedAt": "2025-11-03T17:01:40Z"
	}`

	var resp schemas.DispatchResponse
	require.NoError(t, json.Unmarshal([]byte(data), &resp))

	assert.Equal(t, "req-42", resp.RequestID)
	assert.Equal(t, schemas.StatusSuccess, resp.Status)
	require.NotNil(t, resp.Response)
	assert.Equal(t, "The order total is $18.50.", resp.Response.Text)
	require.NotNil(t, resp.Response.ActionTrace)
	require.Len(t, resp.Response.ActionTrace.Operator, 1)
	assert.Equal(t, 4, resp.Usage.Actions)
	assert.Equal(t, 2, resp.Usage.Credits)
}

func TestDispatchResponsePendingHasNoContent(t *testing.T) {
	t.Parallel()

	var resp schemas.DispatchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"status": "pending", "response": null}`), &resp))

	assert.False(t, resp.Status.Terminal())
	assert.Nil(t, resp.Response)
}

func TestResponseStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, schemas.StatusPending.Terminal())
	assert.False(t, schemas.ResponseStatus("").Terminal())
	assert.True(t, schemas.StatusSuccess.Terminal())
	assert.True(t, schemas.StatusError.Terminal())
	assert.True(t, schemas.StatusInputRequired.Terminal())
}

func TestAgentTypePromptPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", schemas.AgentGeneralist.PromptPrefix())
	assert.Equal(t, "/Operator ", schemas.AgentOperator.PromptPrefix())
}

func TestAgentResponseDecodeStructuredOutput(t *testing.T) {
	t.Parallel()

	resp := schemas.AgentResponse{StructuredOutput: json.RawMessage(`{"total": 18.5}`)}
	var out struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, resp.DecodeStructuredOutput(&out))
	assert.Equal(t, 18.5, out.Total)

	empty := schemas.AgentResponse{}
	assert.Error(t, empty.DecodeStructuredOutput(&out))
}
