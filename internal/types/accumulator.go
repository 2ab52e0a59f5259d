package types

// toolCallBuilder accumulates one tool call across successive deltas.
type toolCallBuilder struct {
	id        string
	name      string
	arguments string
}

// ToolCallAccumulator applies a sequence of ToolCallDelta values,
// indexed by position, into a finished list of ToolCall values.
//
// Each tool-delta is applied to a list indexed by Index; the list
// grows as needed with empty builders. For each builder, id is
// replaced when non-empty, function name is replaced when non-empty,
// and arguments are concatenated. Builders with an empty id are
// dropped on Finalize: some providers emit phantom entries when a
// tool-call index is referenced before an id ever arrives.
type ToolCallAccumulator struct {
	calls []toolCallBuilder
}

// Apply folds one delta into the accumulator.
func (a *ToolCallAccumulator) Apply(delta ToolCallDelta) {
	for len(a.calls) <= delta.Index {
		a.calls = append(a.calls, toolCallBuilder{})
	}
	b := &a.calls[delta.Index]
	if delta.HasID && delta.ID != "" {
		b.id = delta.ID
	}
	if delta.HasFunctionName && delta.FunctionName != "" {
		b.name = delta.FunctionName
	}
	if delta.HasFunctionArgs {
		b.arguments += delta.FunctionArguments
	}
}

// Finalize drains the accumulator into a slice of completed tool calls.
func (a *ToolCallAccumulator) Finalize() []ToolCall {
	var calls []ToolCall
	for _, b := range a.calls {
		if b.id == "" {
			continue
		}
		calls = append(calls, ToolCall{
			ID:        b.id,
			Type:      "function",
			Name:      b.name,
			Arguments: b.arguments,
		})
	}
	a.calls = nil
	return calls
}
