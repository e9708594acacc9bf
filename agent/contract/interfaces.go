package contract

import "context"

// Extractor maps a conversation context onto a typed parameter set.
// Implementations must not fail: on internal errors they return a
// best-effort parameter set with a confidence they can stand behind.
type Extractor interface {
	Extract(ctx context.Context, cc ConversationContext) ExtractedParams
}

// ToolExecutor invokes educational tools by identifier. Execute validates
// the input first and reports validation failures inside the returned
// ToolResult rather than as an error.
type ToolExecutor interface {
	List() []ToolDescriptor
	Validate(tool ToolName, input map[string]any) (bool, []string)
	Execute(ctx context.Context, tool ToolName, input map[string]any) ToolResult
}

// ToolDescriptor describes a registered tool for callers of List.
type ToolDescriptor struct {
	Name        ToolName `json:"name"`
	Description string   `json:"description"`
	InputSchema string   `json:"input_schema"`
}
