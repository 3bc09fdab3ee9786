package agent

import "errors"

// Sentinel errors for turn-level failures. Tool-level domain failures never
// surface as Go errors; they become structured results (see ToolError).
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrPersistenceFailure = errors.New("persistence failure")
)

// Stable error codes carried inside structured tool results
const (
	CodeNotFound          = "not_found"
	CodeInvalidParameters = "invalid_parameters"
	CodeUnknownTool       = "unknown_tool"
	CodeInternal          = "internal"
)

// ToolError is a structured, user-translatable tool failure
type ToolError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *ToolError) Error() string {
	return e.Code + ": " + e.Message
}
