package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ToolResult is the outcome of one dispatched tool call. Exactly one of Data
// and Err is set.
type ToolResult struct {
	ToolName string
	Params   json.RawMessage
	Data     any
	Err      *ToolError
}

// OK reports whether the call succeeded
func (r *ToolResult) OK() bool {
	return r.Err == nil
}

// Payload serializes the result the way it is recorded and fed back to the
// reasoning provider: {"success":true,...} or {"success":false,"error":code,
// "message":...}.
func (r *ToolResult) Payload() json.RawMessage {
	var out []byte
	var err error
	if r.Err != nil {
		out, err = json.Marshal(map[string]any{
			"success": false,
			"error":   r.Err.Code,
			"message": r.Err.Message,
		})
	} else {
		out, err = json.Marshal(map[string]any{
			"success": true,
			"result":  r.Data,
		})
	}
	if err != nil {
		// Result payloads are plain maps and slices; this should not happen.
		return json.RawMessage(`{"success":false,"error":"internal","message":"failed to encode result"}`)
	}
	return out
}

// Dispatcher validates and executes single tool calls against the registry.
// Every read and write is scoped to the calling user; a dispatch is
// self-contained and replayable.
type Dispatcher struct {
	registry *Registry
	validate *validator.Validate
}

// NewDispatcher creates a new dispatcher over the given registry
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		validate: validator.New(),
	}
}

// Registry returns the underlying tool catalog
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Execute runs one named tool call for the given user. Domain failures are
// returned as structured results, never as errors that escape to the caller.
func (d *Dispatcher) Execute(ctx context.Context, userID uuid.UUID, toolName string, rawParams json.RawMessage) *ToolResult {
	result := &ToolResult{ToolName: toolName, Params: normalizeParams(rawParams)}

	spec, ok := d.registry.Get(toolName)
	if !ok {
		result.Err = &ToolError{
			Code:    CodeUnknownTool,
			Message: fmt.Sprintf("unknown tool: %s", toolName),
		}
		return result
	}

	params := spec.NewParams()
	if len(rawParams) > 0 {
		if err := json.Unmarshal(rawParams, params); err != nil {
			result.Err = decodeError(err)
			return result
		}
	}

	if err := d.validate.Struct(params); err != nil {
		result.Err = validationError(err)
		return result
	}

	data, toolErr := d.safeExecute(ctx, spec, userID, params)
	if toolErr != nil {
		result.Err = toolErr
		return result
	}

	result.Data = data
	return result
}

// safeExecute guards the tool boundary: a panicking executor becomes a
// structured internal error instead of taking down the request.
func (d *Dispatcher) safeExecute(ctx context.Context, spec *ToolSpec, userID uuid.UUID, params any) (data any, toolErr *ToolError) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("tool", spec.Name).
				Any("panic", r).
				Msg("tool executor panicked")
			data = nil
			toolErr = &ToolError{Code: CodeInternal, Message: "the operation failed unexpectedly"}
		}
	}()
	return spec.Execute(ctx, userID, params)
}

func normalizeParams(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}

func decodeError(err error) *ToolError {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
		return &ToolError{
			Code:    CodeInvalidParameters,
			Message: fmt.Sprintf("parameter %q has the wrong type", typeErr.Field),
		}
	}
	return &ToolError{
		Code:    CodeInvalidParameters,
		Message: "parameters are not valid JSON",
	}
}

func validationError(err error) *ToolError {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		e := validationErrors[0]
		switch e.Tag() {
		case "required":
			return &ToolError{
				Code:    CodeInvalidParameters,
				Message: fmt.Sprintf("missing required parameter %q", fieldName(e)),
			}
		case "oneof":
			return &ToolError{
				Code:    CodeInvalidParameters,
				Message: fmt.Sprintf("parameter %q must be one of: %s", fieldName(e), e.Param()),
			}
		default:
			return &ToolError{
				Code:    CodeInvalidParameters,
				Message: fmt.Sprintf("parameter %q is invalid", fieldName(e)),
			}
		}
	}
	return &ToolError{Code: CodeInvalidParameters, Message: err.Error()}
}

// fieldName prefers the json tag name the model actually sees
func fieldName(e validator.FieldError) string {
	switch e.Field() {
	case "TaskID":
		return "task_id"
	case "DueDate":
		return "due_date"
	default:
		return toSnake(e.Field())
	}
}

func toSnake(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
