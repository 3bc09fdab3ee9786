package agent

import (
	"context"

	"github.com/Rrens/chat-to-task/internal/llm"
	"github.com/google/uuid"
)

// ToolSpec declares one operation in the closed tool catalog.
//
// NewParams returns a fresh typed parameter struct (json + validate tags);
// the dispatcher decodes and validates raw arguments into it before Execute
// runs. Execute receives the validated struct and must return either a result
// payload or a structured ToolError — it never panics across this boundary
// and never calls other tools.
type ToolSpec struct {
	Name        string
	Description string
	Idempotent  bool
	Parameters  map[string]any
	NewParams   func() any
	Execute     func(ctx context.Context, userID uuid.UUID, params any) (any, *ToolError)
}

// Registry is the static catalog of named operations. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	specs map[string]*ToolSpec
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*ToolSpec)}
}

// Register adds a tool spec to the catalog
func (r *Registry) Register(spec *ToolSpec) {
	if _, exists := r.specs[spec.Name]; !exists {
		r.order = append(r.order, spec.Name)
	}
	r.specs[spec.Name] = spec
}

// Get returns a tool spec by name
func (r *Registry) Get(name string) (*ToolSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns the registered tool names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Catalog returns the tool descriptions handed to the reasoning provider,
// in registration order.
func (r *Registry) Catalog() []llm.Tool {
	tools := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		spec := r.specs[name]
		tools = append(tools, llm.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Parameters,
		})
	}
	return tools
}
