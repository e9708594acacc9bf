package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

// Backend performs the actual tool call once the input has passed schema
// validation. Implementations must be safe for concurrent use.
type Backend interface {
	Execute(ctx context.Context, tool contractx.ToolName, input map[string]any) (map[string]any, error)
}

type registration struct {
	desc   contractx.ToolDescriptor
	schema *jsonschema.Schema
}

// Registry validates and dispatches tool calls. Schemas are compiled once
// at construction; Validate and Execute only read shared state afterwards.
type Registry struct {
	backend Backend
	tools   map[contractx.ToolName]registration
	order   []contractx.ToolName
}

var _ contractx.ToolExecutor = (*Registry)(nil)

func NewRegistry(backend Backend) (*Registry, error) {
	if backend == nil {
		return nil, errors.New("tool backend is required")
	}

	r := &Registry{
		backend: backend,
		tools:   make(map[contractx.ToolName]registration),
	}
	for _, reg := range []struct {
		name        contractx.ToolName
		description string
		schema      string
	}{
		{contractx.ToolNoteMaker, "Generates structured study notes on a topic.", noteMakerSchema},
		{contractx.ToolFlashcardGenerator, "Generates practice flashcards with adjustable difficulty.", flashcardGeneratorSchema},
		{contractx.ToolConceptExplainer, "Explains a concept at the requested depth.", conceptExplainerSchema},
	} {
		compiled, err := jsonschema.CompileString(string(reg.name)+".schema.json", reg.schema)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", reg.name, err)
		}
		r.tools[reg.name] = registration{
			desc: contractx.ToolDescriptor{
				Name:        reg.name,
				Description: reg.description,
				InputSchema: reg.schema,
			},
			schema: compiled,
		}
		r.order = append(r.order, reg.name)
	}
	return r, nil
}

// List returns the registered tools in a stable order.
func (r *Registry) List() []contractx.ToolDescriptor {
	out := make([]contractx.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].desc)
	}
	return out
}

// Validate checks input against the tool's schema. It never fails hard:
// unknown tools and malformed inputs come back as validation messages.
func (r *Registry) Validate(tool contractx.ToolName, input map[string]any) (bool, []string) {
	reg, ok := r.tools[tool]
	if !ok {
		return false, []string{fmt.Sprintf("unknown tool: %s", tool)}
	}

	// Round-trip through JSON so numeric types match what the schema
	// library expects from decoded documents.
	raw, err := json.Marshal(input)
	if err != nil {
		return false, []string{fmt.Sprintf("input not serializable: %v", err)}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, []string{fmt.Sprintf("input not serializable: %v", err)}
	}

	if err := reg.schema.Validate(doc); err != nil {
		return false, validationMessages(err)
	}
	return true, nil
}

// Execute validates input and runs the backend, timing the whole call.
// Failures are reported inside the ToolResult, never as panics or errors.
func (r *Registry) Execute(ctx context.Context, tool contractx.ToolName, input map[string]any) contractx.ToolResult {
	start := time.Now()
	result := contractx.ToolResult{Tool: tool}

	if _, ok := r.tools[tool]; !ok {
		result.Error = fmt.Sprintf("%v: %s", contractx.ErrUnknownTool, tool)
		result.Elapsed = time.Since(start)
		return result
	}

	if ok, problems := r.Validate(tool, input); !ok {
		result.Error = fmt.Sprintf("%v: %s", contractx.ErrValidation, strings.Join(problems, "; "))
		result.Elapsed = time.Since(start)
		log.Debug().Str("tool", string(tool)).Strs("problems", problems).Msg("tool input rejected")
		return result
	}

	output, err := r.backend.Execute(ctx, tool, input)
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		log.Warn().Err(err).Str("tool", string(tool)).Dur("elapsed", result.Elapsed).Msg("tool execution failed")
		return result
	}

	result.Success = true
	result.Output = output
	log.Debug().Str("tool", string(tool)).Dur("elapsed", result.Elapsed).Msg("tool executed")
	return result
}

func validationMessages(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	var msgs []string
	for _, unit := range ve.BasicOutput().Errors {
		if unit.Error == "" || strings.HasPrefix(unit.Error, "doesn't validate with") {
			continue
		}
		loc := unit.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", loc, unit.Error))
	}
	if len(msgs) == 0 {
		msgs = []string{ve.Error()}
	}
	return msgs
}
