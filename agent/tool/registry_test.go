package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

type fakeBackend struct {
	output map[string]any
	err    error
	calls  []contractx.ToolName
}

func (f *fakeBackend) Execute(ctx context.Context, tool contractx.ToolName, input map[string]any) (map[string]any, error) {
	f.calls = append(f.calls, tool)
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func validFlashcardInput() map[string]any {
	return map[string]any{
		"user_info": map[string]any{
			"user_id":     "student_001",
			"name":        "Alex",
			"grade_level": "10",
		},
		"topic":      "algebra",
		"count":      10,
		"difficulty": "medium",
		"subject":    "math",
	}
}

func TestRegistryListStableOrder(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(SyntheticBackend{})
	if err != nil {
		t.Fatalf("expected registry, got error %v", err)
	}

	descs := r.List()
	if len(descs) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(descs))
	}
	want := []contractx.ToolName{
		contractx.ToolNoteMaker,
		contractx.ToolFlashcardGenerator,
		contractx.ToolConceptExplainer,
	}
	for i, d := range descs {
		if d.Name != want[i] {
			t.Fatalf("expected tool %q at index %d, got %q", want[i], i, d.Name)
		}
		if d.InputSchema == "" {
			t.Fatalf("expected schema for %q", d.Name)
		}
	}
}

func TestRegistryValidate(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(SyntheticBackend{})
	if err != nil {
		t.Fatalf("expected registry, got error %v", err)
	}

	ok, problems := r.Validate(contractx.ToolFlashcardGenerator, validFlashcardInput())
	if !ok {
		t.Fatalf("expected valid input, got problems %v", problems)
	}

	bad := validFlashcardInput()
	bad["count"] = 50
	delete(bad, "difficulty")
	ok, problems = r.Validate(contractx.ToolFlashcardGenerator, bad)
	if ok {
		t.Fatal("expected invalid input")
	}
	if len(problems) == 0 {
		t.Fatal("expected validation messages")
	}
}

func TestRegistryValidateUnknownTool(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(SyntheticBackend{})
	if err != nil {
		t.Fatalf("expected registry, got error %v", err)
	}

	ok, problems := r.Validate("essay_grader", map[string]any{})
	if ok {
		t.Fatal("expected unknown tool to be invalid")
	}
	if len(problems) != 1 || !strings.Contains(problems[0], "unknown tool") {
		t.Fatalf("expected unknown-tool message, got %v", problems)
	}
}

func TestRegistryExecuteSuccess(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{output: map[string]any{"flashcards": []any{}}}
	r, err := NewRegistry(backend)
	if err != nil {
		t.Fatalf("expected registry, got error %v", err)
	}

	res := r.Execute(context.Background(), contractx.ToolFlashcardGenerator, validFlashcardInput())
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Output == nil {
		t.Fatal("expected output on success")
	}
	if res.Elapsed < 0 {
		t.Fatalf("expected non-negative elapsed, got %v", res.Elapsed)
	}
	if len(backend.calls) != 1 {
		t.Fatalf("expected one backend call, got %d", len(backend.calls))
	}
}

func TestRegistryExecuteRejectsInvalidInputBeforeBackend(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{output: map[string]any{}}
	r, err := NewRegistry(backend)
	if err != nil {
		t.Fatalf("expected registry, got error %v", err)
	}

	res := r.Execute(context.Background(), contractx.ToolFlashcardGenerator, map[string]any{"topic": "algebra"})
	if res.Success {
		t.Fatal("expected validation failure")
	}
	if res.Error == "" {
		t.Fatal("expected error message")
	}
	if len(backend.calls) != 0 {
		t.Fatalf("backend must not run on invalid input, got %d calls", len(backend.calls))
	}
}

func TestRegistryExecuteBackendError(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{err: errors.New("tool service unavailable")}
	r, err := NewRegistry(backend)
	if err != nil {
		t.Fatalf("expected registry, got error %v", err)
	}

	res := r.Execute(context.Background(), contractx.ToolFlashcardGenerator, validFlashcardInput())
	if res.Success {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(res.Error, "unavailable") {
		t.Fatalf("expected backend error surfaced, got %q", res.Error)
	}
	if res.Output != nil {
		t.Fatal("expected no output on failure")
	}
}

func TestSyntheticBackendShapes(t *testing.T) {
	t.Parallel()

	backend := SyntheticBackend{}

	out, err := backend.Execute(context.Background(), contractx.ToolFlashcardGenerator, map[string]any{
		"topic":            "genetics",
		"count":            3,
		"difficulty":       "easy",
		"include_examples": true,
	})
	if err != nil {
		t.Fatalf("expected output, got error %v", err)
	}
	cards, ok := out["flashcards"].([]any)
	if !ok {
		t.Fatalf("expected flashcards slice, got %T", out["flashcards"])
	}
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}

	out, err = backend.Execute(context.Background(), contractx.ToolConceptExplainer, map[string]any{
		"concept_to_explain": "photosynthesis",
		"desired_depth":      "basic",
	})
	if err != nil {
		t.Fatalf("expected output, got error %v", err)
	}
	explanation, _ := out["explanation"].(string)
	if !strings.Contains(explanation, "photosynthesis") {
		t.Fatalf("expected explanation to mention the concept, got %q", explanation)
	}

	if _, err := backend.Execute(context.Background(), "essay_grader", nil); !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}
