package tool

import (
	"context"
	"fmt"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

// SyntheticBackend produces deterministic tool outputs without calling any
// remote service. It backs local development and the demo entrypoint, and
// its output shapes match what the real tool services return.
type SyntheticBackend struct{}

var _ Backend = SyntheticBackend{}

func (SyntheticBackend) Execute(_ context.Context, tool contractx.ToolName, input map[string]any) (map[string]any, error) {
	switch tool {
	case contractx.ToolNoteMaker:
		return syntheticNotes(input), nil
	case contractx.ToolFlashcardGenerator:
		return syntheticFlashcards(input), nil
	case contractx.ToolConceptExplainer:
		return syntheticExplanation(input), nil
	default:
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, tool)
	}
}

func syntheticNotes(input map[string]any) map[string]any {
	topic := stringField(input, "topic", "General Topic")
	subject := stringField(input, "subject", "General Subject")
	style := stringField(input, "note_taking_style", string(contractx.NoteStyleStructured))

	intro := map[string]any{
		"title":   fmt.Sprintf("Introduction to %s", topic),
		"content": fmt.Sprintf("This section covers the fundamental concepts of %s.", topic),
		"key_points": []any{
			fmt.Sprintf("Key concept 1 about %s", topic),
			fmt.Sprintf("Key concept 2 about %s", topic),
			fmt.Sprintf("Important relationship in %s", topic),
		},
		"examples": []any{
			fmt.Sprintf("Example 1 demonstrating %s", topic),
			fmt.Sprintf("Example 2 showing application of %s", topic),
		},
		"analogies": []any{},
	}
	if boolField(input, "include_analogies") {
		intro["analogies"] = []any{fmt.Sprintf("Think of %s like a familiar concept...", topic)}
	}

	advanced := map[string]any{
		"title":   fmt.Sprintf("Advanced Concepts in %s", topic),
		"content": fmt.Sprintf("This section explores more complex aspects of %s.", topic),
		"key_points": []any{
			"Advanced principle 1",
			"Advanced principle 2",
		},
		"examples":  []any{},
		"analogies": []any{},
	}
	if boolField(input, "include_examples") {
		advanced["examples"] = []any{fmt.Sprintf("Complex example of %s", topic)}
	}

	return map[string]any{
		"topic":         topic,
		"title":         fmt.Sprintf("Study Notes: %s", topic),
		"summary":       fmt.Sprintf("Comprehensive notes on %s in %s", topic, subject),
		"note_sections": []any{intro, advanced},
		"key_concepts": []any{
			fmt.Sprintf("Core concept A in %s", topic),
			fmt.Sprintf("Core concept B in %s", topic),
			fmt.Sprintf("Core concept C in %s", topic),
		},
		"connections_to_prior_learning": []any{
			"Connects to previous study of related topics",
			"Builds upon foundational knowledge",
		},
		"visual_elements": []any{
			map[string]any{"type": "diagram", "description": fmt.Sprintf("Conceptual diagram of %s", topic)},
			map[string]any{"type": "flowchart", "description": fmt.Sprintf("Process flow for %s", topic)},
		},
		"practice_suggestions": []any{
			fmt.Sprintf("Practice problem set 1 for %s", topic),
			fmt.Sprintf("Practice problem set 2 for %s", topic),
			"Review exercises",
		},
		"source_references": []any{
			fmt.Sprintf("Textbook chapter on %s", topic),
			fmt.Sprintf("Online resource about %s", subject),
		},
		"note_taking_style": style,
	}
}

func syntheticFlashcards(input map[string]any) map[string]any {
	topic := stringField(input, "topic", "General Topic")
	difficulty := stringField(input, "difficulty", string(contractx.DifficultyMedium))
	count := intField(input, "count", 5)
	includeExamples := boolField(input, "include_examples")

	cards := make([]any, 0, count)
	for i := 1; i <= count; i++ {
		card := map[string]any{
			"title":    fmt.Sprintf("%s - Card %d", topic, i),
			"question": fmt.Sprintf("What is the key concept %d in %s?", i, topic),
			"answer":   fmt.Sprintf("The answer to key concept %d in %s is...", i, topic),
		}
		if includeExamples {
			card["example"] = fmt.Sprintf("Example: %s application %d", topic, i)
		}
		cards = append(cards, card)
	}

	return map[string]any{
		"flashcards":         cards,
		"topic":              topic,
		"adaptation_details": fmt.Sprintf("Flashcards adapted for %s difficulty level based on student profile", difficulty),
		"difficulty":         difficulty,
	}
}

func syntheticExplanation(input map[string]any) map[string]any {
	concept := stringField(input, "concept_to_explain", "General Concept")
	depth := stringField(input, "desired_depth", string(contractx.DepthIntermediate))

	return map[string]any{
		"explanation": fmt.Sprintf("A %s explanation of %s: This concept involves multiple interconnected ideas that work together to form a comprehensive understanding.", depth, concept),
		"examples": []any{
			fmt.Sprintf("Example 1: Real-world application of %s", concept),
			fmt.Sprintf("Example 2: Practical demonstration of %s", concept),
			fmt.Sprintf("Example 3: Common scenario involving %s", concept),
		},
		"related_concepts": []any{
			fmt.Sprintf("Related concept A that connects to %s", concept),
			fmt.Sprintf("Related concept B that builds upon %s", concept),
			fmt.Sprintf("Related concept C that applies %s", concept),
		},
		"visual_aids": []any{
			fmt.Sprintf("Diagram showing the structure of %s", concept),
			fmt.Sprintf("Flowchart illustrating how %s works", concept),
			fmt.Sprintf("Graph demonstrating %s relationships", concept),
		},
		"practice_questions": []any{
			fmt.Sprintf("How does %s relate to your previous knowledge?", concept),
			fmt.Sprintf("Can you identify %s in this new scenario?", concept),
			fmt.Sprintf("What would happen if we modified %s?", concept),
		},
		"source_references": []any{
			fmt.Sprintf("Academic source on %s", concept),
			fmt.Sprintf("Research paper about %s", concept),
			fmt.Sprintf("Educational resource for %s", concept),
		},
	}
}

func stringField(input map[string]any, key, fallback string) string {
	if v, ok := input[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intField(input map[string]any, key string, fallback int) int {
	switch v := input[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func boolField(input map[string]any, key string) bool {
	v, _ := input[key].(bool)
	return v
}
