package orchestrator

import (
	"testing"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

func sampleContext() contractx.ConversationContext {
	return contractx.ConversationContext{
		StudentMessage: "help me study",
		ChatHistory: []contractx.ChatMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
		Student: contractx.StudentProfile{
			UserID:     "u1",
			Name:       "Alex",
			GradeLevel: "10",
		},
	}
}

func TestBuildToolInputNoteMakerDefaults(t *testing.T) {
	t.Parallel()

	input := buildToolInput(contractx.ToolNoteMaker, contractx.ExtractedParams{}, sampleContext())

	if input["topic"] != "General Topic" {
		t.Fatalf("expected default topic, got %v", input["topic"])
	}
	if input["subject"] != "General Subject" {
		t.Fatalf("expected default subject, got %v", input["subject"])
	}
	if input["note_taking_style"] != "structured" {
		t.Fatalf("expected default style, got %v", input["note_taking_style"])
	}
	history, ok := input["chat_history"].([]any)
	if !ok || len(history) != 2 {
		t.Fatalf("expected chat history with 2 entries, got %v", input["chat_history"])
	}
	userInfo, ok := input["user_info"].(map[string]any)
	if !ok || userInfo["user_id"] != "u1" {
		t.Fatalf("expected user_info with user_id, got %v", input["user_info"])
	}
}

func TestBuildToolInputFlashcardDefaults(t *testing.T) {
	t.Parallel()

	input := buildToolInput(contractx.ToolFlashcardGenerator, contractx.ExtractedParams{}, sampleContext())

	if input["count"] != 10 {
		t.Fatalf("expected default count 10, got %v", input["count"])
	}
	if input["difficulty"] != "medium" {
		t.Fatalf("expected default difficulty, got %v", input["difficulty"])
	}
	if _, hasHistory := input["chat_history"]; hasHistory {
		t.Fatal("flashcard input must not carry chat history")
	}
}

func TestBuildToolInputConceptExplainerFallbacks(t *testing.T) {
	t.Parallel()

	// No concept extracted: fall back to topic, then to the generic label.
	input := buildToolInput(contractx.ToolConceptExplainer, contractx.ExtractedParams{Topic: "photosynthesis"}, sampleContext())
	if input["concept_to_explain"] != "photosynthesis" {
		t.Fatalf("expected topic fallback, got %v", input["concept_to_explain"])
	}

	input = buildToolInput(contractx.ToolConceptExplainer, contractx.ExtractedParams{}, sampleContext())
	if input["concept_to_explain"] != "General Concept" {
		t.Fatalf("expected generic concept fallback, got %v", input["concept_to_explain"])
	}
	if input["current_topic"] != "General Topic" {
		t.Fatalf("expected generic current_topic fallback, got %v", input["current_topic"])
	}
	if input["desired_depth"] != "intermediate" {
		t.Fatalf("expected default depth, got %v", input["desired_depth"])
	}
}

func TestBuildToolInputConceptExplainerCurrentTopic(t *testing.T) {
	t.Parallel()

	// The extracted concept anchors current_topic; the subject is only a
	// fallback when no concept was extracted.
	input := buildToolInput(contractx.ToolConceptExplainer, contractx.ExtractedParams{
		Concept: "chain rule",
		Subject: "math",
	}, sampleContext())
	if input["current_topic"] != "chain rule" {
		t.Fatalf("expected concept as current_topic, got %v", input["current_topic"])
	}

	input = buildToolInput(contractx.ToolConceptExplainer, contractx.ExtractedParams{
		Subject: "math",
	}, sampleContext())
	if input["current_topic"] != "math" {
		t.Fatalf("expected subject fallback, got %v", input["current_topic"])
	}
}

func TestBuildToolInputUsesExtractedValues(t *testing.T) {
	t.Parallel()

	p := contractx.ExtractedParams{
		Topic:            "derivatives",
		Subject:          "math",
		Difficulty:       contractx.DifficultyHard,
		Count:            15,
		IncludeExamples:  true,
		IncludeAnalogies: true,
		NoteStyle:        contractx.NoteStyleOutline,
	}

	input := buildToolInput(contractx.ToolFlashcardGenerator, p, sampleContext())
	if input["count"] != 15 || input["difficulty"] != "hard" || input["topic"] != "derivatives" {
		t.Fatalf("expected extracted values, got %v", input)
	}

	input = buildToolInput(contractx.ToolNoteMaker, p, sampleContext())
	if input["note_taking_style"] != "outline" {
		t.Fatalf("expected outline style, got %v", input["note_taking_style"])
	}
	if input["include_analogies"] != true {
		t.Fatalf("expected analogies enabled, got %v", input["include_analogies"])
	}
}
