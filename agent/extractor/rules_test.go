package extractor

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

func TestClassifyToolKeywords(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		msg  string
		want contractx.ToolName
	}{
		{"notes request", "can you make notes on photosynthesis", contractx.ToolNoteMaker},
		{"flashcards request", "i want flashcards to practice", contractx.ToolFlashcardGenerator},
		{"explanation request", "explain how derivatives work", contractx.ToolConceptExplainer},
		{"no keywords falls back to explainer", "calculus tomorrow morning", contractx.ToolConceptExplainer},
		{"note beats flashcard on tie", "make a practice summary", contractx.ToolNoteMaker},
		{"flashcard beats explainer on tie", "quiz me on this concept", contractx.ToolFlashcardGenerator},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyTool(strings.ToLower(tc.msg))
			if got != tc.want {
				t.Fatalf("expected tool %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractTopic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		msg         string
		wantTopic   string
		wantSubject string
	}{
		{"anchor trimmed at filler", "I need notes about calculus for my exam", "calculus", "math"},
		{"anchor phrase", "I'm studying photosynthesis and need notes", "photosynthesis", "science"},
		{"known list when no anchor", "I have a calculus exam tomorrow", "calculus", "math"},
		{"multi word phrase", "make notes about linear algebra", "linear algebra", "math"},
		{"no topic", "hello there", "", ""},
	}

	e := NewRuleExtractor()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := e.Extract(context.Background(), contractx.ConversationContext{StudentMessage: tc.msg})
			if p.Topic != tc.wantTopic {
				t.Fatalf("expected topic %q, got %q", tc.wantTopic, p.Topic)
			}
			if p.Subject != tc.wantSubject {
				t.Fatalf("expected subject %q, got %q", tc.wantSubject, p.Subject)
			}
		})
	}
}

func TestExtractTopicNamesTheSubjectMatter(t *testing.T) {
	t.Parallel()

	// The named subject area must not displace the actual topic: this
	// message is about photosynthesis, with biology as its subject.
	e := NewRuleExtractor()
	p := e.Extract(context.Background(), contractx.ConversationContext{
		StudentMessage: "I'm studying photosynthesis in biology and need organized notes",
	})
	if p.Tool != contractx.ToolNoteMaker {
		t.Fatalf("expected note_maker, got %q", p.Tool)
	}
	if p.Topic != "photosynthesis" {
		t.Fatalf("expected topic photosynthesis, got %q", p.Topic)
	}
	if p.Subject != "science" {
		t.Fatalf("expected subject science, got %q", p.Subject)
	}
}

func TestExtractFlashcardCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		msg  string
		want int
	}{
		{"explicit count", "make 15 flashcards on algebra", 15},
		{"clamped high", "make 100 flashcards on algebra", MaxFlashcardCount},
		{"clamped low", "make 0 flashcards on algebra", MinFlashcardCount},
		{"default when absent", "make flashcards on algebra", DefaultFlashcardCount},
	}

	e := NewRuleExtractor()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := e.Extract(context.Background(), contractx.ConversationContext{StudentMessage: tc.msg})
			if p.Tool != contractx.ToolFlashcardGenerator {
				t.Fatalf("expected flashcard_generator, got %q", p.Tool)
			}
			if p.Count != tc.want {
				t.Fatalf("expected count %d, got %d", tc.want, p.Count)
			}
		})
	}
}

func TestExtractConceptBounded(t *testing.T) {
	t.Parallel()

	e := NewRuleExtractor()
	p := e.Extract(context.Background(), contractx.ConversationContext{
		StudentMessage: "explain the chain rule of differentiation in calculus please",
	})
	if p.Tool != contractx.ToolConceptExplainer {
		t.Fatalf("expected concept_explainer, got %q", p.Tool)
	}
	if p.Concept == "" {
		t.Fatal("expected a concept to be extracted")
	}
	if tokens := strings.Fields(p.Concept); len(tokens) > 4 {
		t.Fatalf("expected concept capped at 4 tokens, got %d (%q)", len(tokens), p.Concept)
	}
}

func TestExtractDepthAndDifficulty(t *testing.T) {
	t.Parallel()

	e := NewRuleExtractor()

	p := e.Extract(context.Background(), contractx.ConversationContext{
		StudentMessage: "explain recursion, a detailed walkthrough please",
	})
	if p.Depth != contractx.DepthComprehensive {
		t.Fatalf("expected comprehensive depth, got %q", p.Depth)
	}

	p = e.Extract(context.Background(), contractx.ConversationContext{
		StudentMessage: "give me challenging flashcards on genetics",
	})
	if p.Difficulty != contractx.DifficultyHard {
		t.Fatalf("expected hard difficulty, got %q", p.Difficulty)
	}
}

func TestConfidenceScoring(t *testing.T) {
	t.Parallel()

	e := NewRuleExtractor()

	// Tool, topic and subject all present: 0.5 + 0.2 + 0.2 + 0.1.
	p := e.Extract(context.Background(), contractx.ConversationContext{
		StudentMessage: "make notes about calculus",
	})
	if p.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", p.Confidence)
	}

	// Tool only: 0.5 + 0.2.
	p = e.Extract(context.Background(), contractx.ConversationContext{
		StudentMessage: "hello there",
	})
	if p.Confidence != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", p.Confidence)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", p.Confidence)
	}
}

func TestExtractAlwaysProducesMethodAndReasoning(t *testing.T) {
	t.Parallel()

	e := NewRuleExtractor()
	p := e.Extract(context.Background(), contractx.ConversationContext{StudentMessage: ""})
	if p.Method != contractx.MethodRuleBased {
		t.Fatalf("expected rule_based method, got %q", p.Method)
	}
	if p.Reasoning == "" {
		t.Fatal("expected non-empty reasoning")
	}
	if !contractx.KnownTool(p.Tool) {
		t.Fatalf("expected a known tool, got %q", p.Tool)
	}
}
