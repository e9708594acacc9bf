package orchestrator

import (
	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

// Fallback values used when extraction produced no value for a field the
// tool requires. Tools always receive a complete input.
const (
	fallbackTopic   = "General Topic"
	fallbackSubject = "General Subject"
	fallbackConcept = "General Concept"
)

// buildToolInput assembles the full input document for one tool from the
// extracted parameters and the conversation context.
func buildToolInput(tool contractx.ToolName, p contractx.ExtractedParams, cc contractx.ConversationContext) map[string]any {
	input := map[string]any{
		"user_info": userInfoDoc(cc.Student),
	}

	switch tool {
	case contractx.ToolNoteMaker:
		input["chat_history"] = historyDocs(cc.ChatHistory)
		input["topic"] = orDefault(p.Topic, fallbackTopic)
		input["subject"] = orDefault(p.Subject, fallbackSubject)
		input["note_taking_style"] = string(orDefault(string(p.NoteStyle), string(contractx.NoteStyleStructured)))
		input["include_examples"] = p.IncludeExamples
		input["include_analogies"] = p.IncludeAnalogies

	case contractx.ToolFlashcardGenerator:
		count := p.Count
		if count <= 0 {
			count = 10
		}
		input["topic"] = orDefault(p.Topic, fallbackTopic)
		input["count"] = count
		input["difficulty"] = string(orDefault(string(p.Difficulty), string(contractx.DifficultyMedium)))
		input["include_examples"] = p.IncludeExamples
		input["subject"] = orDefault(p.Subject, fallbackSubject)

	case contractx.ToolConceptExplainer:
		input["chat_history"] = historyDocs(cc.ChatHistory)
		input["concept_to_explain"] = orDefault(p.Concept, orDefault(p.Topic, fallbackConcept))
		input["current_topic"] = orDefault(p.Concept, orDefault(p.Subject, fallbackTopic))
		input["desired_depth"] = string(orDefault(string(p.Depth), string(contractx.DepthIntermediate)))
	}

	return input
}

func userInfoDoc(p contractx.StudentProfile) map[string]any {
	return map[string]any{
		"user_id":                 p.UserID,
		"name":                    p.Name,
		"grade_level":             p.GradeLevel,
		"learning_style_summary":  p.LearningStyleSummary,
		"emotional_state_summary": p.EmotionalStateSummary,
		"mastery_level_summary":   p.MasteryLevelSummary,
	}
}

func historyDocs(history []contractx.ChatMessage) []any {
	docs := make([]any, 0, len(history))
	for _, msg := range history {
		docs = append(docs, map[string]any{
			"role":    msg.Role,
			"content": msg.Content,
		})
	}
	return docs
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
