package tool

import "fmt"

// Input schemas for the three educational tools, shared between Validate
// and the List descriptors. The shapes mirror the tool contracts: every
// tool takes the student profile; note maker and concept explainer also
// take recent chat history for context.

const sharedDefs = `"$defs": {
  "user_info": {
    "type": "object",
    "properties": {
      "user_id": {"type": "string"},
      "name": {"type": "string"},
      "grade_level": {"type": "string"},
      "learning_style_summary": {"type": "string"},
      "emotional_state_summary": {"type": "string"},
      "mastery_level_summary": {"type": "string"}
    },
    "required": ["user_id", "name", "grade_level"]
  },
  "chat_message": {
    "type": "object",
    "properties": {
      "role": {"type": "string", "enum": ["user", "assistant"]},
      "content": {"type": "string"}
    },
    "required": ["role", "content"]
  }
}`

var noteMakerSchema = fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  %s,
  "properties": {
    "user_info": {"$ref": "#/$defs/user_info"},
    "chat_history": {"type": "array", "items": {"$ref": "#/$defs/chat_message"}},
    "topic": {"type": "string", "minLength": 1},
    "subject": {"type": "string", "minLength": 1},
    "note_taking_style": {"type": "string", "enum": ["outline", "bullet_points", "narrative", "structured"]},
    "include_examples": {"type": "boolean"},
    "include_analogies": {"type": "boolean"}
  },
  "required": ["user_info", "chat_history", "topic", "subject", "note_taking_style"]
}`, sharedDefs)

var flashcardGeneratorSchema = fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  %s,
  "properties": {
    "user_info": {"$ref": "#/$defs/user_info"},
    "topic": {"type": "string", "minLength": 1},
    "count": {"type": "integer", "minimum": 1, "maximum": 20},
    "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
    "include_examples": {"type": "boolean"},
    "subject": {"type": "string", "minLength": 1}
  },
  "required": ["user_info", "topic", "count", "difficulty", "subject"]
}`, sharedDefs)

var conceptExplainerSchema = fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  %s,
  "properties": {
    "user_info": {"$ref": "#/$defs/user_info"},
    "chat_history": {"type": "array", "items": {"$ref": "#/$defs/chat_message"}},
    "concept_to_explain": {"type": "string", "minLength": 1},
    "current_topic": {"type": "string", "minLength": 1},
    "desired_depth": {"type": "string", "enum": ["basic", "intermediate", "advanced", "comprehensive"]}
  },
  "required": ["user_info", "chat_history", "concept_to_explain", "current_topic", "desired_depth"]
}`, sharedDefs)
