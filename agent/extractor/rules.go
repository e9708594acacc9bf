package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

const (
	MinFlashcardCount     = 1
	MaxFlashcardCount     = 20
	DefaultFlashcardCount = 10
)

var (
	noteKeywords      = []string{"notes", "note", "summary", "outline", "organize", "structured"}
	flashcardKeywords = []string{"flashcard", "quiz", "practice", "test", "review", "memorize"}
	explainerKeywords = []string{"explain", "understand", "confused", "what is", "how does", "concept"}

	knownTopics = []string{
		"calculus", "algebra", "geometry", "trigonometry", "statistics",
		"physics", "chemistry", "biology", "anatomy", "genetics",
		"history", "literature", "writing", "grammar", "vocabulary",
		"programming", "computer science", "algorithms", "data structures",
		"economics", "psychology", "sociology", "philosophy",
	}

	subjectKeywords = map[string][]string{
		"math":             {"math", "calculus", "algebra", "geometry", "trigonometry", "statistics"},
		"science":          {"physics", "chemistry", "biology", "science"},
		"english":          {"english", "literature", "writing", "grammar"},
		"history":          {"history", "social studies"},
		"computer science": {"programming", "computer", "coding", "algorithms"},
	}

	topicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`about\s+([a-zA-Z\s]+)`),
		regexp.MustCompile(`on\s+([a-zA-Z\s]+)`),
		regexp.MustCompile(`with\s+([a-zA-Z\s]+)`),
		regexp.MustCompile(`studying\s+([a-zA-Z\s]+)`),
	}

	conceptPatterns = []*regexp.Regexp{
		regexp.MustCompile(`explain\s+([a-zA-Z\s]+)`),
		regexp.MustCompile(`what is\s+([a-zA-Z\s]+)`),
		regexp.MustCompile(`understand\s+([a-zA-Z\s]+)`),
		regexp.MustCompile(`confused about\s+([a-zA-Z\s]+)`),
	}

	countPattern = regexp.MustCompile(`\d+`)

	// stopTokens end an anchor-pattern capture so a greedy match like
	// "photosynthesis in biology and need organized notes" reduces to
	// the phrase the student actually named.
	stopTokens = map[string]bool{
		"a": true, "an": true, "the": true,
		"and": true, "or": true, "of": true, "in": true, "on": true,
		"for": true, "to": true, "with": true, "about": true,
		"my": true, "me": true, "that": true, "this": true,
		"so": true, "please": true,
	}
)

// RuleExtractor is the deterministic extraction strategy. It never fails:
// every message yields a parameter set with a tool and a confidence.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

var _ contractx.Extractor = (*RuleExtractor)(nil)

func (e *RuleExtractor) Extract(_ context.Context, cc contractx.ConversationContext) contractx.ExtractedParams {
	msg := strings.ToLower(cc.StudentMessage)

	p := contractx.ExtractedParams{
		Method: contractx.MethodRuleBased,
	}
	p.Tool = ClassifyTool(msg)
	p.Topic = extractTopic(msg)
	p.Subject = extractSubject(msg)

	switch p.Tool {
	case contractx.ToolNoteMaker:
		p.NoteStyle = extractNoteStyle(msg)
		p.IncludeExamples = strings.Contains(msg, "example")
		p.IncludeAnalogies = strings.Contains(msg, "analog")
	case contractx.ToolFlashcardGenerator:
		p.Count = extractCount(msg)
		p.Difficulty = extractDifficulty(msg)
		p.IncludeExamples = true
	case contractx.ToolConceptExplainer:
		p.Concept = extractConcept(msg)
		if p.Concept == "" {
			p.Concept = p.Topic
		}
		p.Depth = extractDepth(msg)
	}

	AdaptForProfile(&p, cc.Student)
	p.Confidence = confidenceFor(p)
	p.Reasoning = reasoningFor(p)
	return p
}

// ClassifyTool scores each tool's keyword set against the message. Ties
// resolve note_maker > flashcard_generator > concept_explainer; a message
// with no keyword hits falls through to concept_explainer.
func ClassifyTool(msg string) contractx.ToolName {
	noteScore := keywordScore(msg, noteKeywords)
	flashScore := keywordScore(msg, flashcardKeywords)
	explainScore := keywordScore(msg, explainerKeywords)

	switch {
	case noteScore >= flashScore && noteScore >= explainScore && noteScore > 0:
		return contractx.ToolNoteMaker
	case flashScore >= explainScore && flashScore > 0:
		return contractx.ToolFlashcardGenerator
	default:
		return contractx.ToolConceptExplainer
	}
}

func keywordScore(msg string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			score++
		}
	}
	return score
}

// extractTopic prefers an anchor-pattern capture ("studying X", "about X")
// over the known-topic scan: the anchor points at what the student named,
// while the scan can only pick out whichever list entry appears first.
// "studying photosynthesis in biology" is about photosynthesis, not biology.
func extractTopic(msg string) string {
	for _, pattern := range topicPatterns {
		if captured := captureBounded(pattern, msg, 3); captured != "" {
			return captured
		}
	}
	for _, topic := range knownTopics {
		if strings.Contains(msg, topic) {
			return topic
		}
	}
	return ""
}

func extractSubject(msg string) string {
	for subject, keywords := range subjectKeywords {
		for _, kw := range keywords {
			if strings.Contains(msg, kw) {
				return subject
			}
		}
	}
	return ""
}

func extractConcept(msg string) string {
	for _, pattern := range conceptPatterns {
		if captured := captureBounded(pattern, msg, 4); captured != "" {
			return captured
		}
	}
	return ""
}

// captureBounded returns the leading phrase of the first capture group:
// leading stop tokens are skipped, the phrase ends at the next stop token,
// and the result is truncated to maxTokens whitespace-separated tokens.
func captureBounded(pattern *regexp.Regexp, msg string, maxTokens int) string {
	m := pattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return ""
	}
	fields := strings.Fields(strings.TrimSpace(m[1]))
	for len(fields) > 0 && stopTokens[fields[0]] {
		fields = fields[1:]
	}

	var phrase []string
	for _, f := range fields {
		if stopTokens[f] || len(phrase) == maxTokens {
			break
		}
		phrase = append(phrase, f)
	}
	if len(phrase) == 0 {
		return ""
	}
	return strings.Join(phrase, " ")
}

func extractNoteStyle(msg string) contractx.NoteStyle {
	switch {
	case strings.Contains(msg, "outline") || strings.Contains(msg, "bullet") || strings.Contains(msg, "points"):
		return contractx.NoteStyleOutline
	case strings.Contains(msg, "narrative"):
		return contractx.NoteStyleNarrative
	default:
		return contractx.NoteStyleStructured
	}
}

func extractCount(msg string) int {
	raw := countPattern.FindString(msg)
	if raw == "" {
		return DefaultFlashcardCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultFlashcardCount
	}
	return ClampCount(n)
}

// ClampCount bounds a requested flashcard count to [1, 20].
func ClampCount(n int) int {
	if n < MinFlashcardCount {
		return MinFlashcardCount
	}
	if n > MaxFlashcardCount {
		return MaxFlashcardCount
	}
	return n
}

func extractDifficulty(msg string) contractx.Difficulty {
	switch {
	case containsAny(msg, "easy", "basic", "simple"):
		return contractx.DifficultyEasy
	case containsAny(msg, "hard", "difficult", "advanced", "challenging"):
		return contractx.DifficultyHard
	default:
		return contractx.DifficultyMedium
	}
}

func extractDepth(msg string) contractx.Depth {
	switch {
	case containsAny(msg, "basic", "simple", "overview"):
		return contractx.DepthBasic
	case containsAny(msg, "detailed", "comprehensive", "thorough"):
		return contractx.DepthComprehensive
	case containsAny(msg, "advanced", "deep"):
		return contractx.DepthAdvanced
	default:
		return contractx.DepthIntermediate
	}
}

func containsAny(msg string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}

func confidenceFor(p contractx.ExtractedParams) float64 {
	confidence := 0.5
	if p.Topic != "" {
		confidence += 0.2
	}
	if p.Tool != "" {
		confidence += 0.2
	}
	if p.Subject != "" {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func reasoningFor(p contractx.ExtractedParams) string {
	parts := []string{
		fmt.Sprintf("Identified '%s' as the most appropriate tool", p.Tool),
	}
	if p.Topic != "" {
		parts = append(parts, fmt.Sprintf("Extracted topic: '%s'", p.Topic))
	}
	if p.Difficulty != "" {
		parts = append(parts, fmt.Sprintf("Inferred difficulty level: '%s'", p.Difficulty))
	}
	if p.ProfileAdapted {
		parts = append(parts, "Adapted parameters based on student profile")
	}
	return strings.Join(parts, ". ") + "."
}
