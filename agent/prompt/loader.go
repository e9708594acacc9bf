package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/extractor.txt
var extractorRaw string

// ExtractorPrompt returns the trimmed system prompt for the model-assisted
// parameter extractor. Safe to call concurrently; the embed is compile-time.
func ExtractorPrompt() string {
	return strings.TrimSpace(extractorRaw)
}
