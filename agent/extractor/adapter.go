package extractor

import (
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

var masteryLevelPattern = regexp.MustCompile(`level\s*(\d+)`)

// masteryLevel pulls the first numeric mastery level out of the free-text
// summary, 0 when none is referenced. Matching the full number keeps
// "Level 10" from reading as level 1.
func masteryLevel(summary string) int {
	m := masteryLevelPattern.FindStringSubmatch(summary)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// AdaptForProfile adjusts difficulty and depth from the student's
// emotional-state and mastery-level summaries. It runs after field
// extraction for both strategies. Order matters: the anxiety step-down
// applies first, then low mastery forces easy/basic, then high mastery
// (applied last) may raise what the earlier rules lowered.
func AdaptForProfile(p *contractx.ExtractedParams, profile contractx.StudentProfile) {
	if p == nil {
		return
	}
	adapted := false

	emotional := strings.ToLower(profile.EmotionalStateSummary)
	if strings.Contains(emotional, "anxious") || strings.Contains(emotional, "confused") {
		switch p.Difficulty {
		case contractx.DifficultyHard:
			p.Difficulty = contractx.DifficultyMedium
			adapted = true
		case contractx.DifficultyMedium:
			p.Difficulty = contractx.DifficultyEasy
			adapted = true
		}
		switch p.Depth {
		case contractx.DepthComprehensive:
			p.Depth = contractx.DepthIntermediate
			adapted = true
		case contractx.DepthAdvanced:
			p.Depth = contractx.DepthBasic
			adapted = true
		}
	}

	level := masteryLevel(strings.ToLower(profile.MasteryLevelSummary))
	switch {
	case level >= 1 && level <= 3:
		if p.Difficulty != contractx.DifficultyEasy || p.Depth != contractx.DepthBasic {
			adapted = true
		}
		p.Difficulty = contractx.DifficultyEasy
		p.Depth = contractx.DepthBasic
	case level >= 8 && level <= 10:
		if p.Difficulty == contractx.DifficultyEasy {
			p.Difficulty = contractx.DifficultyMedium
			adapted = true
		}
		if p.Depth != contractx.DepthAdvanced {
			adapted = true
		}
		p.Depth = contractx.DepthAdvanced
	}

	if adapted {
		p.ProfileAdapted = true
	}
}
