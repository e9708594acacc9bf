package extractor

import (
	"testing"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

func TestAdaptForProfileAnxiousStepDown(t *testing.T) {
	t.Parallel()

	p := contractx.ExtractedParams{
		Difficulty: contractx.DifficultyHard,
		Depth:      contractx.DepthComprehensive,
	}
	AdaptForProfile(&p, contractx.StudentProfile{
		EmotionalStateSummary: "Anxious about the upcoming exam",
	})

	if p.Difficulty != contractx.DifficultyMedium {
		t.Fatalf("expected medium difficulty, got %q", p.Difficulty)
	}
	if p.Depth != contractx.DepthIntermediate {
		t.Fatalf("expected intermediate depth, got %q", p.Depth)
	}
	if !p.ProfileAdapted {
		t.Fatal("expected ProfileAdapted to be set")
	}
}

func TestAdaptForProfileLowMasteryForcesFoundational(t *testing.T) {
	t.Parallel()

	// An explicit request for advanced material still steps down at
	// mastery level 2.
	p := contractx.ExtractedParams{
		Difficulty: contractx.DifficultyHard,
		Depth:      contractx.DepthAdvanced,
	}
	AdaptForProfile(&p, contractx.StudentProfile{
		MasteryLevelSummary: "Level 2: building foundations",
	})

	if p.Difficulty != contractx.DifficultyEasy {
		t.Fatalf("expected easy difficulty, got %q", p.Difficulty)
	}
	if p.Depth != contractx.DepthBasic {
		t.Fatalf("expected basic depth, got %q", p.Depth)
	}
	if !p.ProfileAdapted {
		t.Fatal("expected ProfileAdapted to be set")
	}
}

func TestAdaptForProfileHighMasteryRaises(t *testing.T) {
	t.Parallel()

	p := contractx.ExtractedParams{
		Difficulty: contractx.DifficultyEasy,
		Depth:      contractx.DepthIntermediate,
	}
	AdaptForProfile(&p, contractx.StudentProfile{
		MasteryLevelSummary: "Level 9: advanced applications",
	})

	if p.Difficulty != contractx.DifficultyMedium {
		t.Fatalf("expected medium difficulty, got %q", p.Difficulty)
	}
	if p.Depth != contractx.DepthAdvanced {
		t.Fatalf("expected advanced depth, got %q", p.Depth)
	}
}

func TestAdaptForProfileLevelTenIsNotLevelOne(t *testing.T) {
	t.Parallel()

	p := contractx.ExtractedParams{
		Difficulty: contractx.DifficultyMedium,
		Depth:      contractx.DepthIntermediate,
	}
	AdaptForProfile(&p, contractx.StudentProfile{
		MasteryLevelSummary: "Level 10: full mastery",
	})

	if p.Difficulty == contractx.DifficultyEasy || p.Depth == contractx.DepthBasic {
		t.Fatalf("level 10 must not trigger the low-mastery rule, got difficulty=%q depth=%q", p.Difficulty, p.Depth)
	}
	if p.Depth != contractx.DepthAdvanced {
		t.Fatalf("expected advanced depth, got %q", p.Depth)
	}
}

func TestAdaptForProfileNeutralNoop(t *testing.T) {
	t.Parallel()

	p := contractx.ExtractedParams{
		Difficulty: contractx.DifficultyMedium,
		Depth:      contractx.DepthIntermediate,
	}
	AdaptForProfile(&p, contractx.StudentProfile{
		EmotionalStateSummary: "Focused and motivated",
		MasteryLevelSummary:   "Level 5: developing competence",
	})

	if p.Difficulty != contractx.DifficultyMedium || p.Depth != contractx.DepthIntermediate {
		t.Fatalf("expected no change, got difficulty=%q depth=%q", p.Difficulty, p.Depth)
	}
	if p.ProfileAdapted {
		t.Fatal("expected ProfileAdapted to stay false")
	}
}

func TestAdaptAppliesAfterAnxietyStepDown(t *testing.T) {
	t.Parallel()

	// Anxious + high mastery: anxiety lowers medium to easy, then the
	// high-mastery rule (applied last) brings it back to medium.
	p := contractx.ExtractedParams{
		Difficulty: contractx.DifficultyMedium,
		Depth:      contractx.DepthIntermediate,
	}
	AdaptForProfile(&p, contractx.StudentProfile{
		EmotionalStateSummary: "Anxious before the test",
		MasteryLevelSummary:   "Level 8: strong command",
	})

	if p.Difficulty != contractx.DifficultyMedium {
		t.Fatalf("expected medium difficulty after both rules, got %q", p.Difficulty)
	}
	if p.Depth != contractx.DepthAdvanced {
		t.Fatalf("expected advanced depth, got %q", p.Depth)
	}
}
