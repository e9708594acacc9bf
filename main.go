package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
	extractorx "github.com/edumesh/tutor-orchestrator/agent/extractor"
	orchestratorx "github.com/edumesh/tutor-orchestrator/agent/orchestrator"
	statex "github.com/edumesh/tutor-orchestrator/agent/state"
	toolx "github.com/edumesh/tutor-orchestrator/agent/tool"
	configx "github.com/edumesh/tutor-orchestrator/pkg/config"
	_ "github.com/edumesh/tutor-orchestrator/pkg/logger/autoload"
	openrouterx "github.com/edumesh/tutor-orchestrator/pkg/openrouter"
)

type AppConfig struct {
	// Extractor selects the extraction strategy: "rule" or "model".
	Extractor string `envconfig:"EXTRACTOR" split_words:"true" default:"rule"`
	// SessionBackend selects session persistence: "memory", "redis" or "postgres".
	SessionBackend string `envconfig:"SESSION_BACKEND" split_words:"true" default:"memory"`
	// ToolBackend selects tool execution: "synthetic" or "http".
	ToolBackend string `envconfig:"TOOL_BACKEND" split_words:"true" default:"synthetic"`
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("APP")

	store, closeStore := buildStore(ctx, appCfg)
	defer closeStore()

	registry, err := toolx.NewRegistry(buildToolBackend(appCfg))
	if err != nil {
		panic(err)
	}

	svc, err := orchestratorx.New(store, buildExtractor(ctx, appCfg), registry)
	if err != nil {
		panic(err)
	}

	runDemoTurn(ctx, svc)
}

func buildStore(ctx context.Context, cfg *AppConfig) (statex.Store, func()) {
	switch cfg.SessionBackend {
	case "redis":
		store, err := statex.NewUpstashRedisStore(*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS"))
		if err != nil {
			panic(err)
		}
		return store, func() {}
	case "postgres":
		store, err := statex.NewBunStore(*configx.MustNew[statex.BunConfig]("POSTGRES"))
		if err != nil {
			panic(err)
		}
		if err := store.Init(ctx); err != nil {
			panic(err)
		}
		return store, func() { _ = store.Close() }
	default:
		store := statex.NewMemoryStore()
		store.Start()
		return store, store.Close
	}
}

func buildToolBackend(cfg *AppConfig) toolx.Backend {
	if cfg.ToolBackend == "http" {
		gateway, err := toolx.NewHTTPGateway(*configx.MustNew[toolx.GatewayConfig]("TOOL"))
		if err != nil {
			panic(err)
		}
		return gateway
	}
	return toolx.SyntheticBackend{}
}

func buildExtractor(ctx context.Context, cfg *AppConfig) contractx.Extractor {
	rules := extractorx.NewRuleExtractor()
	if cfg.Extractor != "model" {
		return rules
	}

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	if openrouterx.NewClient(*openRouterCfg) == nil {
		panic("failed to initialize openrouter client")
	}

	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		panic(err)
	}
	modelExtractor, err := extractorx.NewModelExtractor(ctx, chatModel, rules)
	if err != nil {
		panic(err)
	}
	return modelExtractor
}

// runDemoTurn pushes one sample conversation turn through the pipeline and
// prints the result, so a fresh checkout has something observable to run.
func runDemoTurn(ctx context.Context, svc *orchestratorx.Service) {
	cc := contractx.ConversationContext{
		StudentMessage: "I'm struggling with calculus derivatives and need some practice problems",
		ChatHistory: []contractx.ChatMessage{
			{Role: "user", Content: "Hi, I have a calculus exam next week"},
			{Role: "assistant", Content: "Happy to help you prepare. What part feels hardest?"},
		},
		Student: contractx.StudentProfile{
			UserID:                "student_001",
			Name:                  "Alex",
			GradeLevel:            "11",
			LearningStyleSummary:  "Visual learner, prefers worked examples",
			EmotionalStateSummary: "Anxious about upcoming exam",
			MasteryLevelSummary:   "Level 4: builds on foundations",
		},
	}

	result, err := svc.Submit(ctx, cc, "")
	if err != nil {
		log.Fatal().Err(err).Msg("demo turn failed")
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode demo result")
	}
	fmt.Println(string(encoded))
}
