package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

const maxToolResponseBytes = 4 << 20

// GatewayConfig carries the endpoints of the deployed tool services.
type GatewayConfig struct {
	NoteMakerURL        string        `envconfig:"NOTE_MAKER_URL" split_words:"true" required:"true"`
	FlashcardURL        string        `envconfig:"FLASHCARD_URL" split_words:"true" required:"true"`
	ConceptExplainerURL string        `envconfig:"CONCEPT_EXPLAINER_URL" split_words:"true" required:"true"`
	Token               string        `envconfig:"TOKEN" split_words:"true"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// HTTPGateway is the production Backend: it POSTs the validated input to
// the tool service registered for each tool and decodes the JSON reply.
type HTTPGateway struct {
	endpoints  map[contractx.ToolName]string
	token      string
	httpClient *http.Client
}

var _ Backend = (*HTTPGateway)(nil)

func NewHTTPGateway(cfg GatewayConfig) (*HTTPGateway, error) {
	endpoints := map[contractx.ToolName]string{
		contractx.ToolNoteMaker:          strings.TrimSpace(cfg.NoteMakerURL),
		contractx.ToolFlashcardGenerator: strings.TrimSpace(cfg.FlashcardURL),
		contractx.ToolConceptExplainer:   strings.TrimSpace(cfg.ConceptExplainerURL),
	}
	for name, endpoint := range endpoints {
		if endpoint == "" {
			return nil, fmt.Errorf("endpoint for %s is required", name)
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return nil, fmt.Errorf("invalid endpoint for %s: %w", name, err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPGateway{
		endpoints:  endpoints,
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (g *HTTPGateway) Execute(ctx context.Context, tool contractx.ToolName, input map[string]any) (map[string]any, error) {
	endpoint, ok := g.endpoints[tool]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, tool)
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal tool input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxToolResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", tool, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s http status=%d body=%s", tool, resp.StatusCode, truncateBody(raw))
	}

	output := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty tool response")
	}
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", tool, err)
	}
	return output, nil
}

func truncateBody(raw []byte) string {
	const limit = 512
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
