package candidates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"almanac/internal/core"
	"almanac/internal/logger"

	"google.golang.org/genai"
)

const schemaHint = `Return MINIFIED JSON ONLY EXACTLY like: {"events":[{"year":"YYYY or -YY","title":"...","note":"why newsworthy (no dates)"}]}`

// Provider produces ranked candidate suggestions for a calendar date.
type Provider interface {
	// Rank returns candidates for the date. regionOnly restricts the
	// request to regionally relevant items.
	Rank(ctx context.Context, readableDate, mm, dd string, regionOnly bool) ([]core.CandidateRecord, error)
}

// GeminiProvider is the Gemini-backed Provider.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
	maxItems  int
	timeout   time.Duration
}

// NewGeminiProvider creates a provider. It returns an error when no
// API key is available; callers treat that as "provider absent".
func NewGeminiProvider(apiKey, modelName string, maxItems int, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("candidate provider requires an API key; set GEMINI_API_KEY or candidates.api_key")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	if maxItems <= 0 {
		maxItems = 36
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate provider client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
		maxItems:  maxItems,
		timeout:   timeout,
	}, nil
}

// Rank asks the model for a ranked candidate list and parses the
// response leniently. A malformed first response triggers one strict
// retry with the bare schema prompt before line-recovery applies.
func (p *GeminiProvider) Rank(ctx context.Context, readableDate, mm, dd string, regionOnly bool) ([]core.CandidateRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	first, err := p.generate(ctx, buildPrompt(readableDate, mm, dd, regionOnly))
	if err != nil {
		return nil, err
	}

	result := Parse(first, p.maxItems)
	if result.Outcome == OutcomeParsed {
		return result.Items, nil
	}

	// Retry once with the schema alone; models that drifted into
	// prose usually comply on the second ask.
	second, err := p.generate(ctx, schemaHint)
	if err == nil {
		if retry := Parse(second, p.maxItems); retry.Outcome == OutcomeParsed {
			return retry.Items, nil
		}
	}

	if result.Outcome == OutcomeRecovered {
		logger.Debug("Recovered candidates from malformed payload", "count", len(result.Items))
		return result.Items, nil
	}
	return nil, nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := p.client.Models.GenerateContent(ctx, p.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func buildPrompt(readableDate, mm, dd string, regionOnly bool) string {
	regionClause := "Include major global items (treaties, space, Nobel, Olympics/records)."
	if regionOnly {
		regionClause = "Focus ONLY on India-related items."
	}
	return fmt.Sprintf(`%s
Date: %s (%s-%s)
Rules:
- 20-30 items total (concise).
- Prefer high-signal: constitutional/judiciary, space programs, economic milestones, elections, sports/culture records.
- Strongly de-emphasise generic medieval battles.
- %s`, schemaHint, readableDate, mm, dd, regionClause)
}
