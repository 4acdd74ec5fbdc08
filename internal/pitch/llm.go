package pitch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/runwayhq/runway/internal/config"
)

// extractionSystem pins the model to the extraction contract. The reply
// must be a single JSON object; anything else fails the parse.
const extractionSystem = `You extract structure from pitch deck text. Output valid JSON only. No markdown, no explanation.
Rules:
- Extract only what is explicitly stated. If something is missing, use null.
- Do NOT invent, infer, or add content.
- startupName: string or null (e.g. from title slide).
- problemStatement: 1-2 sentences or null.
- solutionDescription: 1-2 sentences or null.
- milestones: array of up to 3 strings (roadmap/timeline items). Empty array if none.
- traction: string or null (users, pilots, revenue, validation signals).
- confidenceNotes: one short sentence listing what was found and what was missing.
Output format: {"startupName":...,"problemStatement":...,"solutionDescription":...,"milestones":[...],"traction":...,"confidenceNotes":"..."}`

// maxPromptBytes bounds how much deck text goes into the prompt.
const maxPromptBytes = 12000

// LLMExtractor extracts through an OpenAI-compatible chat endpoint.
type LLMExtractor struct {
	llm llms.Model
}

// NewLLMExtractor builds an extractor from the extraction config. The
// API key is required; BaseURL may point at any OpenAI-compatible host.
func NewLLMExtractor(cfg config.ExtractionConfig) (*LLMExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pitch: extraction api key is required")
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("pitch: init llm: %w", err)
	}
	return &LLMExtractor{llm: llm}, nil
}

// NewExtractor returns the LLM extractor when an API key is configured,
// the heuristic one otherwise.
func NewExtractor(cfg config.ExtractionConfig) (Extractor, error) {
	if cfg.APIKey == "" {
		return HeuristicExtractor{}, nil
	}
	return NewLLMExtractor(cfg)
}

func (x *LLMExtractor) Extract(ctx context.Context, slides []Slide) (*Extraction, error) {
	var b strings.Builder
	for _, s := range slides {
		fmt.Fprintf(&b, "[Slide %d]\n%s\n\n", s.SlideIndex+1, s.Text)
	}
	text := b.String()
	if len(text) > maxPromptBytes {
		text = text[:maxPromptBytes]
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, extractionSystem),
		llms.TextParts(schema.ChatMessageTypeHuman, "Extract from this pitch deck text:\n\n"+text),
	}
	completion, err := x.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(0.1),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("pitch: generate: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("pitch: empty completion")
	}
	return parseExtraction(completion.Choices[0].Content)
}

// parseExtraction decodes the model's JSON and clamps it to the
// extraction shape: nulls become empty strings, milestones cap at 3.
func parseExtraction(raw string) (*Extraction, error) {
	raw = strings.TrimSpace(raw)
	var parsed struct {
		StartupName         *string  `json:"startupName"`
		ProblemStatement    *string  `json:"problemStatement"`
		SolutionDescription *string  `json:"solutionDescription"`
		Milestones          []string `json:"milestones"`
		Traction            *string  `json:"traction"`
		ConfidenceNotes     *string  `json:"confidenceNotes"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("pitch: parse extraction: %w", err)
	}

	out := &Extraction{Milestones: parsed.Milestones}
	if out.Milestones == nil {
		out.Milestones = []string{}
	}
	if len(out.Milestones) > maxMilestones {
		out.Milestones = out.Milestones[:maxMilestones]
	}
	if parsed.StartupName != nil {
		out.StartupName = *parsed.StartupName
	}
	if parsed.ProblemStatement != nil {
		out.ProblemStatement = *parsed.ProblemStatement
	}
	if parsed.SolutionDescription != nil {
		out.SolutionDescription = *parsed.SolutionDescription
	}
	if parsed.Traction != nil {
		out.Traction = *parsed.Traction
	}
	if parsed.ConfidenceNotes != nil {
		out.ConfidenceNotes = *parsed.ConfidenceNotes
	} else {
		out.ConfidenceNotes = "Extracted with LLM."
	}
	return out, nil
}
