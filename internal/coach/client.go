package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mistakecoach/internal/llm"
)

// Fallback lines for the freeform helpers.
const (
	AlternativeFallback = "I'm having trouble thinking of another way to explain this right now. Let's try reviewing the basics!"
	ExampleFallback     = "I'm still thinking of the best real-life example. Why don't we try another quick practice while I work on it?"
)

// Config tunes the model calls.
type Config struct {
	AnalysisMaxTokens   int
	AnalysisTemperature float64

	AlternativeMaxTokens   int
	AlternativeTemperature float64

	ExampleMaxTokens   int
	ExampleTemperature float64

	EvaluationMaxTokens   int
	EvaluationTemperature float64

	ChatMaxTokens   int
	ChatTemperature float64
}

// DefaultConfig returns the standard call settings.
func DefaultConfig() Config {
	return Config{
		AnalysisMaxTokens:      2048,
		AnalysisTemperature:    0.3,
		AlternativeMaxTokens:   1024,
		AlternativeTemperature: 0.8,
		ExampleMaxTokens:       1024,
		ExampleTemperature:     0.7,
		EvaluationMaxTokens:    1024,
		EvaluationTemperature:  0.1,
		ChatMaxTokens:          1024,
		ChatTemperature:        0.7,
	}
}

// Client talks to the model on behalf of the learner.
type Client struct {
	provider llm.Provider
	cfg      Config
}

// NewClient creates a Client. provider may be nil, in which case Analyze
// and EvaluatePractice fail and the freeform helpers return fallbacks.
func NewClient(provider llm.Provider, cfg Config) *Client {
	return &Client{provider: provider, cfg: cfg}
}

// Available reports whether a model provider is configured.
func (c *Client) Available() bool {
	return c != nil && c.provider != nil
}

// AnalyzeInput is everything the learner submits for one mistake.
type AnalyzeInput struct {
	Category      Category
	Problem       string
	Attempt       string
	CorrectAnswer string
	Language      string
	Mode          Mode
	Preference    Preference
	LearnerName   string
	PreviousTags  []string
	Image         *llm.Image
	FirstSession  bool
	Consent       bool
}

// Analyze diagnoses a mistake. Kids mode without consent returns
// ConsentRequiredResult without contacting the model. Endpoint and parse
// failures are reported as ErrFormat.
func (c *Client) Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisResult, error) {
	if in.Mode == ModeKids && !in.Consent {
		return ConsentRequiredResult(), nil
	}
	if !c.Available() {
		return nil, fmt.Errorf("%w: %w", ErrFormat, llm.ErrNoProvider)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeAnalysis)

	data := promptData{
		Category:      in.Category,
		Manual:        in.Category != "" && in.Category != CategoryAuto,
		Kids:          in.Mode == ModeKids,
		Audio:         in.Preference == PreferenceAudio,
		LearnerName:   in.LearnerName,
		Language:      responseLanguage(in.Language),
		FirstSession:  in.FirstSession,
		PreviousTags:  in.PreviousTags,
		Problem:       in.Problem,
		Attempt:       in.Attempt,
		CorrectAnswer: in.CorrectAnswer,
	}
	system, err := render(analysisSystemTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("build analysis prompt: %w", err)
	}
	user, err := render(analysisUserTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("build analysis message: %w", err)
	}

	msg := llm.Message{Role: llm.RoleUser, Content: user}
	if in.Image != nil {
		msg.Images = []llm.Image{*in.Image}
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{msg},
		Schema:      AnalysisSchema,
		MaxTokens:   c.cfg.AnalysisMaxTokens,
		Temperature: c.cfg.AnalysisTemperature,
	})
	if err != nil {
		slog.Error("analysis request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	content := llm.StripCodeFence(resp.Content)
	if err := llm.Validate(AnalysisSchema, content); err != nil {
		slog.Warn("analysis response rejected", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	var result AnalysisResult
	if err := json.Unmarshal(content, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	result.DetectedCategory = NormalizeCategory(string(result.DetectedCategory))

	return &result, nil
}

// AltInput asks for a different explanation of a diagnosed mistake.
type AltInput struct {
	Problem           string
	Attempt           string
	PreviousDiagnosis string
	Mode              Mode
	Language          string
	LearnerName       string
}

// AlternativeExplanation re-explains the mistake in a different style.
// Failures return AlternativeFallback.
func (c *Client) AlternativeExplanation(ctx context.Context, in AltInput) string {
	data := promptData{
		Kids:              in.Mode == ModeKids,
		LearnerName:       in.LearnerName,
		Language:          auxLanguage(in.Language),
		Problem:           in.Problem,
		Attempt:           in.Attempt,
		PreviousDiagnosis: in.PreviousDiagnosis,
	}
	return c.freeform(llm.WithPurpose(ctx, llm.PurposeAlternative),
		alternativeSystemTemplate, alternativeUserTemplate, data,
		c.cfg.AlternativeMaxTokens, c.cfg.AlternativeTemperature, AlternativeFallback)
}

// ExampleInput asks for an everyday example of a concept.
type ExampleInput struct {
	Concept     string
	Mode        Mode
	Language    string
	LearnerName string
}

// RealLifeExample explains a concept with a concrete everyday example.
// Failures return ExampleFallback.
func (c *Client) RealLifeExample(ctx context.Context, in ExampleInput) string {
	data := promptData{
		Kids:        in.Mode == ModeKids,
		LearnerName: in.LearnerName,
		Language:    auxLanguage(in.Language),
		Problem:     in.Concept,
	}
	return c.freeform(llm.WithPurpose(ctx, llm.PurposeExample),
		exampleSystemTemplate, exampleUserTemplate, data,
		c.cfg.ExampleMaxTokens, c.cfg.ExampleTemperature, ExampleFallback)
}

func (c *Client) freeform(ctx context.Context, sys, usr *template.Template, data promptData, maxTokens int, temp float64, fallback string) string {
	if !c.Available() {
		return fallback
	}
	system, err := render(sys, data)
	if err != nil {
		slog.Error("render prompt", "err", err)
		return fallback
	}
	user, err := render(usr, data)
	if err != nil {
		slog.Error("render message", "err", err)
		return fallback
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		MaxTokens:   maxTokens,
		Temperature: temp,
	})
	if err != nil {
		slog.Warn("freeform request failed", "purpose", llm.PurposeFrom(ctx), "err", err)
		return fallback
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fallback
	}
	return text
}

// EvalInput is one practice submission.
type EvalInput struct {
	Problem     string
	Questions   []string
	Answers     []string
	Language    string
	Mode        Mode
	LearnerName string
}

// EvaluatePractice grades the first PracticeCount answers. Failures are
// reported as ErrEvaluate.
func (c *Client) EvaluatePractice(ctx context.Context, in EvalInput) (*PracticeEvaluation, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: %w", ErrEvaluate, llm.ErrNoProvider)
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluation)

	questions := in.Questions
	if len(questions) > PracticeCount {
		questions = questions[:PracticeCount]
	}
	answers := make([]string, len(questions))
	copy(answers, in.Answers)

	data := promptData{
		Kids:        in.Mode == ModeKids,
		LearnerName: in.LearnerName,
		Language:    auxLanguage(in.Language),
		Problem:     in.Problem,
		Questions:   questions,
		Answers:     answers,
	}
	system, err := render(evaluationSystemTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}
	user, err := render(evaluationUserTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("build evaluation message: %w", err)
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Schema:      EvaluationSchema,
		MaxTokens:   c.cfg.EvaluationMaxTokens,
		Temperature: c.cfg.EvaluationTemperature,
	})
	if err != nil {
		slog.Error("evaluation request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}

	content := llm.StripCodeFence(resp.Content)
	if err := llm.Validate(EvaluationSchema, content); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}
	var eval PracticeEvaluation
	if err := json.Unmarshal(content, &eval); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}
	return &eval, nil
}

// Extras holds the two optional follow-ups for a result.
type Extras struct {
	Alternative string
	Example     string
}

// Extras fetches the alternative explanation and the real-life example
// concurrently.
func (c *Client) Extras(ctx context.Context, alt AltInput, ex ExampleInput) Extras {
	var out Extras
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Alternative = c.AlternativeExplanation(gctx, alt)
		return nil
	})
	g.Go(func() error {
		out.Example = c.RealLifeExample(gctx, ex)
		return nil
	})
	_ = g.Wait()
	return out
}

// ExtrasFor builds the Extras inputs from a result and the submission it
// came from.
func ExtrasFor(in AnalyzeInput, r *AnalysisResult) (AltInput, ExampleInput) {
	concept := r.LearningPoint
	if concept == "" {
		concept = r.KeyInsight
	}
	return AltInput{
			Problem:           in.Problem,
			Attempt:           in.Attempt,
			PreviousDiagnosis: r.Diagnosis,
			Mode:              in.Mode,
			Language:          in.Language,
			LearnerName:       in.LearnerName,
		}, ExampleInput{
			Concept:     concept,
			Mode:        in.Mode,
			Language:    in.Language,
			LearnerName: in.LearnerName,
		}
}
