package llm

import "context"

// Purpose labels recorded with every request event.
const (
	PurposeAnalysis    = "mistake-analysis"
	PurposeAlternative = "alternative-explanation"
	PurposeExample     = "real-life-example"
	PurposeEvaluation  = "practice-evaluation"
	PurposeChat        = "chat"
	PurposeVoiceChat   = "voice-chat"

	purposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose labels the requests made with ctx. An empty purpose leaves
// ctx unchanged.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if purpose == "" {
		return ctx
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return purposeUnknown
}
