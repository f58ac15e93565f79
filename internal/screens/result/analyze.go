package result

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/screen"
)

// AnalyzedMsg carries a finished analysis back to the screen that asked.
type AnalyzedMsg struct {
	Input  coach.AnalyzeInput
	Result *coach.AnalysisResult
	Err    error
}

// Request fills the learner-derived fields of in: name, prior tags, the
// first-session flag and consent.
func Request(deps screen.Deps, in coach.AnalyzeInput) coach.AnalyzeInput {
	return deps.Learner.Personalize(in)
}

// Analyze runs the analysis and records it into the learner history.
// Consent advisories are shown but not recorded. imagePath is kept as the
// history preview. The call is abandoned when parent ends.
func Analyze(parent context.Context, deps screen.Deps, in coach.AnalyzeInput, imagePath string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()

		res, err := deps.Coach.Analyze(ctx, in)
		if err != nil {
			return AnalyzedMsg{Input: in, Err: err}
		}
		if !res.IsConsentRequired() {
			entry := learner.NewEntry(in, imagePath, res, time.Now())
			if err := deps.Learner.RecordAnalysis(ctx, entry); err != nil {
				slog.Error("record analysis", "err", err)
			}
		}
		return AnalyzedMsg{Input: in, Result: res}
	}
}
