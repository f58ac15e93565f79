package result

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/llm"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen/screentest"
)

func sampleResult() *coach.AnalysisResult {
	return &coach.AnalysisResult{
		LearningStatus:    "Almost there",
		Diagnosis:         "You added the denominators.",
		RootCause:         "Treating a fraction as two whole numbers.",
		CorrectReasoning:  "Find a common denominator first.",
		MisconceptionTag:  "Adds denominators",
		KeyInsight:        "Pieces must be the same size.",
		PracticeQuestions: []string{"alpha", "bravo", "charlie", "delta", "echo"},
		FollowUpQuestion:  "Why same size?",
		DetectedCategory:  coach.CategoryMath,
	}
}

func sampleInput() coach.AnalyzeInput {
	return coach.AnalyzeInput{
		Category: coach.CategoryAuto,
		Problem:  "1/2 + 1/3",
		Attempt:  "2/5",
		Language: "Auto",
		Mode:     coach.ModeStandard,
	}
}

const evaluation = `{
	"score": 1,
	"maxScore": 3,
	"performanceMessage": "Learning Check: keep going!",
	"results": [
		{"isCorrect": true, "feedback": "Yes."},
		{"isCorrect": false, "feedback": "Not quite."},
		{"isCorrect": false, "feedback": "Try again."}
	],
	"learningSnapshot": ["Adds denominators", "Same size first", "Score: 1 / 3", "Keep going"]
}`

func TestNew_ShowsThreePracticeQuestions(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps, sampleInput(), sampleResult())

	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, s.Practice())
	assert.Len(t, s.answers, 3)

	view := s.View(100, 500)
	assert.Contains(t, view, "charlie")
	assert.NotContains(t, view, "delta")
	assert.Contains(t, view, "What happened")
	assert.Contains(t, view, "Key insight")
}

func TestCheckDisabledUntilAnswered(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps, sampleInput(), sampleResult())

	assert.True(t, s.menu.Items[actionCheck].Disabled)
	assert.True(t, s.menu.Items[actionRetry].Disabled)

	s.answers[0].SetValue("2/4")
	s.syncMenu()
	assert.False(t, s.menu.Items[actionCheck].Disabled)
}

func TestCheckThenRetry(t *testing.T) {
	deps, mock := screentest.Deps(t, llm.MockResponse{Content: json.RawMessage(evaluation)})
	s := New(deps, sampleInput(), sampleResult())
	s.answers[0].SetValue("2/4")
	s.syncMenu()

	msgs := screentest.Run(s.check())
	require.Len(t, msgs, 1)
	for _, m := range msgs {
		s.Update(m)
	}

	require.NotNil(t, s.evaluation)
	assert.Equal(t, 1, s.evaluation.Score)
	assert.True(t, s.menu.Items[actionCheck].Disabled)
	assert.False(t, s.menu.Items[actionRetry].Disabled)
	assert.Equal(t, len(s.answers), s.focus)
	assert.Contains(t, s.View(100, 500), "Learning Check: keep going!")

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, req.Messages[0].Content, `["alpha","bravo","charlie"]`)

	s.retry()
	assert.Nil(t, s.evaluation)
	assert.Empty(t, s.answers[0].Value())
	assert.Equal(t, 0, s.focus)
	assert.True(t, s.menu.Items[actionRetry].Disabled)
}

func TestCheckFailureShowsMessage(t *testing.T) {
	deps, _ := screentest.Deps(t, llm.MockResponse{Content: json.RawMessage(`{"score": 1}`)})
	s := New(deps, sampleInput(), sampleResult())
	s.answers[1].SetValue("x")

	for _, m := range screentest.Run(s.check()) {
		s.Update(m)
	}

	assert.Nil(t, s.evaluation)
	assert.Equal(t, coach.ErrEvaluate.Error(), s.evalErr)
	assert.False(t, s.menu.Items[actionRetry].Disabled)
}

func TestAlternativeAndExample(t *testing.T) {
	deps, _ := screentest.Deps(t,
		llm.MockResponse{Content: json.RawMessage("Think of pizza slices.")},
		llm.MockResponse{Content: json.RawMessage("Sharing a cake.")},
	)
	s := New(deps, sampleInput(), sampleResult())

	for _, m := range screentest.Run(s.fetchAlternative()) {
		s.Update(m)
	}
	for _, m := range screentest.Run(s.fetchExample()) {
		s.Update(m)
	}

	assert.Equal(t, "Think of pizza slices.", s.alternative)
	assert.Equal(t, "Sharing a cake.", s.example)
	assert.False(t, s.busy())
}

func TestBackHomePops(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps, sampleInput(), sampleResult())

	cmd := s.menu.Items[actionHome].Action()
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	raw, err := json.Marshal(sampleResult())
	require.NoError(t, err)
	deps, _ := screentest.Deps(t, llm.MockResponse{Content: raw})

	msg := Analyze(context.Background(), deps, Request(deps, sampleInput()), "/tmp/shot.png")().(AnalyzedMsg)
	require.NoError(t, msg.Err)
	assert.Equal(t, "Adds denominators", msg.Result.MisconceptionTag)

	hist := deps.Learner.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "/tmp/shot.png", hist[0].ImagePreview)
	assert.Equal(t, coach.CategoryMath, hist[0].Category)
	assert.Equal(t, 1, deps.Learner.Profile().TotalDiagnostics)
}

func TestAnalyzeConsentAdvisoryNotRecorded(t *testing.T) {
	deps, mock := screentest.Deps(t)
	in := sampleInput()
	in.Mode = coach.ModeKids

	msg := Analyze(context.Background(), deps, Request(deps, in), "")().(AnalyzedMsg)
	require.NoError(t, msg.Err)
	assert.True(t, msg.Result.IsConsentRequired())
	assert.Empty(t, deps.Learner.History())
	assert.Equal(t, 0, mock.CallCount())
}

func TestAnalyzeAbandonedWithParent(t *testing.T) {
	raw, err := json.Marshal(sampleResult())
	require.NoError(t, err)
	deps, _ := screentest.Deps(t, llm.MockResponse{Content: raw})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := Analyze(ctx, deps, Request(deps, sampleInput()), "")().(AnalyzedMsg)
	assert.ErrorIs(t, msg.Err, context.Canceled)
	assert.Empty(t, deps.Learner.History())
}
