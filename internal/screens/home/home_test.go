package home

import (
	"context"
	"encoding/json"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/llm"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen/screentest"
	"github.com/abhisek/mistakecoach/internal/screens/result"
	voicescreen "github.com/abhisek/mistakecoach/internal/screens/voice"
)

const analysis = `{
	"learningStatus": "Almost there",
	"diagnosis": "You added the denominators.",
	"rootCause": "Treating a fraction as two whole numbers.",
	"correctReasoning": "Find a common denominator first.",
	"misconceptionTag": "Adds denominators",
	"keyInsight": "Pieces must be the same size.",
	"practiceQuestions": ["a", "b", "c"],
	"followUpQuestion": "Why?",
	"detectedCategory": "Mathematics"
}`

func TestKidsWithoutConsentDisablesAnalyze(t *testing.T) {
	deps, _ := screentest.Deps(t)
	require.NoError(t, deps.Learner.SetPersonalization(context.Background(), "mia", coach.Age6to9, false))

	h := New(deps)
	assert.Equal(t, []string{string(coach.ModeKids)}, h.mode.Options)
	assert.True(t, h.menu.Items[itemAnalyze].Disabled)
	assert.True(t, h.menu.Items[itemVoice].Disabled)
	assert.Nil(t, h.analyze())
}

func TestAdultModes(t *testing.T) {
	deps, _ := screentest.Deps(t)
	require.NoError(t, deps.Learner.SetPersonalization(context.Background(), "sam", coach.Age18Plus, false))

	h := New(deps)
	assert.Equal(t, []string{string(coach.ModeStandard), string(coach.ModeAccessibility)}, h.mode.Options)
	assert.False(t, h.menu.Items[itemAnalyze].Disabled)
}

func TestPreferenceOnlyInAccessibilityMode(t *testing.T) {
	deps, _ := screentest.Deps(t)
	require.NoError(t, deps.Learner.SetPersonalization(context.Background(), "sam", coach.Age18Plus, false))
	h := New(deps)

	h.setFocus(fieldMode)
	h.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, fieldProblem, h.focus)

	h.setFocus(fieldMode)
	h.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	require.Equal(t, coach.ModeAccessibility, h.selectedMode())
	h.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, fieldPreference, h.focus)

	h.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, coach.PreferenceAudio, h.input().Preference)
}

func TestVoiceIntakeNeedsAudioPreference(t *testing.T) {
	deps, _ := screentest.Deps(t)
	require.NoError(t, deps.Learner.SetPersonalization(context.Background(), "sam", coach.Age18Plus, false))
	h := New(deps)

	require.Equal(t, coach.ModeStandard, h.selectedMode())
	assert.Equal(t, coach.PreferenceNone, h.input().Preference)
	assert.True(t, h.menu.Items[itemVoice].Disabled)
	assert.Nil(t, h.openVoice())

	h.setFocus(fieldMode)
	h.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	h.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	require.Equal(t, fieldPreference, h.focus)
	assert.Equal(t, coach.PreferenceText, h.input().Preference)
	assert.True(t, h.menu.Items[itemVoice].Disabled)
	assert.Nil(t, h.openVoice())

	h.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	require.Equal(t, coach.PreferenceAudio, h.input().Preference)
	assert.False(t, h.menu.Items[itemVoice].Disabled)

	cmd := h.openVoice()
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &voicescreen.VoiceScreen{}, push.Screen)
}

func TestAnalyzeRequiresProblemAndAttempt(t *testing.T) {
	deps, mock := screentest.Deps(t)
	h := New(deps)

	assert.Nil(t, h.analyze())
	assert.Contains(t, h.errMsg, "Tell me the problem")

	h.problem.SetValue("1/2 + 1/3")
	assert.Nil(t, h.analyze())
	assert.Contains(t, h.errMsg, "how you tried")

	h.Update(tea.KeyPressMsg{Code: 'x', Mod: tea.ModCtrl})
	assert.Empty(t, h.errMsg)
	assert.Equal(t, 0, mock.CallCount())
}

func TestAnalyzeRejectsMissingImage(t *testing.T) {
	deps, _ := screentest.Deps(t)
	h := New(deps)
	h.problem.SetValue("1/2 + 1/3")
	h.attempt.SetValue("2/5")
	h.image.SetValue("/does/not/exist.png")

	assert.Nil(t, h.analyze())
	assert.NotEmpty(t, h.errMsg)
	assert.False(t, h.analyzing)
}

func TestAnalyzePushesResult(t *testing.T) {
	deps, mock := screentest.Deps(t, llm.MockResponse{Content: json.RawMessage(analysis)})
	h := New(deps)
	h.problem.SetValue("1/2 + 1/3")
	h.attempt.SetValue("2/5")

	cmd := h.analyze()
	require.NotNil(t, cmd)
	assert.True(t, h.analyzing)
	assert.True(t, h.menu.Items[itemAnalyze].Disabled)

	msgs := screentest.Run(cmd)
	require.Len(t, msgs, 1)
	_, next := h.Update(msgs[0])
	require.NotNil(t, next)

	push, ok := next().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &result.ResultScreen{}, push.Screen)
	assert.False(t, h.analyzing)
	assert.Equal(t, 1, mock.CallCount())
	assert.Len(t, deps.Learner.History(), 1)
}

func TestAnalyzeFailureShowsInlineError(t *testing.T) {
	deps, _ := screentest.Deps(t, llm.MockResponse{Content: json.RawMessage(`{"diagnosis": 1}`)})
	h := New(deps)
	h.problem.SetValue("p")
	h.attempt.SetValue("a")

	for _, m := range screentest.Run(h.analyze()) {
		h.Update(m)
	}
	assert.Equal(t, coach.ErrFormat.Error(), h.errMsg)
	assert.Contains(t, h.View(100, 80), "ctrl+x to dismiss")
}
