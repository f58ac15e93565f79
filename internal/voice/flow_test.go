package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
)

const silence = "\x00"

type scriptedRecognizer struct {
	mu      sync.Mutex
	lines   []string
	listens int
}

func (r *scriptedRecognizer) Listen(ctx context.Context) (string, error) {
	r.mu.Lock()
	r.listens++
	if len(r.lines) == 0 {
		r.mu.Unlock()
		<-ctx.Done()
		return "", ErrSilence
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	r.mu.Unlock()
	if line == silence {
		return "", ErrSilence
	}
	return line, nil
}

type recordingSpeaker struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSpeaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
	return nil
}

func (s *recordingSpeaker) said() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func testConfig() Config {
	return Config{SilenceTimeout: 5 * time.Millisecond, MaxReprompts: 2}
}

func TestFlow_HappyPath(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{"Spanish", "What is 3/4 + 1/4?", "I got 4/8"}}

	var got Fields
	calls := 0
	var states []State
	f := NewFlow(sp, rec, testConfig(),
		WithAnalyze(func(_ context.Context, v Fields) error {
			calls++
			got = v
			return nil
		}),
		OnStateChange(func(s State) { states = append(states, s) }),
	)

	outcome, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnalyzed, outcome)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Fields{Language: "Spanish", Problem: "What is 3/4 + 1/4?", Attempt: "I got 4/8"}, got)

	assert.Equal(t, []string{
		languagePrompt,
		"Helping you in Spanish.",
		problemPrompt,
		"Got it.",
		attemptPrompt,
		"Let me look at this.",
	}, sp.said())
	assert.Equal(t, []State{StateSelectLanguage, StateCaptureProblem, StateCaptureAttempt, StateAnalyzing, StateIdle}, states)
	assert.Equal(t, StateIdle, f.State())
}

func TestFlow_SilenceRepromptsThenIdle(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{"English", silence, silence, silence}}
	called := false
	f := NewFlow(sp, rec, testConfig(), WithAnalyze(func(context.Context, Fields) error {
		called = true
		return nil
	}))

	outcome, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDisengaged, outcome)
	assert.False(t, called)
	assert.Equal(t, StateIdle, f.State())
	assert.Empty(t, f.Fields().Problem, "silence never advances the field")
	assert.Equal(t, 4, rec.listens)

	said := sp.said()
	require.Len(t, said, 6)
	assert.Equal(t, RepromptMessage, said[3])
	assert.Equal(t, RepromptMessage, said[4])
	assert.Equal(t, DisengageMessage, said[5])
}

func TestFlow_SpeechResetsRepromptCounter(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{silence, silence, "French", silence, silence, "fractions", "guessed"}}
	f := NewFlow(sp, rec, testConfig())

	outcome, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnalyzed, outcome)
	assert.Equal(t, "French", f.Fields().Language)
}

func TestFlow_ResetClearsOnlyProblem(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{"English", " Reset ", silence, "new problem", "my attempt"}}
	var got Fields
	f := NewFlow(sp, rec, testConfig(),
		WithFields(Fields{Problem: "old problem", Attempt: "typed attempt"}),
		WithAnalyze(func(_ context.Context, v Fields) error {
			got = v
			return nil
		}),
	)

	_, err := f.Run(context.Background())
	require.NoError(t, err)

	said := sp.said()
	assert.Contains(t, said, problemReset)
	assert.Contains(t, said, problemResetWait, "custom re-prompt after reset")
	assert.NotContains(t, said, RepromptMessage)
	assert.Equal(t, "new problem", got.Problem)
	assert.Equal(t, "my attempt", got.Attempt)
}

func TestFlow_ResetKeepsAttemptWhileCapturingProblem(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{"English", "reset"}}
	f := NewFlow(sp, rec, testConfig(), WithFields(Fields{Problem: "old", Attempt: "typed attempt"}))

	outcome, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDisengaged, outcome)
	assert.Empty(t, f.Fields().Problem)
	assert.Equal(t, "typed attempt", f.Fields().Attempt)
}

func TestFlow_ResetInAttempt(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{"English", "p", "reset", "second try"}}
	f := NewFlow(sp, rec, testConfig())

	_, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, sp.said(), attemptReset)
	assert.Equal(t, "p", f.Fields().Problem)
	assert.Equal(t, "second try", f.Fields().Attempt)
}

func TestFlow_ResetInLanguageIsAnAnswer(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{"reset"}}
	f := NewFlow(sp, rec, testConfig())

	_, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "reset", f.Fields().Language)
}

func TestFlow_TextModeFromAnyState(t *testing.T) {
	scripts := map[string][]string{
		"language": {"switch to Text Mode please"},
		"problem":  {"English", "text mode"},
		"attempt":  {"English", "p", "text mode"},
	}
	for name, lines := range scripts {
		t.Run(name, func(t *testing.T) {
			sp := &recordingSpeaker{}
			called := false
			f := NewFlow(sp, &scriptedRecognizer{lines: lines}, testConfig(),
				WithAnalyze(func(context.Context, Fields) error {
					called = true
					return nil
				}))

			outcome, err := f.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, OutcomeTextMode, outcome)
			assert.Equal(t, coach.PreferenceText, f.Preference())
			assert.Equal(t, StateIdle, f.State())
			assert.False(t, called)
			said := sp.said()
			assert.Equal(t, TextModeMessage, said[len(said)-1])
		})
	}
}

func TestFlow_NoConsentStaysIdle(t *testing.T) {
	sp := &recordingSpeaker{}
	rec := &scriptedRecognizer{lines: []string{"English"}}
	f := NewFlow(sp, rec, testConfig(), WithConsent(false))

	outcome, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeConsentRequired, outcome)
	assert.Equal(t, []string{ConsentMessage}, sp.said())
	assert.Equal(t, 0, rec.listens)
	assert.Equal(t, StateIdle, f.State())
}

func TestFlow_NonAudioPreferenceIsInactive(t *testing.T) {
	sp := &recordingSpeaker{}
	f := NewFlow(sp, &scriptedRecognizer{}, testConfig(), WithPreference(coach.PreferenceText))

	outcome, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInactive, outcome)
	assert.Empty(t, sp.said())
}

func TestFlow_RecognizerErrorCountsAsSilence(t *testing.T) {
	sp := &recordingSpeaker{}
	f := NewFlow(sp, failingRecognizer{}, Config{SilenceTimeout: 5 * time.Millisecond, MaxReprompts: 1})

	outcome, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDisengaged, outcome)
	assert.Equal(t, []string{languagePrompt, RepromptMessage, DisengageMessage}, sp.said())
}

func TestFlow_AnalyzeErrorIsReturned(t *testing.T) {
	rec := &scriptedRecognizer{lines: []string{"English", "p", "a"}}
	boom := errors.New("boom")
	f := NewFlow(&recordingSpeaker{}, rec, testConfig(), WithAnalyze(func(context.Context, Fields) error {
		return boom
	}))

	outcome, err := f.Run(context.Background())
	assert.Equal(t, OutcomeAnalyzed, outcome)
	assert.ErrorIs(t, err, boom)
}

func TestFlow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &scriptedRecognizer{}
	f := NewFlow(&recordingSpeaker{}, rec, Config{SilenceTimeout: time.Minute, MaxReprompts: 2})

	done := make(chan struct{})
	var outcome Outcome
	var err error
	go func() {
		outcome, err = f.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("flow did not stop after cancel")
	}
	assert.Equal(t, OutcomeCancelled, outcome)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, f.State())
}

type failingRecognizer struct{}

func (failingRecognizer) Listen(context.Context) (string, error) {
	return "", errors.New("microphone unavailable")
}
