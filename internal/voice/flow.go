package voice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/mistakecoach/internal/coach"
)

// State is a step of the guided voice flow.
type State int

const (
	StateIdle           State = iota // Waiting; nothing is being captured
	StateSelectLanguage              // Asking which language to reply in
	StateCaptureProblem              // Capturing the problem statement
	StateCaptureAttempt              // Capturing how the learner tried
	StateAnalyzing                   // Analysis hook running
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelectLanguage:
		return "select-language"
	case StateCaptureProblem:
		return "capture-problem"
	case StateCaptureAttempt:
		return "capture-attempt"
	case StateAnalyzing:
		return "analyzing"
	}
	return "unknown"
}

// Outcome is why a flow run ended.
type Outcome int

const (
	OutcomeInactive        Outcome = iota // Preference is not audio
	OutcomeConsentRequired                // Child learner without parental consent
	OutcomeDisengaged                     // Re-prompts ran out
	OutcomeTextMode                       // Learner asked for text mode
	OutcomeAnalyzed                       // All fields captured and analysis ran
	OutcomeCancelled                      // Context ended
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInactive:
		return "inactive"
	case OutcomeConsentRequired:
		return "consent-required"
	case OutcomeDisengaged:
		return "disengaged"
	case OutcomeTextMode:
		return "text-mode"
	case OutcomeAnalyzed:
		return "analyzed"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Spoken lines used by the flow.
const (
	ConsentMessage   = "Parental consent is required to continue. Please confirm to start learning."
	RepromptMessage  = "I'm sorry, I didn’t quite hear a response. Let's try again. You can speak now, or switch modes if you prefer."
	DisengageMessage = "That's perfectly okay. I'll stay here if you need me."
	TextModeMessage  = "Switching to text mode."
	languagePrompt   = "Hello! I'm so glad we're learning together. Which language do you prefer?"
	problemPrompt    = "Tell me the problem you're working on. You can explain it in your own words."
	attemptPrompt    = "Tell me how you tried to solve it. It's okay to be unsure!"
	problemReset     = "Let’s start fresh. Please tell me the problem again."
	problemResetWait = "I'm waiting to hear the problem. Please say it when you're ready."
	attemptReset     = "Let’s start fresh. Tell me how you tried again."
	attemptResetWait = "I'm waiting to hear how you tried. What are your thoughts?"
	resetCommand     = "reset"
	textModeCommand  = "text mode"
	defaultSilence   = 15 * time.Second
	defaultReprompts = 2
)

// ErrSilence is returned by a Recognizer that heard nothing before its
// context ended.
var ErrSilence = errors.New("voice: no speech detected")

// Speaker says text aloud and returns once speech has finished.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Recognizer captures one utterance. It must return when ctx ends.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Fields are the values captured by the flow.
type Fields struct {
	Language string
	Problem  string
	Attempt  string
}

// AnalyzeFunc runs the analysis once all fields are captured.
type AnalyzeFunc func(ctx context.Context, f Fields) error

// Config tunes silence handling.
type Config struct {
	SilenceTimeout time.Duration
	MaxReprompts   int
}

// DefaultConfig returns a 15 second silence timeout with two re-prompts.
func DefaultConfig() Config {
	return Config{SilenceTimeout: defaultSilence, MaxReprompts: defaultReprompts}
}

// step is one row of the transition table.
type step struct {
	prompt    string
	set       func(*Fields, string)
	ack       func(heard string) string
	next      State
	resetSay  string
	resetWait string
}

var steps = map[State]step{
	StateSelectLanguage: {
		prompt: languagePrompt,
		set:    func(f *Fields, v string) { f.Language = v },
		ack:    func(heard string) string { return "Helping you in " + heard + "." },
		next:   StateCaptureProblem,
	},
	StateCaptureProblem: {
		prompt:    problemPrompt,
		set:       func(f *Fields, v string) { f.Problem = v },
		ack:       func(string) string { return "Got it." },
		next:      StateCaptureAttempt,
		resetSay:  problemReset,
		resetWait: problemResetWait,
	},
	StateCaptureAttempt: {
		prompt:    attemptPrompt,
		set:       func(f *Fields, v string) { f.Attempt = v },
		ack:       func(string) string { return "Let me look at this." },
		next:      StateAnalyzing,
		resetSay:  attemptReset,
		resetWait: attemptResetWait,
	},
}

// Option configures a Flow.
type Option func(*Flow)

// WithConsent records whether the learner may start. Defaults to true.
func WithConsent(ok bool) Option {
	return func(f *Flow) { f.consent = ok }
}

// WithPreference sets the accessibility preference the flow starts with.
// Defaults to audio.
func WithPreference(p coach.Preference) Option {
	return func(f *Flow) { f.preference = p }
}

// WithFields seeds values typed before the flow started.
func WithFields(v Fields) Option {
	return func(f *Flow) { f.fields = v }
}

// WithAnalyze sets the hook invoked on reaching Analyzing.
func WithAnalyze(fn AnalyzeFunc) Option {
	return func(f *Flow) { f.analyze = fn }
}

// OnStateChange registers a callback fired on every transition.
func OnStateChange(fn func(State)) Option {
	return func(f *Flow) { f.onState = fn }
}

// Flow is the guided audio-only intake: language, problem, attempt, then
// analysis. A Flow runs once; create a new one per session.
type Flow struct {
	speaker Speaker
	rec     Recognizer
	cfg     Config
	consent bool
	analyze AnalyzeFunc
	onState func(State)

	mu         sync.Mutex
	state      State
	fields     Fields
	preference coach.Preference
	reprompts  int
}

// NewFlow creates a flow over the given speech engines.
func NewFlow(speaker Speaker, rec Recognizer, cfg Config, opts ...Option) *Flow {
	if cfg.SilenceTimeout <= 0 {
		cfg.SilenceTimeout = defaultSilence
	}
	if cfg.MaxReprompts < 0 {
		cfg.MaxReprompts = 0
	}
	f := &Flow{
		speaker:    speaker,
		rec:        rec,
		cfg:        cfg,
		consent:    true,
		preference: coach.PreferenceAudio,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fields returns the values captured so far.
func (f *Flow) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Preference returns the accessibility preference, which becomes Text when
// the learner asks for text mode.
func (f *Flow) Preference() coach.Preference {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preference
}

// Run drives the flow until it reaches Analyzing, goes back to Idle, or ctx
// ends. The returned error is the analyze hook's error or ctx's error.
func (f *Flow) Run(ctx context.Context) (Outcome, error) {
	if f.Preference() != coach.PreferenceAudio {
		f.setState(StateIdle)
		return OutcomeInactive, nil
	}
	if !f.consent {
		f.say(ctx, ConsentMessage)
		f.setState(StateIdle)
		return OutcomeConsentRequired, nil
	}

	f.setState(StateSelectLanguage)
	say := steps[StateSelectLanguage].prompt
	waiting := ""

	for {
		st := f.State()
		if st == StateAnalyzing {
			return f.runAnalyze(ctx)
		}
		s := steps[st]

		if say != "" {
			f.say(ctx, say)
		}
		heard, ok := f.listen(ctx)
		if ctx.Err() != nil {
			f.setState(StateIdle)
			return OutcomeCancelled, ctx.Err()
		}

		if !ok {
			if f.bumpReprompt() {
				say = RepromptMessage
				if waiting != "" {
					say = waiting
				}
				continue
			}
			f.say(ctx, DisengageMessage)
			f.setState(StateIdle)
			return OutcomeDisengaged, nil
		}

		f.mu.Lock()
		f.reprompts = 0
		f.mu.Unlock()

		cmd := strings.ToLower(strings.TrimSpace(heard))
		if cmd == resetCommand && s.resetSay != "" {
			f.mu.Lock()
			s.set(&f.fields, "")
			f.mu.Unlock()
			say, waiting = s.resetSay, s.resetWait
			continue
		}
		if strings.Contains(cmd, textModeCommand) {
			f.say(ctx, TextModeMessage)
			f.mu.Lock()
			f.preference = coach.PreferenceText
			f.mu.Unlock()
			f.setState(StateIdle)
			return OutcomeTextMode, nil
		}

		heard = strings.TrimSpace(heard)
		f.mu.Lock()
		s.set(&f.fields, heard)
		f.mu.Unlock()
		f.say(ctx, s.ack(heard))

		f.setState(s.next)
		say, waiting = steps[s.next].prompt, ""
	}
}

func (f *Flow) runAnalyze(ctx context.Context) (Outcome, error) {
	defer f.setState(StateIdle)
	if f.analyze == nil {
		return OutcomeAnalyzed, nil
	}
	return OutcomeAnalyzed, f.analyze(ctx, f.Fields())
}

// listen waits for one utterance. Recognizer errors and empty transcripts
// count as silence once the timeout has passed.
func (f *Flow) listen(ctx context.Context) (string, bool) {
	lctx, cancel := context.WithTimeout(ctx, f.cfg.SilenceTimeout)
	defer cancel()

	text, err := f.rec.Listen(lctx)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, true
	}
	if err != nil && !errors.Is(err, ErrSilence) && !errors.Is(err, context.DeadlineExceeded) {
		slog.Debug("voice: recognizer failed", "state", f.State().String(), "error", err)
	}
	<-lctx.Done()
	return "", false
}

func (f *Flow) say(ctx context.Context, text string) {
	if err := f.speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		slog.Debug("voice: speak failed", "error", err)
	}
}

func (f *Flow) bumpReprompt() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reprompts >= f.cfg.MaxReprompts {
		return false
	}
	f.reprompts++
	return true
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	changed := f.state != s
	f.state = s
	f.mu.Unlock()
	if changed && f.onState != nil {
		f.onState(s)
	}
}
