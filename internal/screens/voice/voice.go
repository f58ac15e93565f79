// Package voice is the guided voice intake screen. Spoken prompts appear
// as lines and typed utterances stand in for speech.
package voice

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/screens/result"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
	"github.com/abhisek/mistakecoach/internal/voice"
)

type spokenMsg struct{ text string }

type stateMsg struct{ state voice.State }

type doneMsg struct {
	outcome voice.Outcome
	err     error
}

type line struct {
	learner bool
	text    string
}

// VoiceScreen runs a voice.Flow against a voice.Channel.
type VoiceScreen struct {
	deps   screen.Deps
	in     coach.AnalyzeInput
	seed   voice.Fields
	ch     *voice.Channel
	events chan tea.Msg
	ctx    context.Context
	cancel context.CancelFunc

	input   components.TextInput
	lines   []line
	state   voice.State
	outcome voice.Outcome
	running bool
	errMsg  string
}

var _ screen.Screen = (*VoiceScreen)(nil)
var _ screen.KeyHintProvider = (*VoiceScreen)(nil)
var _ screen.Closer = (*VoiceScreen)(nil)

// New creates the screen. in carries the form settings; seed pre-fills
// the captured fields.
func New(deps screen.Deps, in coach.AnalyzeInput, seed voice.Fields) *VoiceScreen {
	return &VoiceScreen{
		deps:  deps,
		in:    in,
		seed:  seed,
		input: components.NewTextInput("Say", "Type what you would say and press Enter", 500),
	}
}

func (s *VoiceScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Focus(), s.start())
}

// start launches a fresh flow.
func (s *VoiceScreen) start() tea.Cmd {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.ctx, s.cancel = ctx, cancel
	ch := voice.NewChannel()
	s.ch = ch
	s.events = make(chan tea.Msg)
	s.running = true
	s.errMsg = ""
	s.lines = nil

	// Flow events and spoken lines share one forwarder so the screen sees
	// them in the order they happened.
	events := s.events
	flowEvents := make(chan tea.Msg)
	post := func(msg tea.Msg) {
		select {
		case flowEvents <- msg:
		case <-ctx.Done():
		}
	}
	deliver := func(msg tea.Msg) bool {
		select {
		case events <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	flow := voice.NewFlow(ch, ch, s.deps.Voice,
		voice.WithConsent(s.in.Mode != coach.ModeKids || s.in.Consent),
		voice.WithPreference(s.in.Preference),
		voice.WithFields(s.seed),
		voice.WithAnalyze(s.analyzeHook(post)),
		voice.OnStateChange(func(st voice.State) { post(stateMsg{st}) }),
	)

	go func() {
		for {
			var msg tea.Msg
			select {
			case text := <-ch.Spoken():
				msg = spokenMsg{text}
			case msg = <-flowEvents:
			case <-ctx.Done():
				return
			}
			if !deliver(msg) {
				return
			}
			if _, done := msg.(doneMsg); done {
				return
			}
		}
	}()
	go func() {
		outcome, err := flow.Run(ctx)
		post(doneMsg{outcome: outcome, err: err})
	}()

	return s.wait()
}

// analyzeHook runs the analysis, reads the summary aloud and hands the
// result to the screen.
func (s *VoiceScreen) analyzeHook(post func(tea.Msg)) voice.AnalyzeFunc {
	deps, ch, base := s.deps, s.ch, s.in
	return func(ctx context.Context, f voice.Fields) error {
		in := base
		in.Problem = f.Problem
		in.Attempt = f.Attempt
		if f.Language != "" {
			in.Language = f.Language
		}
		in = result.Request(deps, in)

		msg := result.Analyze(ctx, deps, in, "")().(result.AnalyzedMsg)
		if msg.Err != nil {
			post(msg)
			return msg.Err
		}
		if err := ch.Speak(ctx, msg.Result.SpokenSummary()); err != nil {
			return err
		}
		post(msg)
		return nil
	}
}

// wait delivers the next flow event, or nothing once the flow is stopped.
func (s *VoiceScreen) wait() tea.Cmd {
	events, done := s.events, s.ctx.Done()
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

// Close stops the running flow.
func (s *VoiceScreen) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *VoiceScreen) Title() string {
	return "Guided Voice"
}

func (s *VoiceScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Say"}}
	if !s.running {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+N", Description: "Start again"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *VoiceScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spokenMsg:
		s.lines = append(s.lines, line{text: msg.text})
		return s, s.wait()

	case stateMsg:
		s.state = msg.state
		return s, s.wait()

	case result.AnalyzedMsg:
		if msg.Err != nil {
			s.errMsg = coach.UserMessage(msg.Err)
			return s, s.wait()
		}
		s.running = false
		s.outcome = voice.OutcomeAnalyzed
		s.cancel()
		res := result.New(s.deps, msg.Input, msg.Result)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: res} }

	case doneMsg:
		s.running = false
		s.outcome = msg.outcome
		if msg.outcome == voice.OutcomeTextMode {
			return s, tea.Batch(
				func() tea.Msg { return router.PopScreenMsg{} },
				screen.Flash(voice.TextModeMessage),
			)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+n":
			if !s.running {
				return s, s.start()
			}
			return s, nil
		case "ctrl+x":
			s.errMsg = ""
			return s, nil
		case "enter":
			text := strings.TrimSpace(s.input.Value())
			if text == "" || !s.running {
				return s, nil
			}
			if !s.ch.Say(text) {
				s.errMsg = "Still working on what you said..."
				return s, nil
			}
			s.lines = append(s.lines, line{learner: true, text: text})
			s.input.Clear()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *VoiceScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	status := "Listening · " + s.state.String()
	if !s.running {
		status = "Stopped · " + s.outcome.String()
	}

	var transcript []string
	for _, l := range s.lines {
		if l.learner {
			transcript = append(transcript, lipgloss.NewStyle().Foreground(theme.Secondary).Width(cw-4).Render("🗣  "+l.text))
		} else {
			transcript = append(transcript, lipgloss.NewStyle().Foreground(theme.Text).Width(cw-4).Render("🔊 "+l.text))
		}
	}

	bottom := []string{theme.Hint.Render(status)}
	if s.errMsg != "" {
		bottom = append(bottom, components.ErrorLine(s.errMsg, cw))
	}
	bottom = append(bottom, s.input.View())
	footer := strings.Join(bottom, "\n")

	// Show the newest lines that fit above the input.
	room := max(height-lipgloss.Height(footer)-2, 1)
	body := strings.Join(transcript, "\n")
	if n := lipgloss.Height(body); n > room {
		body, _ = layout.Clip(body, n-room, room)
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(body+"\n\n"+footer))
}
