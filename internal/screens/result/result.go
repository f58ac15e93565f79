// Package result renders one coaching result with its practice round and
// the optional follow-ups.
package result

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

const (
	actionCheck = iota
	actionRetry
	actionAlternative
	actionExample
	actionHome
)

const requestTimeout = 90 * time.Second

type evaluatedMsg struct {
	eval *coach.PracticeEvaluation
	err  error
}

type alternativeMsg struct{ text string }

type exampleMsg struct{ text string }

// ResultScreen shows a coaching result.
type ResultScreen struct {
	deps    screen.Deps
	input   coach.AnalyzeInput
	res     *coach.AnalysisResult
	answers []components.TextInput
	menu    components.Menu
	focus   int // index into answers, or len(answers) for the menu
	spinner spinner.Model

	evaluating bool
	evaluation *coach.PracticeEvaluation
	evalErr    string

	altLoading     bool
	alternative    string
	exampleLoading bool
	example        string

	offset int
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a result screen for res, which answered in.
func New(deps screen.Deps, in coach.AnalyzeInput, res *coach.AnalysisResult) *ResultScreen {
	s := &ResultScreen{
		deps:    deps,
		input:   in,
		res:     res,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for i, q := range res.PracticeSet() {
		s.answers = append(s.answers, components.NewTextInput(fmt.Sprintf("%d. %s", i+1, q), "Your answer", 200))
	}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Check answers", Action: s.check},
		{Label: "Try again", Action: s.retry},
		{Label: "Explain it another way", Action: s.fetchAlternative},
		{Label: "Show a real-life example", Action: s.fetchExample},
		{Label: "Back home", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}},
	})
	s.syncMenu()
	return s
}

func (s *ResultScreen) Init() tea.Cmd {
	return s.setFocus(0)
}

func (s *ResultScreen) Title() string {
	return "Your Coaching Session"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Enter", Description: "Select"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

// Practice returns the practice questions on screen.
func (s *ResultScreen) Practice() []string {
	return s.res.PracticeSet()
}

func (s *ResultScreen) syncMenu() {
	s.menu.SetDisabled(actionCheck, s.evaluating || s.evaluation != nil || len(s.answers) == 0 || !s.anyAnswered())
	s.menu.SetDisabled(actionRetry, s.evaluation == nil && s.evalErr == "")
	s.menu.SetDisabled(actionAlternative, s.altLoading)
	s.menu.SetDisabled(actionExample, s.exampleLoading)
	s.menu.Reselect()
}

func (s *ResultScreen) anyAnswered() bool {
	for _, a := range s.answers {
		if strings.TrimSpace(a.Value()) != "" {
			return true
		}
	}
	return false
}

func (s *ResultScreen) setFocus(i int) tea.Cmd {
	n := len(s.answers) + 1
	s.focus = (i%n + n) % n
	var cmd tea.Cmd
	for j := range s.answers {
		if j == s.focus && s.evaluation == nil {
			cmd = s.answers[j].Focus()
		} else {
			s.answers[j].Blur()
		}
	}
	if s.evaluation != nil && s.focus < len(s.answers) {
		s.focus = len(s.answers)
	}
	return cmd
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case evaluatedMsg:
		s.evaluating = false
		if msg.err != nil {
			s.evalErr = coach.UserMessage(msg.err)
		} else {
			s.evaluation = msg.eval
			for i := range s.answers {
				if i < len(msg.eval.Results) {
					s.answers[i].Submit(msg.eval.Results[i].IsCorrect)
				}
			}
			s.setFocus(len(s.answers))
		}
		s.syncMenu()
		return s, nil

	case alternativeMsg:
		s.altLoading = false
		s.alternative = msg.text
		s.syncMenu()
		return s, nil

	case exampleMsg:
		s.exampleLoading = false
		s.example = msg.text
		s.syncMenu()
		return s, nil

	case spinner.TickMsg:
		if !s.busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab":
			return s, s.setFocus(s.focus - 1)
		case "pgdown", "ctrl+d":
			s.offset += 10
			return s, nil
		case "pgup", "ctrl+u":
			s.offset = max(s.offset-10, 0)
			return s, nil
		case "enter":
			if s.focus < len(s.answers) {
				return s, s.setFocus(s.focus + 1)
			}
		}
	}

	var cmd tea.Cmd
	if s.focus < len(s.answers) {
		s.answers[s.focus], cmd = s.answers[s.focus].Update(msg)
	} else {
		s.menu, cmd = s.menu.Update(msg)
	}
	s.syncMenu()
	return s, cmd
}

func (s *ResultScreen) busy() bool {
	return s.evaluating || s.altLoading || s.exampleLoading
}

func (s *ResultScreen) check() tea.Cmd {
	if s.evaluating || s.evaluation != nil {
		return nil
	}
	s.evaluating = true
	s.evalErr = ""
	s.syncMenu()

	answers := make([]string, len(s.answers))
	for i, a := range s.answers {
		answers[i] = strings.TrimSpace(a.Value())
	}
	in := coach.EvalInput{
		Problem:     s.input.Problem,
		Questions:   s.res.PracticeSet(),
		Answers:     answers,
		Language:    s.input.Language,
		Mode:        s.input.Mode,
		LearnerName: s.input.LearnerName,
	}
	client := s.deps.Coach
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		eval, err := client.EvaluatePractice(ctx, in)
		return evaluatedMsg{eval: eval, err: err}
	})
}

// retry clears the evaluation and the answers for another attempt.
func (s *ResultScreen) retry() tea.Cmd {
	s.evaluation = nil
	s.evalErr = ""
	for i := range s.answers {
		s.answers[i].Clear()
	}
	s.syncMenu()
	return s.setFocus(0)
}

func (s *ResultScreen) fetchAlternative() tea.Cmd {
	if s.altLoading {
		return nil
	}
	s.altLoading = true
	s.syncMenu()
	alt, _ := coach.ExtrasFor(s.input, s.res)
	client := s.deps.Coach
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return alternativeMsg{text: client.AlternativeExplanation(ctx, alt)}
	})
}

func (s *ResultScreen) fetchExample() tea.Cmd {
	if s.exampleLoading {
		return nil
	}
	s.exampleLoading = true
	s.syncMenu()
	_, ex := coach.ExtrasFor(s.input, s.res)
	client := s.deps.Coach
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return exampleMsg{text: client.RealLifeExample(ctx, ex)}
	})
}

func (s *ResultScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	inner := cw - 4
	r := s.res

	var sections []string

	status := theme.Banner.Render(r.LearningStatus)
	meta := []string{string(r.DetectedCategory)}
	if r.Confidence > 0 {
		meta = append(meta, fmt.Sprintf("%d%% confident", r.Confidence))
	}
	if r.MisconceptionTag != "" {
		meta = append(meta, "#"+r.MisconceptionTag)
	}
	sections = append(sections, status+"  "+theme.Subtitle.Render(strings.Join(meta, " · ")))

	if r.NeedsDomainClarification && r.ClarificationQuestion != "" {
		sections = append(sections, components.Card("Quick question", components.Wrap(r.ClarificationQuestion, inner), cw))
	}

	sections = append(sections,
		components.Card("What happened", components.Wrap(r.Diagnosis, inner), cw),
		components.Card("Why it happened", components.Wrap(r.RootCause, inner), cw),
		components.Card("The right way to think about it", components.Wrap(r.CorrectReasoning, inner), cw),
		components.Card("Key insight", theme.Selected.Width(inner).Render(r.KeyInsight), cw),
	)
	if r.LearningPoint != "" {
		sections = append(sections, components.Card("Learning point", components.Wrap(r.LearningPoint, inner), cw))
	}

	sections = append(sections, components.Card("Quick practice", s.renderPractice(inner), cw))
	if ev := s.renderEvaluation(inner); ev != "" {
		sections = append(sections, components.Card("How you did", ev, cw))
	}

	if s.altLoading || s.alternative != "" {
		body := s.alternative
		if s.altLoading {
			body = s.spinner.View() + " Thinking of another way to explain this..."
		}
		sections = append(sections, components.Card("Another way to see it", components.Wrap(body, inner), cw))
	}
	if s.exampleLoading || s.example != "" {
		body := s.example
		if s.exampleLoading {
			body = s.spinner.View() + " Finding a real-life example..."
		}
		sections = append(sections, components.Card("In real life", components.Wrap(body, inner), cw))
	}

	if r.FollowUpQuestion != "" {
		sections = append(sections, components.Card("Think about this", components.Wrap(r.FollowUpQuestion, inner), cw))
	}
	if r.MoreDetails != "" {
		sections = append(sections, components.Card("More details", components.Wrap(r.MoreDetails, inner), cw))
	}

	sections = append(sections, s.menu.View())

	content := lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(sections, "\n"))
	clipped, off := layout.Clip(content, s.offset, height)
	s.offset = off
	return clipped
}

func (s *ResultScreen) renderPractice(width int) string {
	if len(s.answers) == 0 {
		return theme.Hint.Render("No practice questions this time.")
	}
	parts := make([]string, len(s.answers))
	for i, a := range s.answers {
		parts[i] = lipgloss.NewStyle().Width(width).Render(a.View())
	}
	return strings.Join(parts, "\n\n")
}

func (s *ResultScreen) renderEvaluation(width int) string {
	switch {
	case s.evaluating:
		return s.spinner.View() + " Checking your answers..."
	case s.evalErr != "":
		return lipgloss.NewStyle().Foreground(theme.Error).Render(s.evalErr)
	case s.evaluation == nil:
		return ""
	}
	ev := s.evaluation
	var b strings.Builder
	b.WriteString(theme.Banner.Render(fmt.Sprintf("Score: %d / %d", ev.Score, ev.MaxScore)) + "\n")
	b.WriteString(components.Wrap(ev.PerformanceMessage, width) + "\n")
	for i, r := range ev.Results {
		mark := theme.Correct.Render("✓")
		if !r.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("\n%s %d. %s", mark, i+1, theme.Body.Width(width-6).Render(r.Feedback)))
	}
	if ev.PatternExplanation != "" {
		b.WriteString("\n\n" + theme.Label.Render("Pattern") + "\n" + components.Wrap(ev.PatternExplanation, width))
	}
	if len(ev.LearningSnapshot) > 0 {
		b.WriteString("\n\n" + theme.Label.Render("Learning snapshot"))
		for _, line := range ev.LearningSnapshot {
			b.WriteString("\n• " + line)
		}
	}
	return b.String()
}
