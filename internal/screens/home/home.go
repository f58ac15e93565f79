// Package home is the mistake intake form and the app's main menu.
package home

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/screens/chat"
	"github.com/abhisek/mistakecoach/internal/screens/feedback"
	"github.com/abhisek/mistakecoach/internal/screens/history"
	"github.com/abhisek/mistakecoach/internal/screens/profile"
	"github.com/abhisek/mistakecoach/internal/screens/result"
	voicescreen "github.com/abhisek/mistakecoach/internal/screens/voice"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
	"github.com/abhisek/mistakecoach/internal/voice"
)

// Form fields in focus order.
const (
	fieldCategory = iota
	fieldLanguage
	fieldMode
	fieldPreference
	fieldProblem
	fieldAttempt
	fieldCorrect
	fieldImage
	fieldMenu
	fieldCount
)

// Menu entries.
const (
	itemAnalyze = iota
	itemVoice
	itemChat
	itemProfile
	itemHistory
	itemFeedback
	itemQuit
)

// HomeScreen is the intake form.
type HomeScreen struct {
	deps screen.Deps

	category   components.Choice
	language   components.Choice
	mode       components.Choice
	preference components.Choice
	problem    components.TextArea
	attempt    components.TextArea
	correct    components.TextInput
	image      components.TextInput
	menu       components.Menu
	spinner    spinner.Model

	focus     int
	analyzing bool
	errMsg    string
	offset    int
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the home screen for the current learner.
func New(deps screen.Deps) *HomeScreen {
	p := deps.Learner.Profile()

	categories := make([]string, len(coach.Categories))
	for i, c := range coach.Categories {
		categories[i] = string(c)
	}
	allowed := coach.AllowedModes(p.AgeGroup)
	modes := make([]string, len(allowed))
	for i, m := range allowed {
		modes[i] = string(m)
	}

	h := &HomeScreen{
		deps:       deps,
		category:   components.NewChoice("Subject", categories, string(coach.CategoryAuto)),
		language:   components.NewChoice("Language", coach.Languages, "Auto"),
		mode:       components.NewChoice("Mode", modes, ""),
		preference: components.NewChoice("Accessibility", []string{string(coach.PreferenceText), string(coach.PreferenceAudio)}, ""),
		problem:    components.NewTextArea("The problem", "Paste the question, code or sentence you worked on...", 60, 3),
		attempt:    components.NewTextArea("Your attempt", "How did you try to solve it? It's okay to be unsure!", 60, 3),
		correct:    components.NewTextInput("Correct answer (optional)", "If you know it", 200),
		image:      components.NewTextInput("Screenshot path (optional)", "/path/to/photo.png", 512),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Analyze my mistake", Action: h.analyze},
		{Label: "Guided voice intake", Hint: "Accessibility mode with Audio", Action: h.openVoice},
		{Label: "Study buddy chat", Action: h.push(func() screen.Screen { return chat.New(deps) })},
		{Label: "My progress", Action: h.push(func() screen.Screen { return profile.New(deps) })},
		{Label: "History", Action: h.push(func() screen.Screen { return history.New(deps) })},
		{Label: "Send feedback", Action: h.push(func() screen.Screen { return feedback.New(deps, h.selectedMode()) }), Disabled: deps.Events == nil},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	h.syncMenu()
	return h
}

func (h *HomeScreen) push(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.setFocus(fieldProblem)
}

func (h *HomeScreen) Title() string {
	return "Explain My Mistake"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Change option"},
		{Key: "Ctrl+T", Description: "Theme"},
		{Key: "Ctrl+R", Description: "Reset"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) selectedMode() coach.Mode {
	return coach.Mode(h.mode.Value())
}

func (h *HomeScreen) accessibility() bool {
	return h.selectedMode() == coach.ModeAccessibility
}

// audioOnly reports whether the learner asked for the audio-only intake.
func (h *HomeScreen) audioOnly() bool {
	return h.accessibility() && coach.Preference(h.preference.Value()) == coach.PreferenceAudio
}

// canAnalyze is false in Kids mode without parental consent.
func (h *HomeScreen) canAnalyze() bool {
	if h.analyzing {
		return false
	}
	if h.selectedMode() == coach.ModeKids && !h.deps.Learner.Profile().HasConsent() {
		return false
	}
	return true
}

func (h *HomeScreen) syncMenu() {
	h.menu.SetDisabled(itemAnalyze, !h.canAnalyze())
	h.menu.SetDisabled(itemVoice, !h.canAnalyze() || !h.audioOnly())
	if h.menu.Items[h.menu.Selected].Disabled {
		h.menu.Selected = itemChat
	}
}

func (h *HomeScreen) setFocus(f int) tea.Cmd {
	dir := 1
	if f < h.focus {
		dir = -1
	}
	f = (f%fieldCount + fieldCount) % fieldCount
	if f == fieldPreference && !h.accessibility() {
		f += dir
	}
	h.focus = f

	h.category.Focused = f == fieldCategory
	h.language.Focused = f == fieldLanguage
	h.mode.Focused = f == fieldMode
	h.preference.Focused = f == fieldPreference
	h.problem.Blur()
	h.attempt.Blur()
	h.correct.Blur()
	h.image.Blur()

	switch f {
	case fieldProblem:
		return h.problem.Focus()
	case fieldAttempt:
		return h.attempt.Focus()
	case fieldCorrect:
		return h.correct.Focus()
	case fieldImage:
		return h.image.Focus()
	}
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case result.AnalyzedMsg:
		h.analyzing = false
		h.syncMenu()
		if msg.Err != nil {
			h.errMsg = coach.UserMessage(msg.Err)
			return h, nil
		}
		h.errMsg = ""
		res := result.New(h.deps, msg.Input, msg.Result)
		return h, func() tea.Msg { return router.PushScreenMsg{Screen: res} }

	case spinner.TickMsg:
		if !h.analyzing {
			return h, nil
		}
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(msg)
		return h, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return h, h.setFocus(h.focus + 1)
		case "shift+tab":
			return h, h.setFocus(h.focus - 1)
		case "ctrl+x":
			h.errMsg = ""
			return h, nil
		case "ctrl+s":
			return h, h.analyze()
		case "pgdown", "ctrl+d":
			h.offset += 5
			return h, nil
		case "pgup", "ctrl+u":
			h.offset = max(h.offset-5, 0)
			return h, nil
		case "enter":
			switch h.focus {
			case fieldCategory, fieldLanguage, fieldMode, fieldPreference, fieldCorrect, fieldImage:
				return h, h.setFocus(h.focus + 1)
			}
		}
	}

	var cmd tea.Cmd
	switch h.focus {
	case fieldCategory:
		h.category, cmd = h.category.Update(msg)
	case fieldLanguage:
		h.language, cmd = h.language.Update(msg)
	case fieldMode:
		h.mode, cmd = h.mode.Update(msg)
		h.syncMenu()
	case fieldPreference:
		h.preference, cmd = h.preference.Update(msg)
		h.syncMenu()
	case fieldProblem:
		h.problem, cmd = h.problem.Update(msg)
	case fieldAttempt:
		h.attempt, cmd = h.attempt.Update(msg)
	case fieldCorrect:
		h.correct, cmd = h.correct.Update(msg)
	case fieldImage:
		h.image, cmd = h.image.Update(msg)
	case fieldMenu:
		h.menu, cmd = h.menu.Update(msg)
	}
	return h, cmd
}

// input builds the analysis request from the form.
func (h *HomeScreen) input() coach.AnalyzeInput {
	in := coach.AnalyzeInput{
		Category:      coach.Category(h.category.Value()),
		Problem:       strings.TrimSpace(h.problem.Value()),
		Attempt:       strings.TrimSpace(h.attempt.Value()),
		CorrectAnswer: strings.TrimSpace(h.correct.Value()),
		Language:      h.language.Value(),
		Mode:          h.selectedMode(),
	}
	if h.accessibility() {
		in.Preference = coach.Preference(h.preference.Value())
	}
	return result.Request(h.deps, in)
}

func (h *HomeScreen) analyze() tea.Cmd {
	if !h.canAnalyze() {
		return nil
	}
	in := h.input()
	imagePath := strings.TrimSpace(h.image.Value())
	if imagePath != "" {
		img, err := coach.LoadImage(imagePath)
		if err != nil {
			h.errMsg = err.Error()
			return nil
		}
		in.Image = img
	}
	if in.Problem == "" && in.Image == nil {
		h.errMsg = "Tell me the problem you're working on, or attach a screenshot."
		return nil
	}
	if in.Attempt == "" {
		h.errMsg = "Tell me how you tried to solve it. It's okay to be unsure!"
		return nil
	}
	h.errMsg = ""
	h.analyzing = true
	h.syncMenu()
	return tea.Batch(h.spinner.Tick, result.Analyze(context.Background(), h.deps, in, imagePath))
}

func (h *HomeScreen) openVoice() tea.Cmd {
	if !h.canAnalyze() || !h.audioOnly() {
		return nil
	}
	in := h.input()
	deps := h.deps
	seed := voice.Fields{Problem: in.Problem, Attempt: in.Attempt}
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: voicescreen.New(deps, in, seed)}
	}
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case h.analyzing:
		return MascotThinking
	case h.errMsg != "":
		return MascotOops
	}
	return MascotIdle
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	h.problem.SetWidth(cw - 6)
	h.attempt.SetWidth(cw - 6)

	p := h.deps.Learner.Profile()
	greeting := "Hi there!"
	if p.UserName != "" {
		greeting = "Hi " + p.UserName + "!"
	}

	var form []string
	form = append(form, h.category.View(), h.language.View(), h.mode.View())
	if h.accessibility() {
		form = append(form, h.preference.View())
	}
	form = append(form, "", h.problem.View(), "", h.attempt.View(), "", h.correct.View(), "", h.image.View())

	var sections []string
	heading := theme.Title.Render(greeting) + "  " + theme.Subtitle.Render("What mistake should we look at today?")
	if h.selectedMode() == coach.ModeKids {
		heading = lipgloss.JoinHorizontal(lipgloss.Center, RenderMascot(h.mascot()), "  ", heading)
	}
	sections = append(sections, heading, components.Card("", strings.Join(form, "\n"), cw))
	if h.selectedMode() == coach.ModeKids && !p.HasConsent() {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(coach.ConsentRequiredResult().Diagnosis))
	}
	if h.errMsg != "" {
		sections = append(sections, components.ErrorLine(h.errMsg, cw))
	}
	if h.analyzing {
		sections = append(sections, h.spinner.View()+" "+theme.Hint.Render("Looking at your thinking..."))
	}
	menu := h.menu.View()
	if h.focus != fieldMenu {
		menu = lipgloss.NewStyle().Faint(true).Render(menu)
	}
	sections = append(sections, menu)

	content := lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(sections, "\n"))
	if h.focus == fieldMenu {
		// Keep the menu in view.
		h.offset = lipgloss.Height(content)
	}
	clipped, off := layout.Clip(content, h.offset, height)
	h.offset = off
	return clipped
}
