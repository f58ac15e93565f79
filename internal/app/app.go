package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/screens/home"
	"github.com/abhisek/mistakecoach/internal/screens/setup"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

type themeChangedMsg struct {
	theme learner.Theme
	err   error
}

type resetDoneMsg struct{ err error }

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   screen.Deps
	router *router.Router
	width  int
	height int
	flash  string
}

// newAppModel starts at the setup gate, which leads to the home screen.
func newAppModel(deps screen.Deps) AppModel {
	theme.Apply(deps.Learner.Theme() == learner.ThemeDark)
	return AppModel{
		deps:   deps,
		router: router.New(setup.New(deps, homeFactory(deps), "")),
	}
}

func homeFactory(deps screen.Deps) func() screen.Screen {
	return func() screen.Screen { return home.New(deps) }
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.FlashMsg:
		m.flash = msg.Text
		return m, nil

	case themeChangedMsg:
		if msg.err != nil {
			slog.Error("save theme", "error", msg.err)
		}
		theme.Apply(msg.theme == learner.ThemeDark)
		return m, nil

	case resetDoneMsg:
		if msg.err != nil {
			slog.Error("reset learner", "error", msg.err)
			m.flash = "Reset failed: " + msg.err.Error()
			return m, nil
		}
		gate := setup.New(m.deps, homeFactory(m.deps), setup.ResetNotice)
		return m, func() tea.Msg { return router.ResetScreenMsg{Screen: gate} }

	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+t":
			st := m.deps.Learner
			return m, func() tea.Msg {
				t, err := st.ToggleTheme(context.Background())
				return themeChangedMsg{theme: t, err: err}
			}
		case "ctrl+r":
			st := m.deps.Learner
			return m, func() tea.Msg {
				return resetDoneMsg{err: st.Reset(context.Background())}
			}
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	p := m.deps.Learner.Profile()
	header := layout.RenderHeader(title, layout.HeaderInfo{
		Name:   p.UserName,
		Streak: p.Streak,
		Dark:   theme.IsDark(),
	}, m.width)
	if m.flash != "" {
		header += "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, theme.Banner.Render(m.flash))
	}

	var footerHints []layout.KeyHint
	if kh, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kh.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, deps screen.Deps) error {
	p := tea.NewProgram(newAppModel(deps), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
