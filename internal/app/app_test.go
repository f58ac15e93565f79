package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/screen/screentest"
	"github.com/abhisek/mistakecoach/internal/screens/home"
	"github.com/abhisek/mistakecoach/internal/screens/setup"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

func key(code rune, mod tea.KeyMod) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: mod}
}

// step applies msg and feeds the resulting messages back through Update.
func step(m AppModel, msg tea.Msg) AppModel {
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	for _, out := range screentest.Run(cmd) {
		next, _ = m.Update(out)
		m = next.(AppModel)
	}
	return m
}

func TestStartsAtSetup(t *testing.T) {
	deps, _ := screentest.Deps(t)
	m := newAppModel(deps)
	assert.IsType(t, &setup.SetupScreen{}, m.router.Active())
}

func TestToggleThemePersists(t *testing.T) {
	deps, _ := screentest.Deps(t)
	m := newAppModel(deps)
	require.False(t, theme.IsDark())

	m = step(m, key('t', tea.ModCtrl))
	assert.True(t, theme.IsDark())
	assert.Equal(t, learner.ThemeDark, deps.Learner.Theme())

	m = step(m, key('t', tea.ModCtrl))
	assert.False(t, theme.IsDark())
}

func TestResetReturnsToSetup(t *testing.T) {
	deps, _ := screentest.Deps(t)
	ctx := context.Background()
	require.NoError(t, deps.Learner.SetPersonalization(ctx, "sam", coach.Age18Plus, false))
	require.NoError(t, deps.Learner.SetTheme(ctx, learner.ThemeDark))

	m := newAppModel(deps)
	m.router.Replace(home.New(deps))
	m.router.Push(home.New(deps))

	next, cmd := m.Update(key('r', tea.ModCtrl))
	m = next.(AppModel)
	msgs := screentest.Run(cmd)
	require.Len(t, msgs, 1)

	next, cmd = m.Update(msgs[0])
	m = next.(AppModel)
	require.NotNil(t, cmd)
	reset, ok := cmd().(router.ResetScreenMsg)
	require.True(t, ok)
	next, _ = m.Update(reset)
	m = next.(AppModel)

	assert.Equal(t, 1, m.router.Depth())
	assert.IsType(t, &setup.SetupScreen{}, m.router.Active())
	assert.Empty(t, deps.Learner.Profile().UserName)
	assert.Equal(t, learner.ThemeDark, deps.Learner.Theme())
	assert.Contains(t, m.router.Active().View(100, 40), "start fresh")
}

func TestEscPopsAboveRoot(t *testing.T) {
	deps, _ := screentest.Deps(t)
	m := newAppModel(deps)

	m = step(m, key(tea.KeyEscape, 0))
	assert.Equal(t, 1, m.router.Depth())

	m.router.Push(home.New(deps))
	m = step(m, key(tea.KeyEscape, 0))
	assert.Equal(t, 1, m.router.Depth())
}

func TestFlashClearedOnKey(t *testing.T) {
	deps, _ := screentest.Deps(t)
	m := newAppModel(deps)

	m = step(m, screen.FlashMsg{Text: "Switching to text mode."})
	assert.Equal(t, "Switching to text mode.", m.flash)

	m = step(m, key('a', 0))
	assert.Empty(t, m.flash)
}
