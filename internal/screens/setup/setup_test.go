package setup

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/screen/screentest"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

func newTestSetup(t *testing.T) (*SetupScreen, screen.Deps, *int) {
	t.Helper()
	deps, _ := screentest.Deps(t)
	calls := 0
	s := New(deps, func() screen.Screen {
		calls++
		return &stubScreen{}
	}, "")
	return s, deps, &calls
}

func typeText(s *SetupScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func selectAge(s *SetupScreen, age coach.AgeGroup) {
	for i, o := range s.age.Options {
		if o == string(age) {
			s.age.Selected = i
		}
	}
	s.syncStart()
}

func TestStartDisabledWithoutName(t *testing.T) {
	s, _, _ := newTestSetup(t)
	s.Init()

	assert.True(t, s.start.Disabled)
	assert.Nil(t, s.submit())
	assert.Equal(t, "Please tell me your nickname.", s.errMsg)
}

func TestTeenPassesWithoutConsent(t *testing.T) {
	s, deps, calls := newTestSetup(t)
	s.Init()
	typeText(s, "sam")
	selectAge(s, coach.Age13to15)

	assert.False(t, s.start.Disabled)
	msgs := screentest.Run(s.submit())
	require.Len(t, msgs, 1)

	_, cmd := s.Update(msgs[0])
	require.NotNil(t, cmd)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &stubScreen{}, replace.Screen)
	assert.Equal(t, 1, *calls)

	p := deps.Learner.Profile()
	assert.Equal(t, "sam", p.UserName)
	assert.Equal(t, coach.Age13to15, p.AgeGroup)
	assert.True(t, p.HasConsent())
}

func TestChildNeedsConsent(t *testing.T) {
	s, deps, _ := newTestSetup(t)
	s.Init()
	typeText(s, "mia")
	selectAge(s, coach.Age6to9)

	assert.True(t, s.start.Disabled)
	assert.Nil(t, s.submit())
	assert.Equal(t, "A parent or guardian needs to give consent first.", s.errMsg)
	assert.Contains(t, s.View(100, 40), "parent or guardian agrees")

	s.setFocus(focusConsent)
	require.Equal(t, focusConsent, s.focus)
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	assert.True(t, s.consent)
	assert.False(t, s.start.Disabled)

	for _, m := range screentest.Run(s.submit()) {
		s.Update(m)
	}
	p := deps.Learner.Profile()
	assert.Equal(t, coach.Age6to9, p.AgeGroup)
	assert.True(t, p.HasConsent())
}

func TestConsentSkippedForAdults(t *testing.T) {
	s, _, _ := newTestSetup(t)
	s.Init()
	selectAge(s, coach.Age18Plus)
	s.focus = focusAge

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, focusStart, s.focus)
	assert.NotContains(t, s.View(100, 40), "parent or guardian agrees")
}

func TestResetNoticeShownUntilKeyPress(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps, func() screen.Screen { return &stubScreen{} }, ResetNotice)

	assert.Contains(t, s.View(100, 40), "start fresh")
	s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	assert.NotContains(t, s.View(100, 40), "start fresh")
}

func TestBannerFallsBackWhenNarrow(t *testing.T) {
	assert.Contains(t, RenderBanner(30), "M I S T A K E")
	assert.Contains(t, RenderBanner(80), "██████╗")
}
