package history

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen/screentest"
	"github.com/abhisek/mistakecoach/internal/screens/result"
)

func record(t *testing.T, st *learner.State, problem, tag string, at time.Time) {
	t.Helper()
	in := coach.AnalyzeInput{Category: coach.CategoryMath, Problem: problem, Attempt: "guess", Language: "Auto", Mode: coach.ModeStandard}
	res := &coach.AnalysisResult{Diagnosis: "diag " + problem, KeyInsight: "insight", MisconceptionTag: tag, DetectedCategory: coach.CategoryMath}
	require.NoError(t, st.RecordAnalysis(context.Background(), learner.NewEntry(in, "", res, at)))
}

func TestEmptyHistory(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps)
	assert.Contains(t, s.View(100, 30), "No mistakes analyzed yet")
}

func TestNewestFirstAndExpand(t *testing.T) {
	deps, _ := screentest.Deps(t)
	now := time.Now()
	record(t, deps.Learner, "older", "Tag A", now.Add(-time.Hour))
	record(t, deps.Learner, "newer", "Tag B", now)

	s := New(deps)
	require.Len(t, s.entries, 2)
	assert.Equal(t, "newer", s.entries[0].Question)

	view := s.View(100, 40)
	assert.Contains(t, view, "Tag B")
	assert.NotContains(t, view, "diag newer")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(100, 40), "diag newer")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
}

func TestOpenEntry(t *testing.T) {
	deps, _ := screentest.Deps(t)
	record(t, deps.Learner, "p", "Tag", time.Now())

	s := New(deps)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'o', Text: "o"})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &result.ResultScreen{}, push.Screen)
}
