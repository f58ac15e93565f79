package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/screen/screentest"
)

func TestDashboard(t *testing.T) {
	deps, _ := screentest.Deps(t)
	ctx := context.Background()
	require.NoError(t, deps.Learner.SetPersonalization(ctx, "sam", coach.Age16to17, false))

	for _, tag := range []string{"Adds denominators", "Adds denominators", "Off by one"} {
		in := coach.AnalyzeInput{Category: coach.CategoryAuto, Problem: "p", Attempt: "a"}
		res := &coach.AnalysisResult{MisconceptionTag: tag, DetectedCategory: coach.CategoryMath}
		require.NoError(t, deps.Learner.RecordAnalysis(ctx, learner.NewEntry(in, "", res, time.Now())))
	}

	s := New(deps)
	s.now = func() time.Time { return deps.Started.Add(12 * time.Minute) }
	view := s.View(120, 60)

	assert.Contains(t, view, "sam's learning journey")
	assert.Contains(t, view, "Mistakes analyzed: 3")
	assert.Contains(t, view, "Concepts: 2")
	assert.Contains(t, view, "This session: 12 min")
	assert.Contains(t, view, "1. Adds denominators")
	assert.Contains(t, view, "100%")
}

func TestDashboardEmpty(t *testing.T) {
	deps, _ := screentest.Deps(t)
	view := New(deps).View(120, 60)
	assert.Contains(t, view, "Nothing yet")
	assert.Contains(t, view, "Last session: never")
}
