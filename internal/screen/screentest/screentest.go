// Package screentest builds screen dependencies for tests.
package screentest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/llm"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/store"
	"github.com/abhisek/mistakecoach/internal/voice"
)

// Deps opens an in-memory store and a coach backed by a mock provider
// that answers with responses in order.
func Deps(t *testing.T, responses ...llm.MockResponse) (screen.Deps, *llm.MockProvider) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	state, err := learner.Load(context.Background(), st.KV())
	require.NoError(t, err)

	mock := llm.NewMockProvider(responses...)
	return screen.Deps{
		Coach:   coach.NewClient(mock, coach.DefaultConfig()),
		Learner: state,
		Events:  st.EventRepo(),
		Voice:   voice.Config{SilenceTimeout: time.Second, MaxReprompts: 1},
		Started: time.Now(),
	}, mock
}

// Run executes cmd and any batched commands, returning the messages they
// produce. Spinner ticks are dropped.
func Run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, Run(c)...)
		}
	default:
		out = append(out, msg)
	}
	return out
}
