package chat

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/llm"
	"github.com/abhisek/mistakecoach/internal/screen/screentest"
)

// converse sends text and pumps the stream until the reply is complete.
func converse(t *testing.T, s *ChatScreen, text string) {
	t.Helper()
	s.input.SetValue(text)
	msgs := screentest.Run(s.send())
	require.Len(t, msgs, 1)

	msg := msgs[0]
	for i := 0; i < 100; i++ {
		_, cmd := s.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
	}
	t.Fatal("stream never finished")
}

func TestGreetingShown(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps)
	require.Len(t, s.msgs, 1)
	assert.Equal(t, coach.ChatGreeting, s.msgs[0].text)
}

func TestStreamedReply(t *testing.T) {
	deps, mock := screentest.Deps(t, llm.MockResponse{Chunks: []string{"Fractions ", "are ", "fun."}})
	s := New(deps)
	defer s.Close()

	converse(t, s, "what is a fraction?")

	require.Len(t, s.msgs, 3)
	assert.True(t, s.msgs[1].learner)
	assert.Equal(t, "Fractions are fun.", s.msgs[2].text)
	assert.False(t, s.busy)
	assert.Empty(t, s.input.Value())

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "what is a fraction?", req.Messages[0].Content)
}

func TestFailedReplyShowsErrorMessage(t *testing.T) {
	deps, _ := screentest.Deps(t, llm.MockResponse{Chunks: []string{"Frac"}, Err: errors.New("boom")})
	s := New(deps)
	defer s.Close()

	converse(t, s, "hi")

	require.Len(t, s.msgs, 3)
	assert.Equal(t, coach.ChatErrorMessage, s.msgs[2].text)
}

func TestProviderUnavailable(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps)
	defer s.Close()

	converse(t, s, "hi")

	assert.Equal(t, coach.ChatErrorMessage, s.msgs[len(s.msgs)-1].text)
	assert.False(t, s.busy)
}

func TestBusyIgnoresSecondSend(t *testing.T) {
	deps, _ := screentest.Deps(t)
	s := New(deps)
	s.busy = true
	s.input.SetValue("again")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, s.msgs, 1)
}
