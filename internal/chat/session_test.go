package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCompleter replies with a fixed turn and records what it was asked
type recordingCompleter struct {
	reply     Turn
	calls     int
	texts     []string
	histories [][]Turn
	sessionID string

	// If non-nil, Complete signals started and then blocks until release is closed
	started chan struct{}
	release chan struct{}
}

func (rc *recordingCompleter) Complete(ctx context.Context, userText string, recentHistory []Turn) Turn {
	rc.calls++
	rc.texts = append(rc.texts, userText)
	rc.histories = append(rc.histories, recentHistory)
	rc.sessionID = SessionIDFromContext(ctx)
	if rc.started != nil {
		close(rc.started)
		<-rc.release
	}
	return rc.reply
}

func TestSend_AppendsUserAndAssistantTurns(t *testing.T) {
	completer := &recordingCompleter{reply: NewAssistantTurn("AI is ...", "Google Gemini")}
	session := NewSession(completer)

	reply, err := session.Send(context.Background(), "What is artificial intelligence?")
	require.NoError(t, err)

	assert.Equal(t, "AI is ...", reply.Content())
	turns := session.Conversation().Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role())
	assert.Equal(t, "What is artificial intelligence?", turns[0].Content())
	assert.True(t, reply.Equal(turns[1]))
	assert.Equal(t, session.ID(), completer.sessionID)
}

func TestSend_RejectsBlankInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		completer := &recordingCompleter{reply: NewAssistantTurn("unused")}
		session := NewSession(completer)

		_, err := session.Send(context.Background(), input)

		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Equal(t, 0, completer.calls)
		assert.Equal(t, 0, session.Conversation().Len())
	}
}

func TestSend_HistoryWindowExcludesNewTurn(t *testing.T) {
	completer := &recordingCompleter{reply: NewAssistantTurn("ok")}
	session := NewSession(completer, WithHistoryWindow(4))

	for _, text := range []string{"one", "two", "three"} {
		_, err := session.Send(context.Background(), text)
		require.NoError(t, err)
	}

	require.Len(t, completer.histories, 3)
	assert.Empty(t, completer.histories[0])
	assert.Len(t, completer.histories[1], 2)

	// The third call sees the four turns before "three"
	last := completer.histories[2]
	require.Len(t, last, 4)
	assert.Equal(t, "one", last[0].Content())
	assert.Equal(t, "ok", last[1].Content())
	assert.Equal(t, "two", last[2].Content())
	assert.Equal(t, "ok", last[3].Content())
	assert.Equal(t, []string{"one", "two", "three"}, completer.texts)
	assert.Equal(t, 6, session.Conversation().Len())
}

func TestSend_RejectsConcurrentRequest(t *testing.T) {
	completer := &recordingCompleter{
		reply:   NewAssistantTurn("first"),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	session := NewSession(completer)

	done := make(chan error, 1)
	go func() {
		_, err := session.Send(context.Background(), "first")
		done <- err
	}()

	<-completer.started
	assert.True(t, session.Busy())

	_, err := session.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(completer.release)
	require.NoError(t, <-done)
	assert.False(t, session.Busy())

	// The rejected send left no trace
	turns := session.Conversation().Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "first", turns[0].Content())
	assert.Equal(t, "first", turns[1].Content())
	assert.Equal(t, 1, completer.calls)
}

func TestSessionIDFromContext_Missing(t *testing.T) {
	assert.Equal(t, "", SessionIDFromContext(context.Background()))
}
