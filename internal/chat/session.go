package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyInput = errors.New("input is empty")
	ErrBusy       = errors.New("a request is already in flight")
)

// DefaultHistoryWindow is the number of prior turns sent along with each new user message
const DefaultHistoryWindow = 4

// Completer turns one user message into exactly one assistant turn. Implementations report failures as assistant
// turns rather than errors
type Completer interface {
	Complete(ctx context.Context, userText string, recentHistory []Turn) Turn
}

// Session drives a single chat: it appends the user's turn, asks the completer for a reply, and appends the reply.
// At most one request is in flight at a time; a Send issued while another is outstanding fails with ErrBusy instead
// of queueing, the same way the input box is disabled while the assistant is thinking.
type Session struct {
	id            string
	completer     Completer
	historyWindow int
	logger        zerolog.Logger

	inFlight atomic.Bool

	mu           sync.Mutex
	conversation Conversation
}

type SessionOption func(*Session)

// WithHistoryWindow sets how many prior turns are passed to the completer
func WithHistoryWindow(n int) SessionOption {
	return func(s *Session) { s.historyWindow = n }
}

func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

func NewSession(completer Completer, opts ...SessionOption) *Session {
	s := &Session{
		id:            uuid.NewString(),
		completer:     completer,
		historyWindow: DefaultHistoryWindow,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("session_id", s.id).Logger()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Conversation returns a snapshot of the conversation so far
func (s *Session) Conversation() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// Busy reports whether a Send is outstanding
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// Send submits text as a new user turn and returns the assistant's reply. The only errors are ErrEmptyInput and
// ErrBusy, in which case nothing is appended and nothing is sent; failures talking to the assistant come back as an
// ordinary assistant turn
func (s *Session) Send(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyInput
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return Turn{}, ErrBusy
	}
	defer s.inFlight.Store(false)

	// Capture the context window before the new turn is appended; the completer receives the new text separately
	s.mu.Lock()
	history := s.conversation.Recent(s.historyWindow)
	s.conversation = s.conversation.Append(NewUserTurn(text))
	s.mu.Unlock()

	s.logger.Debug().Int("history_turns", len(history)).Msg("Sending user turn")
	reply := s.completer.Complete(ContextWithSessionID(ctx, s.id), text, history)

	s.mu.Lock()
	s.conversation = s.conversation.Append(reply)
	s.mu.Unlock()

	return reply, nil
}

type sessionIDKey struct{}

// ContextWithSessionID tags ctx with the ID of the session issuing a request
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext returns the session ID stored by ContextWithSessionID, or "" if there is none
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
