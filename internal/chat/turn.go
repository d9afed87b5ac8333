// Package chat holds the in-memory state of a chat session: the turns exchanged with the assistant and the
// append-only conversation they form.
package chat

import "slices"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message exchanged in the conversation. A Turn is immutable once created; use the constructors rather
// than building one by hand so that the sources slice is not shared with the caller
type Turn struct {
	role    Role
	content string
	sources []string // Optional, e.g. the name of the provider that produced the content
}

func NewUserTurn(content string) Turn {
	return Turn{role: RoleUser, content: content}
}

func NewAssistantTurn(content string, sources ...string) Turn {
	return Turn{role: RoleAssistant, content: content, sources: slices.Clone(sources)}
}

func (t Turn) Role() Role       { return t.role }
func (t Turn) Content() string  { return t.content }
func (t Turn) HasSources() bool { return len(t.sources) > 0 }

// Sources returns a copy of the turn's source tags, or nil if it has none
func (t Turn) Sources() []string {
	return slices.Clone(t.sources)
}

// Equal reports whether two turns have the same role, content and sources
func (t Turn) Equal(other Turn) bool {
	return t.role == other.role && t.content == other.content && slices.Equal(t.sources, other.sources)
}
