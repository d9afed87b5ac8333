package chat

// Conversation is the ordered history of turns for the current session. Insertion order is the only ordering
// guarantee. Conversations are values with copy-on-write semantics: Append never alters the receiver or any
// conversation previously derived from it, so a caller may keep an old Conversation as a snapshot.
//
// The zero value is an empty conversation.
type Conversation struct {
	turns []Turn
}

// Append returns a conversation with turn added at the end
func (c Conversation) Append(turn Turn) Conversation {
	// Always allocate so that two appends to the same snapshot can't write into a shared backing array
	turns := make([]Turn, len(c.turns), len(c.turns)+1)
	copy(turns, c.turns)
	return Conversation{turns: append(turns, turn)}
}

func (c Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy of every turn, oldest first
func (c Conversation) Turns() []Turn {
	return c.Recent(len(c.turns))
}

// Last returns the most recent turn, and false if the conversation is empty
func (c Conversation) Last() (Turn, bool) {
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

// Recent returns up to n of the most recent turns, oldest first
func (c Conversation) Recent(n int) []Turn {
	if n <= 0 {
		return []Turn{}
	}
	start := max(len(c.turns)-n, 0)
	recent := make([]Turn, len(c.turns)-start)
	copy(recent, c.turns[start:])
	return recent
}
