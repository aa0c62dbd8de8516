package model

import "strings"

// Role tags who authored a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged chat turn.
type Message struct {
	Role    Role
	Content string
}

func (m Message) String() string { return string(m.Role) + ": " + m.Content }

// Conversation is an immutable, ordered list of messages. With returns a new
// conversation and never touches the receiver's backing array.
type Conversation struct {
	messages []Message
}

// NewConversation starts a conversation from the given messages.
func NewConversation(msgs ...Message) Conversation {
	return Conversation{}.With(msgs...)
}

// With returns a copy of c with msgs appended.
func (c Conversation) With(msgs ...Message) Conversation {
	out := make([]Message, 0, len(c.messages)+len(msgs))
	out = append(out, c.messages...)
	out = append(out, msgs...)
	return Conversation{messages: out}
}

// System, User and Assistant append a single message of that role.
func (c Conversation) System(content string) Conversation {
	return c.With(Message{Role: RoleSystem, Content: content})
}

func (c Conversation) User(content string) Conversation {
	return c.With(Message{Role: RoleUser, Content: content})
}

func (c Conversation) Assistant(content string) Conversation {
	return c.With(Message{Role: RoleAssistant, Content: content})
}

// Messages returns a copy of the messages in order.
func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c Conversation) Len() int { return len(c.messages) }

// SystemText joins every system message, in order, for providers that take a
// single system instruction.
func (c Conversation) SystemText() string {
	var parts []string
	for _, m := range c.messages {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Turns returns the non-system messages in order.
func (c Conversation) Turns() []Message {
	var out []Message
	for _, m := range c.messages {
		if m.Role != RoleSystem {
			out = append(out, m)
		}
	}
	return out
}
