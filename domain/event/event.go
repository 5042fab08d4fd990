package event

import "github.com/PY0226H/aicomm/domain"

type Kind string

const (
	NewChatKind        Kind = "new_chat"
	AddToChatKind      Kind = "add_to_chat"
	RemoveFromChatKind Kind = "remove_from_chat"
	NewMessageKind     Kind = "new_message"
)

// AppEvent is one typed, immutable notification of a committed state change.
// The same value is shared read-only by every recipient; fan-out never copies.
type AppEvent interface {
	Kind() Kind
}

type NewChat struct {
	Chat domain.Chat `json:"chat"`
}

func (e NewChat) Kind() Kind { return NewChatKind }

type AddToChat struct {
	Chat domain.Chat `json:"chat"`
}

func (e AddToChat) Kind() Kind { return AddToChatKind }

type RemoveFromChat struct {
	Chat domain.Chat `json:"chat"`
}

func (e RemoveFromChat) Kind() Kind { return RemoveFromChatKind }

type NewMessage struct {
	Message domain.Message `json:"message"`
}

func (e NewMessage) Kind() Kind { return NewMessageKind }
