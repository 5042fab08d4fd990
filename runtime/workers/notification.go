package workers

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/PY0226H/aicomm/domain"
	"github.com/PY0226H/aicomm/domain/event"
	"github.com/PY0226H/aicomm/errors"
)

// Notification is the wire contract with the CRUD layer: every committing
// mutation emits one of these on the corresponding Postgres channel. The
// sender embeds the affected user ids so the ingester never has to query.
type Notification struct {
	Kind       string          `json:"kind" validate:"required"`
	Chat       *domain.Chat    `json:"chat,omitempty"`
	Message    *domain.Message `json:"message,omitempty"`
	Recipients []uint64        `json:"recipients" validate:"required,min=1"`
}

// Decoder turns raw notification payloads into domain events plus their
// recipient set.
type Decoder struct {
	validate *validator.Validate
}

func NewDecoder() *Decoder {
	return &Decoder{validate: validator.New()}
}

// Decode parses one payload. Any failure means the single notification is
// malformed and must be dropped; it is wrapped in ErrMalformedNotification
// so the caller can log and move on.
func (d *Decoder) Decode(payload []byte) (event.AppEvent, []uint64, error) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errors.ErrMalformedNotification, err)
	}
	if err := d.validate.Struct(n); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errors.ErrMalformedNotification, err)
	}

	evt, err := toAppEvent(n)
	if err != nil {
		return nil, nil, err
	}
	return evt, n.Recipients, nil
}

func toAppEvent(n Notification) (event.AppEvent, error) {
	switch event.Kind(n.Kind) {
	case event.NewChatKind:
		if n.Chat == nil {
			return nil, fmt.Errorf("%w: %s without chat body", errors.ErrMalformedNotification, n.Kind)
		}
		return event.NewChat{Chat: *n.Chat}, nil
	case event.AddToChatKind:
		if n.Chat == nil {
			return nil, fmt.Errorf("%w: %s without chat body", errors.ErrMalformedNotification, n.Kind)
		}
		return event.AddToChat{Chat: *n.Chat}, nil
	case event.RemoveFromChatKind:
		if n.Chat == nil {
			return nil, fmt.Errorf("%w: %s without chat body", errors.ErrMalformedNotification, n.Kind)
		}
		return event.RemoveFromChat{Chat: *n.Chat}, nil
	case event.NewMessageKind:
		if n.Message == nil {
			return nil, fmt.Errorf("%w: %s without message body", errors.ErrMalformedNotification, n.Kind)
		}
		return event.NewMessage{Message: *n.Message}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEventKind, n.Kind)
	}
}
