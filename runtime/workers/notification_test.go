package workers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PY0226H/aicomm/domain/event"
	"github.com/PY0226H/aicomm/errors"
)

func TestDecoder_NewMessage(t *testing.T) {
	req := require.New(t)
	decoder := NewDecoder()

	payload := []byte(`{
		"kind": "new_message",
		"message": {"id": 10, "chat_id": 3, "sender_id": 1, "content": "hi", "created_at": "2026-01-02T15:04:05Z"},
		"recipients": [1, 2]
	}`)

	evt, recipients, err := decoder.Decode(payload)

	req.NoError(err)
	req.Equal([]uint64{1, 2}, recipients)
	msg, ok := evt.(event.NewMessage)
	req.True(ok)
	req.Equal(int64(10), msg.Message.ID)
	req.Equal(int64(3), msg.Message.ChatID)
	req.Equal("hi", msg.Message.Content)
}

func TestDecoder_ChatKinds(t *testing.T) {
	decoder := NewDecoder()

	tests := []struct {
		kind string
		want event.Kind
	}{
		{"new_chat", event.NewChatKind},
		{"add_to_chat", event.AddToChatKind},
		{"remove_from_chat", event.RemoveFromChatKind},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			payload := []byte(`{
				"kind": "` + tt.kind + `",
				"chat": {"id": 5, "ws_id": 1, "type": "group", "members": [1, 2, 3]},
				"recipients": [1, 2, 3]
			}`)

			evt, recipients, err := decoder.Decode(payload)

			require.NoError(t, err)
			require.Equal(t, tt.want, evt.Kind())
			require.Len(t, recipients, 3)
		})
	}
}

func TestDecoder_MalformedPayloads(t *testing.T) {
	decoder := NewDecoder()

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"not json", `{{{`, errors.ErrMalformedNotification},
		{"missing kind", `{"recipients": [1]}`, errors.ErrMalformedNotification},
		{"empty recipients", `{"kind": "new_message", "message": {"id": 1}, "recipients": []}`, errors.ErrMalformedNotification},
		{"no recipients", `{"kind": "new_message", "message": {"id": 1}}`, errors.ErrMalformedNotification},
		{"unknown kind", `{"kind": "bogus", "recipients": [1]}`, errors.ErrUnknownEventKind},
		{"message kind without body", `{"kind": "new_message", "recipients": [1]}`, errors.ErrMalformedNotification},
		{"chat kind without body", `{"kind": "new_chat", "recipients": [1]}`, errors.ErrMalformedNotification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decoder.Decode([]byte(tt.payload))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
