package domain

import "time"

type ChatType string

const (
	SingleChat     ChatType = "single"
	GroupChat      ChatType = "group"
	PrivateChannel ChatType = "private_channel"
	PublicChannel  ChatType = "public_channel"
)

// Chat is the summary embedded in chat events. It carries enough for a
// client to render the change without a follow-up fetch.
type Chat struct {
	ID        int64     `json:"id"`
	WsID      int64     `json:"ws_id"`
	Name      *string   `json:"name"`
	Type      ChatType  `json:"type"`
	Members   []uint64  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}
