package domain

// User is the identity reconstructed from a verified token.
// It is never persisted here; the CRUD layer owns the user table.
type User struct {
	ID       uint64 `json:"id"`
	WsID     int64  `json:"ws_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}
