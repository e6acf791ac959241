package models

import "time"

// Session is a server-side session row. Remember marks the long-lived mode;
// either way the row is persisted, so remember-me sessions survive restarts
// and any session can be revoked by deleting its row.
type Session struct {
	ID        string
	UserID    string
	Remember  bool
	Expires   time.Time
	CreatedAt time.Time
}
