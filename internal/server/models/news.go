package models

import "time"

// News is a short post owned by exactly one user. OwnerID is set at creation
// and never changes. A private item is readable only by its owner.
type News struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	Private   bool
	CreatedAt time.Time
}
