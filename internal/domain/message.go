package domain

import "time"

// Message is one entry in a complaint's reply thread. Append-only.
type Message struct {
	ID          string
	ComplaintID string
	AuthorID    string
	AuthorName  string
	AuthorAdmin bool
	Text        string
	Internal    bool
	CreatedAt   time.Time
}
