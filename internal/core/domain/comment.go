package domain

import "time"

// Comment is a free-text message on an issue thread. IsStatusUpdate marks
// entries written by the system as a side effect of a status change.
type Comment struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	IssueID        string    `json:"issue"`
	AuthorID       string    `json:"author"`
	IsStatusUpdate bool      `json:"isStatusUpdate"`
	CreatedAt      time.Time `json:"createdAt"`
}
