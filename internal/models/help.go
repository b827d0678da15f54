package models

import "time"

// HelpMessage is a message sent to the help desk. Query is empty for
// generic messages.
type HelpMessage struct {
	ID        int64
	Query     string
	Message   string
	CreatedAt time.Time
}
