package model

import (
	"fmt"
	"strings"
)

// Status is the column a todo lives in. A todo has exactly one at a time.
type Status string

const (
	NotStarted Status = "not_started"
	InProgress Status = "in_progress"
	Done       Status = "done"
)

// Statuses lists every status in board order.
var Statuses = []Status{NotStarted, InProgress, Done}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case NotStarted, InProgress, Done:
		return true
	}
	return false
}

// Label is the column heading for s.
func (s Status) Label() string {
	switch s {
	case NotStarted:
		return "Not Started"
	case InProgress:
		return "In Progress"
	case Done:
		return "Done"
	}
	return string(s)
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts the wire values plus a few shell-friendly aliases.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not_started", "not-started", "todo":
		return NotStarted, nil
	case "in_progress", "in-progress", "doing":
		return InProgress, nil
	case "done":
		return Done, nil
	}
	return "", fmt.Errorf("unknown status %q (want not_started, in_progress or done)", s)
}

// Todo is the record exchanged with the backend.
// ID is assigned by the server and never changes afterwards.
type Todo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  Status `json:"type"`
}
