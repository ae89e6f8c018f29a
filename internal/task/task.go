// Package task defines the to-do entry and its persisted JSON form.
package task

import (
	"strings"

	"github.com/google/uuid"
)

// Task is a single to-do entry.
type Task struct {
	// ID is assigned once at creation and never changes.
	ID string `json:"id"`

	// Text is the trimmed, non-empty content.
	Text string `json:"text"`

	// Completed is false for new tasks.
	Completed bool `json:"completed"`
}

// NewID mints a random identifier for a new task.
func NewID() string {
	return uuid.NewString()
}

// NormalizeText trims surrounding whitespace and reports whether anything is left.
func NormalizeText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, text != ""
}

// Clone returns a copy of tasks that shares no backing array with the input.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
