// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"locktodo/internal/task"
)

// NoTasks is printed by list when the store is empty.
const NoTasks = "no tasks found"

// FormatTask formats a task line for the list command.
// Format: "{N:>4}  [x] {TEXT}\n" (4-wide right-aligned number, two spaces,
// check box, text)
func FormatTask(w io.Writer, num int, t task.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(t.Completed), normalizeText(t.Text))
}

// FormatTaskWithID is FormatTask with the task id between number and box.
func FormatTaskWithID(w io.Writer, num int, t task.Task) {
	fmt.Fprintf(w, "%4d  %s  %s %s\n", num, t.ID, checkbox(t.Completed), normalizeText(t.Text))
}

// FormatTasks writes every task numbered from 1.
func FormatTasks(w io.Writer, tasks []task.Task, withIDs bool) {
	for i, t := range tasks {
		if withIDs {
			FormatTaskWithID(w, i+1, t)
		} else {
			FormatTask(w, i+1, t)
		}
	}
}

// Summary returns "N tasks, M done".
func Summary(tasks []task.Task) string {
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	noun := "tasks"
	if len(tasks) == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s, %d done", len(tasks), noun, done)
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// normalizeText normalizes task text for display.
// - Newlines are replaced with spaces
// - Empty or whitespace-only text becomes "(untitled)"
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
