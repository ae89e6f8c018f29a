package commands

import (
	"errors"
	"fmt"
	"io"

	"locktodo/internal/store"
	"locktodo/internal/task"
)

// lookupTask finds the task a reference points at. Positions win over ids
// when both could match.
func lookupTask(st *store.Store, ref TaskRef) (task.Task, error) {
	if ref.Position > 0 {
		tasks := st.Tasks()
		if ref.Position <= len(tasks) {
			return tasks[ref.Position-1], nil
		}
	}
	if t, ok := st.Get(ref.ID); ok {
		return t, nil
	}
	if ref.Position > 0 || ref.ID == "0" {
		return task.Task{}, fmt.Errorf("task number out of range: %s", ref)
	}
	return task.Task{}, fmt.Errorf("task not found: %s", ref)
}

// resolveTask parses args[0] and looks it up, printing the error line on
// failure.
func resolveTask(st *store.Store, args []string, errOut io.Writer) (task.Task, bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return task.Task{}, false
	}

	t, err := lookupTask(st, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, false
	}
	return t, true
}
