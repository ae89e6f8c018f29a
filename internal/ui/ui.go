// Package ui implements the interactive task list.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"locktodo/internal/output"
	"locktodo/internal/store"
	"locktodo/internal/task"
)

// Option configures Run.
type Option func(*options)

type options struct {
	in        io.Reader
	out       io.Writer
	altScreen bool
}

// WithOutput sets where the program renders.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithInput sets where keys are read from.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.in = r
	}
}

// WithAltScreen toggles the alternate screen buffer (on by default).
func WithAltScreen(enabled bool) Option {
	return func(o *options) {
		o.altScreen = enabled
	}
}

// Run shows the list until the user quits or ctx ends. st must already be
// loaded; the program becomes its only writer while it runs.
func Run(ctx context.Context, st *store.Store, opts ...Option) error {
	o := resolve(opts)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if o.altScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if o.out != nil {
		progOpts = append(progOpts, tea.WithOutput(o.out))
	}
	if o.in != nil {
		progOpts = append(progOpts, tea.WithInput(o.in))
	}

	program := tea.NewProgram(New(st), progOpts...)
	_, err := program.Run()
	return err
}

func resolve(opts []Option) options {
	o := options{altScreen: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type mode int

const (
	modeList mode = iota
	modeInput
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

const (
	listHelp  = "a add • e edit • space toggle • d delete • q quit"
	inputHelp = "enter save • esc cancel"
)

// Model is the bubbletea model for the list view.
type Model struct {
	store  *store.Store
	tasks  []task.Task
	cursor int
	mode   mode
	input  textinput.Model
	status string
}

// New creates a model over a loaded store.
func New(st *store.Store) *Model {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 512
	ti.Width = 50

	m := &Model{
		store: st,
		input: ti,
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.store.ClearEditTarget()
		m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case tea.KeyEnter:
		_, editing := m.store.EditTarget()
		saved, _, ok := m.store.Submit(m.input.Value())
		if !ok {
			if _, still := m.store.EditTarget(); editing && !still {
				// The task went away underneath the edit.
				m.leaveInput()
				m.status = "Task no longer exists"
				m.refresh()
				return m, nil
			}
			// Blank text is ignored; the input stays open.
			m.status = ""
			return m, nil
		}
		m.leaveInput()
		m.refresh()
		if editing {
			m.status = "Updated task"
		} else {
			m.status = "Added task"
			m.cursor = len(m.tasks) - 1
		}
		m.selectID(saved.ID)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "a":
		m.store.ClearEditTarget()
		m.enterInput("")
		m.status = "New task: type and press Enter"
	case "e", "enter":
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.store.SetEditTarget(t.ID)
		m.enterInput(t.Text)
		m.status = "Editing task"
	case " ", "x":
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.store.ToggleComplete(t.ID)
		m.refresh()
		m.status = "Toggled task"
	case "d", "delete":
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.store.Remove(t.ID)
		m.refresh()
		m.status = "Deleted task"
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("locktodo"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(output.Summary(m.tasks)))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(statusStyle.Render(output.NoTasks))
		b.WriteString("\n")
	}
	editID, editing := m.store.EditTarget()
	for i, t := range m.tasks {
		pointer := "  "
		if i == m.cursor && m.mode == modeList {
			pointer = cursorStyle.Render("> ")
		}
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		text := t.Text
		if t.Completed {
			text = doneStyle.Render(text)
		}
		if editing && t.ID == editID {
			text += statusStyle.Render("  (editing)")
		}
		fmt.Fprintf(&b, "%s%s %s\n", pointer, box, text)
	}

	b.WriteString("\n")
	if m.mode == modeInput {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.mode == modeInput {
		b.WriteString(helpStyle.Render(inputHelp))
	} else {
		b.WriteString(helpStyle.Render(listHelp))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) enterInput(value string) {
	m.mode = modeInput
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) current() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) selectID(id string) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

// refresh re-reads the list and keeps the cursor in range.
func (m *Model) refresh() {
	m.tasks = m.store.Tasks()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
