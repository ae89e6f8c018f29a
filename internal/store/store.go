// Package store holds the session's task list and keeps its persisted copy
// up to date.
//
// A Store has a single writer. It is driven by one goroutine (a command body
// or the UI event loop) and offers no locking for concurrent mutators.
// Persistence runs on background goroutines that only ever see immutable
// snapshots, so callers never wait on storage unless they ask to via Write.Wait
// or Store.Wait.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"locktodo/internal/config"
	"locktodo/internal/kv"
	"locktodo/internal/logging"
	"locktodo/internal/task"
)

// DefaultKey is the entry the task list is stored under.
const DefaultKey = config.DefaultStorageKey

// Option configures a Store.
type Option func(*Store)

// WithKey sets the key the list is persisted under.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger for load and persistence failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the id minting function.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store owns the ordered task list and its edit target.
type Store struct {
	kv     kv.Store
	key    string
	logger *log.Logger
	newID  func() string

	tasks      []task.Task
	editTarget string

	gen uint64 // generation of the latest snapshot handed to a write

	inflightMu sync.Mutex
	inflight   map[*Write]struct{} // writes not yet finished

	writeMu sync.Mutex
	written uint64 // generation of the latest committed snapshot, guarded by writeMu
}

// New creates an empty store persisting to backend. Call Load to read the
// persisted list.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		key:    DefaultKey,
		logger: logging.Discard(),
		newID:  task.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the key the list is persisted under.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory list with the persisted one.
// A missing entry yields an empty list; read, parse and schema failures are
// logged and also yield an empty list.
func (s *Store) Load(ctx context.Context) []task.Task {
	s.tasks = nil
	s.editTarget = ""

	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		s.logger.Debug("no saved tasks", "key", s.key)
		return s.Tasks()
	}
	if err != nil {
		s.logger.Error("failed to load tasks", "key", s.key, "err", err)
		return s.Tasks()
	}

	tasks, discarded, err := task.Decode(data)
	if err != nil {
		s.logger.Error("failed to parse saved tasks", "key", s.key, "err", err)
		return s.Tasks()
	}
	if len(discarded.Duplicates) > 0 {
		s.logger.Warn("dropped tasks with duplicate ids", "key", s.key, "ids", discarded.Duplicates)
	}
	if len(discarded.Blank) > 0 {
		s.logger.Warn("dropped tasks with blank text", "key", s.key, "ids", discarded.Blank)
	}

	s.tasks = tasks
	s.logger.Debug("loaded tasks", "key", s.key, "count", len(tasks))
	return s.Tasks()
}

// Tasks returns a copy of the list in display order.
func (s *Store) Tasks() []task.Task {
	return task.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task with id.
func (s *Store) Get(id string) (task.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

// Add appends a new incomplete task. Text that is empty after trimming is
// rejected without touching the list or storage.
func (s *Store) Add(text string) (task.Task, *Write, bool) {
	text, ok := task.NormalizeText(text)
	if !ok {
		return task.Task{}, nil, false
	}

	t := task.Task{ID: s.mintID(), Text: text}
	s.tasks = append(s.tasks, t)
	return t, s.persist(), true
}

// Update replaces the text of the task with id, keeping its position and
// completion. It reports false for empty text or an unknown id, in which case
// nothing is written.
func (s *Store) Update(id, text string) (*Write, bool) {
	text, ok := task.NormalizeText(text)
	if !ok {
		return nil, false
	}
	i := s.index(id)
	if i < 0 {
		return nil, false
	}

	s.tasks[i].Text = text
	return s.persist(), true
}

// ToggleComplete flips the completion of the task with id.
func (s *Store) ToggleComplete(id string) (*Write, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}

	s.tasks[i].Completed = !s.tasks[i].Completed
	return s.persist(), true
}

// Remove deletes the task with id. Removing the edit target clears it.
func (s *Store) Remove(id string) (*Write, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}

	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	if s.editTarget == id {
		s.editTarget = ""
	}
	return s.persist(), true
}

// SetEditTarget marks id as the task the input is editing. An empty id
// clears the target.
func (s *Store) SetEditTarget(id string) {
	s.editTarget = id
}

// ClearEditTarget leaves edit mode.
func (s *Store) ClearEditTarget() {
	s.editTarget = ""
}

// EditTarget returns the task id being edited, if any.
func (s *Store) EditTarget() (string, bool) {
	return s.editTarget, s.editTarget != ""
}

// Submit applies the input box: with an edit target it updates that task and
// leaves edit mode, otherwise it adds a task. Empty text changes nothing,
// including the edit target.
func (s *Store) Submit(text string) (task.Task, *Write, bool) {
	id, editing := s.EditTarget()
	if !editing {
		return s.Add(text)
	}

	w, ok := s.Update(id, text)
	if !ok {
		if _, exists := s.Get(id); !exists {
			s.editTarget = ""
		}
		return task.Task{}, nil, false
	}
	s.editTarget = ""
	t, _ := s.Get(id)
	return t, w, true
}

// index is a linear scan; personal lists are small.
func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// mintID draws ids until one is not already live.
func (s *Store) mintID() string {
	for {
		id := s.newID()
		if id != "" && s.index(id) < 0 {
			return id
		}
		s.logger.Warn("regenerating colliding task id", "id", id)
	}
}
