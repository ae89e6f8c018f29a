package store

import (
	"context"

	"locktodo/internal/task"
)

// Write is the pending persistence of one mutation. The mutation is already
// visible in memory; Write only reports when storage has caught up.
type Write struct {
	done       chan struct{}
	err        error
	superseded bool
}

// Done is closed once the write has finished or been skipped.
func (w *Write) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the write finishes or ctx ends. A nil Write (no-op
// mutation) returns immediately.
func (w *Write) Wait(ctx context.Context) error {
	if w == nil {
		return nil
	}
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Superseded reports whether a newer snapshot was stored first, making this
// one redundant. It blocks until the write has finished.
func (w *Write) Superseded() bool {
	if w == nil {
		return false
	}
	<-w.done
	return w.superseded
}

// persist snapshots the list and stores it in the background.
func (s *Store) persist() *Write {
	s.gen++
	gen := s.gen
	snapshot := task.Clone(s.tasks)

	w := &Write{done: make(chan struct{})}
	s.track(w)
	go func() {
		defer close(w.done)
		defer s.untrack(w)
		w.superseded, w.err = s.store(gen, snapshot)
	}()
	return w
}

func (s *Store) track(w *Write) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[*Write]struct{})
	}
	s.inflight[w] = struct{}{}
}

func (s *Store) untrack(w *Write) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, w)
}

// nextInflight returns any unfinished write, or nil.
func (s *Store) nextInflight() *Write {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	for w := range s.inflight {
		return w
	}
	return nil
}

// store writes snapshot unless a newer generation has already been committed.
func (s *Store) store(gen uint64, snapshot []task.Task) (superseded bool, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if gen < s.written {
		s.logger.Debug("skipped stale snapshot", "gen", gen, "written", s.written)
		return true, nil
	}

	data, err := task.Encode(snapshot)
	if err == nil {
		err = s.kv.Set(context.Background(), s.key, data)
	}
	if err != nil {
		s.logger.Error("failed to save tasks", "key", s.key, "gen", gen, "err", err)
		return false, err
	}

	s.written = gen
	s.logger.Debug("saved tasks", "key", s.key, "gen", gen, "count", len(snapshot))
	return false, nil
}

// Wait blocks until every write started so far has finished, or ctx ends.
// It waits on the writes themselves, so giving up on ctx leaves nothing
// behind.
func (s *Store) Wait(ctx context.Context) error {
	for {
		w := s.nextInflight()
		if w == nil {
			return nil
		}
		select {
		case <-w.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
