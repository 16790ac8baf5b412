// Package memstore holds the single-tenant in-memory task store used by
// the console app. The store owns its entries exclusively; callers only
// ever see copies.
package memstore

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"taskify/internal/errs"
	"taskify/internal/models"
)

// Task is the single-tenant task record. Unlike the backend variant it
// tracks completion as a boolean toggle rather than a workflow status.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update carries the optional fields of a partial update. Nil means
// "leave unchanged".
type Update struct {
	Title       *string
	Description *string
}

// Store is an in-memory task collection keyed by task id. It is confined
// to a single goroutine (one REPL, one caller) and does no locking.
type Store struct {
	tasks map[string]*Task
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{tasks: make(map[string]*Task), now: time.Now}
}

// Add validates the title, assigns a fresh id and timestamps, and stores
// the task. Returns the stored record.
func (s *Store) Add(title, description string) (Task, error) {
	title, err := models.NormalizeTitle(title)
	if err != nil {
		return Task{}, err
	}
	if err := models.ValidateDescription(description); err != nil {
		return Task{}, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return Task{}, err
	}
	now := s.now()
	t := &Task{
		ID:          id.String(),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[t.ID] = t
	return *t, nil
}

// Get resolves a full or short id to a task.
func (s *Store) Get(idOrPrefix string) (Task, error) {
	t, err := s.resolve(idOrPrefix)
	if err != nil {
		return Task{}, err
	}
	return *t, nil
}

// List returns all tasks in no particular order.
func (s *Store) List() []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	return out
}

// Update applies a partial update. Validation happens before any field is
// written, so a failed call leaves the task untouched.
func (s *Store) Update(idOrPrefix string, upd Update) (Task, error) {
	t, err := s.resolve(idOrPrefix)
	if err != nil {
		return Task{}, err
	}
	var title string
	if upd.Title != nil {
		title, err = models.NormalizeTitle(*upd.Title)
		if err != nil {
			return Task{}, err
		}
	}
	if upd.Description != nil {
		if err := models.ValidateDescription(*upd.Description); err != nil {
			return Task{}, err
		}
	}
	if upd.Title != nil {
		t.Title = title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	t.UpdatedAt = s.now()
	return *t, nil
}

// ToggleCompletion flips the completed flag and refreshes the timestamp.
func (s *Store) ToggleCompletion(idOrPrefix string) (Task, error) {
	t, err := s.resolve(idOrPrefix)
	if err != nil {
		return Task{}, err
	}
	t.Completed = !t.Completed
	t.UpdatedAt = s.now()
	return *t, nil
}

// Delete removes a task. It reports whether a task was removed and is
// idempotent: a second delete of the same id returns false, not an error.
func (s *Store) Delete(idOrPrefix string) (bool, error) {
	t, err := s.resolve(idOrPrefix)
	if err != nil {
		if errs.IsAmbiguousID(err) {
			return false, err
		}
		return false, nil
	}
	delete(s.tasks, t.ID)
	return true, nil
}

// Count returns the number of stored tasks.
func (s *Store) Count() int { return len(s.tasks) }

// resolve maps a full id or an unambiguous prefix to exactly one task.
// Exact matches win without a scan. The prefix scan is linear in store
// size, which is fine for a single interactive session.
func (s *Store) resolve(idOrPrefix string) (*Task, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, errs.ErrNotFound
	}
	if t, ok := s.tasks[idOrPrefix]; ok {
		return t, nil
	}
	var match *Task
	for id, t := range s.tasks {
		if !strings.HasPrefix(id, idOrPrefix) {
			continue
		}
		if match != nil {
			return nil, &errs.AmbiguousIDError{Input: idOrPrefix}
		}
		match = t
	}
	if match == nil {
		return nil, errs.ErrNotFound
	}
	return match, nil
}
