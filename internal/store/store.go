// Package store holds the in-memory roster: every Student keyed by id.
//
// The store is populated once during load and then sealed. After Seal every
// mutation fails, so readers can share it without further coordination.
// Reads always return copies.
package store

import (
	"errors"
	"fmt"
	"sync"

	apperrors "rostercli/internal/errors"
	"rostercli/pkg/contracts/domain"
)

// ErrSealed is returned by mutations after Seal.
var ErrSealed = errors.New("store is sealed")

// Store is an in-memory mapping from student id to Student.
type Store struct {
	mu       sync.RWMutex
	students map[string]*domain.Student
	order    []string
	sealed   bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		students: make(map[string]*domain.Student),
	}
}

// UpsertIdentity creates the student if id is unseen, otherwise overwrites
// its name and class. Subjects of an existing student are kept.
func (s *Store) UpsertIdentity(id, name, class string) error {
	if id == "" {
		return apperrors.NewValidationError("student id must not be empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}

	if st, exists := s.students[id]; exists {
		st.Name = name
		st.Class = class
		return nil
	}

	s.students[id] = domain.NewStudent(id, name, class)
	s.order = append(s.order, id)
	return nil
}

// AttachSubject sets a subject's marks on an existing student, replacing any
// marks already stored under that subject name.
func (s *Store) AttachSubject(id, subject string, marks []int) error {
	if len(marks) == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("student %q subject %q: no marks", id, subject), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}

	st, exists := s.students[id]
	if !exists {
		return apperrors.NewNotFoundError(id)
	}

	st.SetSubject(subject, marks)
	return nil
}

// Contains reports whether a student with id exists.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.students[id]
	return ok
}

// Get returns a copy of the student with id.
func (s *Store) Get(id string) (*domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.students[id]
	if !exists {
		return nil, apperrors.NewNotFoundError(id)
	}
	return st.Clone(), nil
}

// All returns copies of every student in first-seen order.
func (s *Store) All() []*domain.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Student, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.students[id].Clone())
	}
	return out
}

// Len returns the number of students.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Seal ends the load phase. It is idempotent.
func (s *Store) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (s *Store) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}
