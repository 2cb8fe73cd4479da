package domain

import "slices"

// Canonical subject names used when no subject set is configured.
const (
	SubjectMath    = "Math"
	SubjectScience = "Science"
	SubjectEnglish = "English"
)

// DefaultSubjects is the canonical subject set, in column order.
var DefaultSubjects = []string{SubjectMath, SubjectScience, SubjectEnglish}

// Subject is one subject's mark history for one student.
// Marks are in assignment order: assignment 1 is Marks[0].
type Subject struct {
	Name  string `json:"name" validate:"required"`
	Marks []int  `json:"marks" validate:"required,min=1,dive,min=0"`
}

// Sum returns the sum of all marks in the subject.
func (s Subject) Sum() int {
	total := 0
	for _, m := range s.Marks {
		total += m
	}
	return total
}

// Student aggregates a student's identity and subject marks.
//
// Subjects are keyed by name and keep their first insertion position so that
// listings are stable across runs. Replacing a subject keeps its position.
type Student struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Class string `json:"class"`

	subjects map[string]Subject
	order    []string
}

// NewStudent creates a student with no subjects.
func NewStudent(id, name, class string) *Student {
	return &Student{
		ID:       id,
		Name:     name,
		Class:    class,
		subjects: make(map[string]Subject),
	}
}

// SetSubject attaches marks under the subject name, replacing any previous
// marks for that subject. The marks slice is copied.
func (s *Student) SetSubject(name string, marks []int) {
	if s.subjects == nil {
		s.subjects = make(map[string]Subject)
	}
	if _, exists := s.subjects[name]; !exists {
		s.order = append(s.order, name)
	}
	s.subjects[name] = Subject{Name: name, Marks: slices.Clone(marks)}
}

// Subject returns the named subject.
func (s *Student) Subject(name string) (Subject, bool) {
	sub, ok := s.subjects[name]
	return sub, ok
}

// Subjects returns the student's subjects in insertion order.
func (s *Student) Subjects() []Subject {
	out := make([]Subject, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.subjects[name])
	}
	return out
}

// SubjectCount returns the number of attached subjects.
func (s *Student) SubjectCount() int {
	return len(s.order)
}

// MarkCount returns the number of marks across all subjects.
func (s *Student) MarkCount() int {
	n := 0
	for _, sub := range s.subjects {
		n += len(sub.Marks)
	}
	return n
}

// Clone returns a deep copy of the student.
func (s *Student) Clone() *Student {
	c := NewStudent(s.ID, s.Name, s.Class)
	for _, name := range s.order {
		c.SetSubject(name, s.subjects[name].Marks)
	}
	return c
}
