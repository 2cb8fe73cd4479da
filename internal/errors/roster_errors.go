package errors

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance bounds how far a header may be from the missing
// column and still be offered as a suggestion.
const maxSuggestionDistance = 2

// SchemaError reports a required column missing from a source header.
type SchemaError struct {
	Column     string
	Source     string
	Suggestion string
}

// NewSchemaError builds a SchemaError, suggesting the closest header name
// when one is within a small edit distance of the missing column.
func NewSchemaError(column, source string, header []string) *SchemaError {
	return &SchemaError{
		Column:     column,
		Source:     source,
		Suggestion: closestHeader(column, header),
	}
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("%s: required column %q missing", e.Source, e.Column)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func closestHeader(column string, header []string) string {
	best, bestDist := "", maxSuggestionDistance+1
	target := strings.ToLower(column)
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		d := levenshtein.ComputeDistance(target, strings.ToLower(h))
		if d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// MarkFormatError reports a marks field that is not a list of non-negative
// integers. Line is the 1-based line number in Source, 0 when unknown.
type MarkFormatError struct {
	StudentID string
	Field     string
	Raw       string
	Source    string
	Line      int
}

func (e *MarkFormatError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	return fmt.Sprintf("%s: student %q field %q: invalid marks %q", loc, e.StudentID, e.Field, e.Raw)
}

func (e *MarkFormatError) Unwrap() error { return ErrMarkFormat }

// UnknownStudentError reports a marks row for an id absent from the identity
// source when unknown students are rejected.
type UnknownStudentError struct {
	StudentID string
	Source    string
	Line      int
}

func (e *UnknownStudentError) Error() string {
	return fmt.Sprintf("%s:%d: marks for unknown student %q", e.Source, e.Line, e.StudentID)
}

func (e *UnknownStudentError) Unwrap() error { return ErrUnknownStudent }

// MissingSubjectError reports a student without one of the canonical
// subjects at export time.
type MissingSubjectError struct {
	StudentID string
	Subject   string
}

func (e *MissingSubjectError) Error() string {
	return fmt.Sprintf("student %q has no %s marks", e.StudentID, e.Subject)
}

func (e *MissingSubjectError) Unwrap() error { return ErrMissingSubject }
