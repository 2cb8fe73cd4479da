package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Diagnostic is the user-facing rendering of an error. Fatal diagnostics end
// the run; the rest return control to the menu.
type Diagnostic struct {
	Code    string
	Message string
	Fatal   bool
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("error [%s]: %s", d.Code, d.Message)
}

// Describe maps an error to a diagnostic naming the offending file, column or
// student.
func Describe(err error) Diagnostic {
	if err == nil {
		return Diagnostic{}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Diagnostic{Code: "CANCELLED", Message: "operation cancelled", Fatal: true}
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return Diagnostic{Code: string(ErrTypeSchema), Message: schemaErr.Error(), Fatal: true}
	}

	var markErr *MarkFormatError
	if errors.As(err, &markErr) {
		return Diagnostic{Code: string(ErrTypeParsing), Message: markErr.Error(), Fatal: true}
	}

	var unknownErr *UnknownStudentError
	if errors.As(err, &unknownErr) {
		return Diagnostic{Code: string(ErrTypeReference), Message: unknownErr.Error(), Fatal: true}
	}

	var subjectErr *MissingSubjectError
	if errors.As(err, &subjectErr) {
		return Diagnostic{Code: string(ErrTypeExport), Message: "export aborted: " + subjectErr.Error()}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Cause != nil {
			msg += ": " + appErr.Cause.Error()
		}
		return Diagnostic{
			Code:    string(appErr.Type),
			Message: msg,
			Fatal:   appErr.Type == ErrTypeConfig || appErr.Type == ErrTypeValidation,
		}
	}

	return Diagnostic{Code: "INTERNAL", Message: err.Error()}
}

// ErrorHandler logs errors and prints their diagnostics.
type ErrorHandler struct {
	logger *slog.Logger
	out    io.Writer
}

// NewErrorHandler creates a new error handler writing diagnostics to out.
func NewErrorHandler(logger *slog.Logger, out io.Writer) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
		out:    out,
	}
}

// Handle logs err, prints its diagnostic and returns it.
func (h *ErrorHandler) Handle(ctx context.Context, err error) Diagnostic {
	d := Describe(err)
	if err == nil {
		return d
	}

	level := slog.LevelWarn
	if d.Fatal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "operation failed",
		slog.String("code", d.Code),
		slog.Bool("fatal", d.Fatal),
		slog.String("error", err.Error()))

	fmt.Fprintln(h.out, d.String())
	return d
}
