package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	apperrors "rostercli/internal/errors"
	"rostercli/internal/exporter"
	"rostercli/internal/infrastructure"
	"rostercli/internal/reports"
)

// Action is one core operation reachable from the menu or the command line.
type Action string

const (
	ActionRanked       Action = reports.KindRanked
	ActionAlphabetical Action = reports.KindAlphabetical
	ActionProgress     Action = reports.KindProgress
	ActionExport       Action = "export"
	ActionStudent      Action = reports.KindStudent
)

// ParseCommand splits a one-shot command such as "ranked" or
// "student:S001" into its action and argument.
func ParseCommand(cmd string) (Action, string, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(cmd), ":")
	action := Action(strings.ToLower(strings.TrimSpace(name)))
	arg = strings.TrimSpace(arg)

	switch action {
	case ActionRanked, ActionAlphabetical, ActionProgress, ActionExport:
		return action, "", nil
	case ActionStudent:
		if arg == "" {
			return "", "", apperrors.NewValidationError("command student needs an id, e.g. student:S001", nil)
		}
		return action, arg, nil
	default:
		return "", "", apperrors.NewValidationError(fmt.Sprintf("unknown command %q", cmd), nil)
	}
}

// Execute runs one action against the loaded roster and writes its output.
func (a *Application) Execute(ctx context.Context, action Action, arg string, out io.Writer) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	students := a.Store.All()

	switch action {
	case ActionRanked:
		return reports.WriteRanked(out, a.Reports.Ranked(ctx, students))
	case ActionAlphabetical:
		return reports.WriteAlphabetical(out, a.Reports.Alphabetical(ctx, students))
	case ActionProgress:
		return reports.WriteProgress(out, a.Reports.Progress(ctx, students))
	case ActionStudent:
		s, err := a.Store.Get(arg)
		if err != nil {
			return err
		}
		return reports.WriteCard(out, s, a.Reports.Card(ctx, s))
	case ActionExport:
		dest := exporter.Destinations{CSV: a.Paths.ExportFile}
		if a.Config.Export.Workbook {
			dest.Workbook = a.Paths.WorkbookFile
		}
		if err := exporter.ExportAll(ctx, a.Roster, a.Reports, students, dest); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d students to %s\n", len(students), dest.CSV)
		if dest.Workbook != "" {
			fmt.Fprintf(out, "Workbook written to %s\n", dest.Workbook)
		}
		return nil
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown action %q", action), nil)
	}
}

// RunCommand executes a single command and prints a diagnostic on failure.
func (a *Application) RunCommand(ctx context.Context, cmd string, out io.Writer) error {
	handler := apperrors.NewErrorHandler(a.Logger, out)

	action, arg, err := ParseCommand(cmd)
	if err == nil {
		err = a.Execute(ctx, action, arg, out)
	}
	if err != nil {
		handler.Handle(ctx, err)
		return err
	}
	return nil
}
