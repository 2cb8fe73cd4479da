package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	apperrors "rostercli/internal/errors"
)

type menuItem struct {
	key    string
	label  string
	action Action
}

var menuItems = []menuItem{
	{"1", "Ranked report (weighted average)", ActionRanked},
	{"2", "Alphabetical listing", ActionAlphabetical},
	{"3", "Progress report", ActionProgress},
	{"4", "Export roster", ActionExport},
	{"5", "Show student", ActionStudent},
}

const exitKey = "0"

// Run shows the numbered menu until the user exits or in is exhausted. Each
// selection runs exactly one action; failures are printed and the menu
// comes back.
func (a *Application) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	handler := apperrors.NewErrorHandler(a.Logger, out)
	scanner := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		printMenu(out, a.Store.Len())
		choice, ok := readLine(scanner)
		if !ok || choice == exitKey || strings.EqualFold(choice, "q") {
			fmt.Fprintln(out, "Bye.")
			return scanner.Err()
		}

		item, found := lookup(choice)
		if !found {
			fmt.Fprintf(out, "Unknown option %q\n", choice)
			continue
		}

		var arg string
		if item.action == ActionStudent {
			fmt.Fprint(out, "Student ID: ")
			if arg, ok = readLine(scanner); !ok {
				fmt.Fprintln(out)
				return scanner.Err()
			}
		}

		fmt.Fprintln(out)
		if err := a.Execute(ctx, item.action, arg, out); err != nil {
			handler.Handle(ctx, err)
		}
	}
}

func printMenu(out io.Writer, students int) {
	fmt.Fprintf(out, "\nRoster (%d students)\n", students)
	for _, item := range menuItems {
		fmt.Fprintf(out, "  %s) %s\n", item.key, item.label)
	}
	fmt.Fprintf(out, "  %s) Exit\n", exitKey)
	fmt.Fprint(out, "Select: ")
}

func lookup(key string) (menuItem, bool) {
	for _, item := range menuItems {
		if item.key == key {
			return item, true
		}
	}
	return menuItem{}, false
}

func readLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
