// Package exporter writes the roster back to disk.
//
// This package contains three main components:
//
// CSVWriter: delimited writing with a configurable delimiter, an optional
// UTF-8 BOM for Excel compatibility and write-then-rename so a failed export
// never leaves a truncated file.
//
// RosterExporter: the StudentID;Name;Class;<subjects> export, in the same
// shape the loader reads.
//
// WorkbookExporter: an .xlsx copy with a Marks sheet and a Ranking sheet.
//
// Example usage:
//
//	roster := exporter.NewRosterExporter(exporter.RosterOptions{
//	    CSV: exporter.CSVOptions{Delimiter: ';'},
//	}, logger)
//	err := exporter.ExportAll(ctx, roster, generator, store.All(), exporter.Destinations{
//	    CSV:      "data/all_students.csv",
//	    Workbook: "data/all_students.xlsx",
//	})
package exporter
