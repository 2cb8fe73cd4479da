// Package files locates roster source files on disk.
//
// Discovery lists the delimited and workbook sources in a directory and
// resolves a configured source name to an existing file, falling back to
// the same stem with another source extension:
//
//	d := files.NewDiscovery(logger)
//	path, substituted := d.ResolveSource("data/students.csv")
package files
