// Package app wires the roster components together and drives the
// interactive menu.
//
// # Initialization Flow
//
//	1. Initialize logging and observability from the loaded configuration
//	2. Resolve source and export paths
//	3. Load and seal the roster (fatal on schema or mark errors)
//	4. Create the report generator and exporters
//	5. Start the diagnostics listener when configured
//
// After startup the store is read-only. Menu actions and one-shot commands
// only read from it; their errors are printed and never end the run.
package app
