// Package shared groups helpers used across the rostercli packages.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and writers for roster fixture files (delimited and .xlsx).
//
//	func TestLoad(t *testing.T) {
//	    files := testutil.WriteRoster(t)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelWarn, "unknown student")
//	}
package shared
