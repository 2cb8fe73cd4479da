// Package reports builds the read-only views over a loaded roster: the
// ranking by weighted average, the alphabetical listing, the per-student
// progress report and the single-student card. Views never modify the
// students they are given.
package reports
