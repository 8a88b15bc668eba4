// Package logtail reads the tail of hoard's diagnostics file.
//
// # Reading
//
// Read returns the last N lines using a ring buffer of size N, so a
// long-running session's log is scanned once in O(N) memory. A missing
// file is not an error; it simply has no lines yet.
//
// Latest locates the newest timestamped file in a log directory, which is
// how `hoard` finds a previous session's diagnostics when the current
// process has no file of its own.
//
// # Formatting
//
// The diagnostics file is written by zap's JSON encoder. Format turns a
// line such as
//
//	{"level":"info","ts":"...","msg":"request complete","status":200}
//
// into "... INFO request complete status=200" for the log pane and the
// bridge tail_log command. Fields are sorted by key. Anything that is not a
// JSON object passes through unchanged.
package logtail
