package ui

import "time"

// LayoutCompactWidth is the terminal width below which the host and age
// columns are dropped.
const LayoutCompactWidth = 80

// Log pane limits.
const (
	// LogPaneLines is how many diagnostics lines the log pane keeps.
	LogPaneLines = 500
)

// Timing constants.
const (
	// DefaultRequestTimeout bounds a single UI-triggered API call.
	DefaultRequestTimeout = 30 * time.Second

	// StatusMessageTTL is how long a flash message stays in the footer.
	StatusMessageTTL = 4 * time.Second

	// LogRefreshInterval is how often the log pane re-reads the file.
	LogRefreshInterval = 2 * time.Second
)
