// Package app is the composition root for hoard.
//
// Run loads config.toml, opens the diagnostics log, reads prefs.toml and
// builds the session.Store every front end shares. It then starts one of:
//
//   - ModeTUI: the Bubble Tea interface in package ui. Console logging is
//     disabled so only the diagnostics file receives log output.
//   - ModeServe: the loopback command bridge in package bridge, shut down
//     gracefully when the context is cancelled.
//
// The store's origin comes from server_url in config.toml (or
// HOARD_SERVER_URL), else from the last URL saved in prefs.toml. The API
// key is never read from disk; it has to be entered and validated each
// session.
//
// # Error Handling
//
// Configuration errors are fatal and returned from Run. A configured
// server URL that fails normalization is logged and ignored, leaving the
// setup form for the user to fix.
package app
