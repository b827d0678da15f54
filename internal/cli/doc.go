// Package cli implements the interactive helpkeeper console.
//
// The App walks a user through the login workflow (bootstrap, invitation and
// self registration, profile setup, password reset, role selection) and then
// runs a read-eval-print loop. Each command is bound to a capability; it is
// only executed when the session token grants that capability to the role
// chosen at login.
//
// User-facing text goes to the App's writer. Diagnostics go to the logger.
package cli
