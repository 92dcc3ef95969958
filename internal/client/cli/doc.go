// Package cli provides the interactive hrmis account client.
//
// It wires the session state, the guarded views and the profile
// synchronizer into a small REPL. Typical flow: log in (first-time users
// get an empty profile and a "?" placeholder), look at the dashboard, edit
// the profile, log out.
//
// Commands:
//   - register, login, logout
//   - forgot, reset <token>, verify <token>
//   - dashboard, profile (guarded views)
//   - name <full name>, birthday <YYYY-MM-DD>, avatar <path> (profile edits)
//
// Guarded views that are opened without a session remember where the user
// was heading; the next successful login continues there.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
