// Package cli provides the interactive rentable client.
//
// It wires configuration, the local session database, the backend stores,
// the auth service, app state and the coordinator, then runs a REPL that
// drives onboarding (check, signup, verify, resend, signin, magic link and
// callback links) and the signed-in commands (whoami, avatar, chat, logout).
// A background watcher pings the backend and reports online/offline changes.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
