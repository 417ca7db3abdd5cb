package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if snap := a.state.Snapshot(); snap.CurrentUser != nil {
		s = snap.CurrentUser.DisplayName() + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores the previous session, starts the connectivity watcher and
// runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Rentable (type 'help' for commands)")

	a.coordinator.Initialize(ctx)
	printlnFn(fmt.Sprintf("Flow: %s", a.coordinator.CurrentFlow()))

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
