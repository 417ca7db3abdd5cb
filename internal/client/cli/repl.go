package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Check(ctx context.Context) error
	SignUp(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	SignIn(ctx context.Context) error
	MagicLink(ctx context.Context) error
	Open(ctx context.Context, rawURL string) error
	Avatar(ctx context.Context, path string) error
	WhoAmI(ctx context.Context) error
	Chat(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the rentable client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands prompt for their own input on the
// same reader. The loop exits on EOF or when the user types "exit" or "quit".
//
//	Onboarding:
//	  - check:           is an email already registered
//	  - signup:          create an account (multi-step form)
//	  - verify:          enter the 6-digit code from the signup email
//	  - resend:          request a new code
//	  - signin:          email and password sign-in
//	  - magiclink:       email a one-click sign-in link
//	  - open <url>:      follow an auth callback link
//
//	Signed in:
//	  - whoami:          show the current profile
//	  - avatar <file>:   upload a profile photo
//	  - chat:            ask the assistant
//	  - logout:          sign out
//
// Errors returned by command handlers are printed and otherwise ignored.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("rentable %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, avatar <file>, chat, logout, exit")
			} else {
				printlnFn("Available commands: check, signup, verify, resend, signin, magiclink, open <url>, exit")
			}

		case "check":
			err = a.Check(ctx)
		case "signup":
			err = a.SignUp(ctx)
		case "verify":
			err = a.Verify(ctx)
		case "resend":
			err = a.Resend(ctx)
		case "signin", "login":
			err = a.SignIn(ctx)
		case "magiclink":
			err = a.MagicLink(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <url>")
				continue
			}
			err = a.Open(ctx, args[0])

		case "avatar":
			if len(args) == 0 {
				printlnFn("Usage: avatar <file>")
				continue
			}
			err = a.Avatar(ctx, args[0])

		case "whoami":
			err = a.WhoAmI(ctx)
		case "chat":
			err = a.Chat(ctx)
		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
