package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context, args []string) error
	VerifyEmail(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
	Profile(ctx context.Context) error
	SetName(ctx context.Context, args []string) error
	SetBirthday(ctx context.Context, args []string) error
	SetAvatar(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Not logged in:
//	  - help                - show available commands
//	  - register            - create an account
//	  - login               - authenticate
//	  - forgot              - request a password reset link
//	  - reset <token>       - set a new password with a reset token
//	  - verify <token>      - confirm an email address
//	  - exit | quit         - leave the program
//
//	Logged in:
//	  - dashboard | profile - guarded views
//	  - name <full name>    - change the full name
//	  - birthday <date>     - change the birthday (YYYY-MM-DD)
//	  - avatar <path>       - upload a new avatar
//	  - logout              - log out
//
// Errors returned by command handlers are ignored here; handlers print
// their own user-facing messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("hr> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: dashboard, profile, name, birthday, avatar, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, reset, verify, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx, args)

		case "verify":
			_ = a.VerifyEmail(ctx, args)

		case "d", "dashboard":
			_ = a.Dashboard(ctx)

		case "p", "profile":
			_ = a.Profile(ctx)

		case "name":
			_ = a.SetName(ctx, args)

		case "birthday":
			_ = a.SetBirthday(ctx, args)

		case "avatar":
			_ = a.SetAvatar(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
