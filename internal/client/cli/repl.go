package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Keep(ctx context.Context) error
	Adopt(ctx context.Context) error
	Pending(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Export(ctx context.Context, arg string) error
}

const (
	helpAnonymous = "Available commands: signup, login, status, exit"
	helpSignedIn  = "Available commands: (l)ist, show <id>, add, edit <id>, delete <id>, keep, adopt, pending, sync, status, export [save], logout, exit"
)

// runREPL reads one command per line and dispatches it to a. The loop exits
// on EOF, on "exit"/"quit", or when ctx is done. Command errors are printed by
// the handlers themselves and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("cb (%s)> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
			continue
		case "signup":
			_ = a.Signup(ctx)
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "status":
			_ = a.Status(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			switch cmd {
			case "l", "list", "show", "add", "edit", "delete", "keep", "adopt", "pending", "sync", "export", "logout":
				printlnFn("Please login first")
			default:
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "l", "list":
			_ = a.List(ctx)
		case "show":
			_ = a.Show(ctx, arg)
		case "add":
			_ = a.Add(ctx)
		case "edit":
			_ = a.Edit(ctx, arg)
		case "delete":
			_ = a.Delete(ctx, arg)
		case "keep":
			_ = a.Keep(ctx)
		case "adopt":
			_ = a.Adopt(ctx)
		case "pending":
			_ = a.Pending(ctx)
		case "sync":
			_ = a.Sync(ctx)
		case "export":
			_ = a.Export(ctx, arg)
		case "logout":
			_ = a.Logout(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
