package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

var errUnknownCommand = errors.New("unknown command")

// execIface is the command surface the REPL drives. App satisfies it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	status() string
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	commandNames() []string
	Exec(ctx context.Context, name string, args []string) error
}

// runREPL reads commands until EOF or exit/quit.
//
//	Not logged in:  help, login, exit
//	Logged in:      help, logout, exit and the commands of the session role
//
// Handlers report their own errors; the loop only keeps going.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("hk %s> ", a.status()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: " + strings.Join(a.commandNames(), ", ") + ", logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			if a.isLoggedIn() {
				printlnFn("Already logged in. Use logout first.")
				break
			}
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if !a.isLoggedIn() {
				printlnFn("Please log in first.")
				break
			}
			if err := a.Exec(ctx, cmd, args); errors.Is(err, errUnknownCommand) {
				printlnFn("Unknown command:", cmd)
			}
		}

		if err != nil {
			return
		}
	}
}

// Root greets the user, runs the login workflow once and enters the REPL.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to helpkeeper (type 'help' for commands)")
	_ = a.Login(ctx)
	runREPL(ctx, a, a.reader)
}
