package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests substitute a stub.
type execIface interface {
	hasOpenEvent() bool
	Connect(ctx context.Context) error
	Join(ctx context.Context, token string) error
	Disconnect(ctx context.Context) error
	Invite(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	SelectType(ctx context.Context, args []string) error
	Push(ctx context.Context) error
	Pull(ctx context.Context) error
	Note(ctx context.Context, args []string) error
	Attendance(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Events(ctx context.Context) error
	Remote(ctx context.Context) error
	Status(ctx context.Context) error
	Drop(ctx context.Context, args []string) error
	Reset(ctx context.Context) error
	Provision(ctx context.Context, args []string) error
}

// runREPL reads lines from scanner, dispatches the first token as a command
// and prints handler errors. It exits on EOF, "exit" or "quit". statusFn
// supplies the prompt suffix.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("as> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.hasOpenEvent() {
				printlnFn("Available commands: show, status, note, attendance, type, push, pull, events, remote, invite, drop, disconnect, exit")
			} else {
				printlnFn("Available commands: connect, join, open, status, events, drop, reset, provision, disconnect, exit")
			}

		case "connect":
			err = a.Connect(ctx)

		case "join":
			if len(args) != 1 {
				err = fmt.Errorf("usage: join <token>")
			} else {
				err = a.Join(ctx, args[0])
			}

		case "disconnect":
			err = a.Disconnect(ctx)

		case "invite":
			err = a.Invite(ctx)

		case "open":
			err = a.Open(ctx, args)

		case "type":
			err = a.SelectType(ctx, args)

		case "push":
			err = a.Push(ctx)

		case "pull":
			err = a.Pull(ctx)

		case "note":
			err = a.Note(ctx, args)

		case "attendance":
			err = a.Attendance(ctx, args)

		case "show":
			err = a.Show(ctx)

		case "events":
			err = a.Events(ctx)

		case "remote", "list":
			err = a.Remote(ctx)

		case "status":
			err = a.Status(ctx)

		case "drop":
			err = a.Drop(ctx, args)

		case "reset":
			err = a.Reset(ctx)

		case "provision":
			err = a.Provision(ctx, args)

		case "exit", "quit":
			return

		default:
			printlnFn("Unknown command: " + cmd)
		}

		if err != nil {
			printlnFn("Error: " + err.Error())
		}
	}
}
