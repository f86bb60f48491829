package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs. App satisfies it; tests
// use a lightweight stub.
type execIface interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	CreateMission(ctx context.Context) error
	CreateNonConformity(ctx context.Context) error
	UpdateActionStatus(ctx context.Context) error
	CreateMaintenanceLog(ctx context.Context) error
	UploadDocument(ctx context.Context) error
	ListItems(ctx context.Context, what string) error
	ShowOutbox(ctx context.Context) error
	Pending(ctx context.Context) error
	Sync(ctx context.Context) error
	Retry(ctx context.Context) error
	Clear(ctx context.Context) error
	Status(ctx context.Context) error
}

const helpText = `Available commands:
  login | logout            sign in to the server / forget the session
  mission                   create a mission
  nc                        create a non-conformity
  action                    update a corrective action status
  log                       create a maintenance log
  doc                       attach a document
  list <kind>               list local missions|ncs|actions|logs|docs
  outbox                    show the outbox
  pending                   number of items waiting to sync
  sync                      send pending items now
  retry                     move failed items back to pending
  clear                     remove sent items from the outbox
  status                    session, connectivity and queue summary
  exit | quit               leave the program`

// runREPL reads commands line by line from in and dispatches them to a until
// EOF or "exit". Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("fieldsync %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "mission":
			cmdErr = a.CreateMission(ctx)
		case "nc":
			cmdErr = a.CreateNonConformity(ctx)
		case "action":
			cmdErr = a.UpdateActionStatus(ctx)
		case "log":
			cmdErr = a.CreateMaintenanceLog(ctx)
		case "doc":
			cmdErr = a.UploadDocument(ctx)
		case "list", "l":
			what := ""
			if len(args) > 0 {
				what = args[0]
			}
			cmdErr = a.ListItems(ctx, what)
		case "outbox":
			cmdErr = a.ShowOutbox(ctx)
		case "pending":
			cmdErr = a.Pending(ctx)
		case "sync":
			cmdErr = a.Sync(ctx)
		case "retry":
			cmdErr = a.Retry(ctx)
		case "clear":
			cmdErr = a.Clear(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
	}
}

// Run starts the connectivity watcher and blocks in the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to fieldsync (type 'help' for commands)")
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
