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
	isConnected() bool
	WalletNew(ctx context.Context) error
	WalletList(ctx context.Context) error
	WalletUse(ctx context.Context, address string) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Submit(ctx context.Context) error
	Me(ctx context.Context) error
	Search(ctx context.Context, address string) error
	Balance(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a until input
// ends, ctx is done, or the user types "exit" or "quit". Commands read their
// own prompts from the same reader.
//
// Errors returned by command handlers are not printed here; the controller
// reports them through status banners.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("cp %s > ", statusFn()))
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
			if a.isConnected() {
				printlnFn("Available commands: submit, me, search <address>, balance, status, disconnect, wallet list, exit")
			} else {
				printlnFn("Available commands: wallet new, wallet list, wallet use <address>, connect, status, exit")
			}

		case "wallet":
			if len(args) == 0 {
				printlnFn("Usage: wallet new | wallet list | wallet use <address>")
				continue
			}
			switch args[0] {
			case "new":
				_ = a.WalletNew(ctx)
			case "list", "ls":
				_ = a.WalletList(ctx)
			case "use":
				if len(args) < 2 {
					printlnFn("Usage: wallet use <address>")
					continue
				}
				_ = a.WalletUse(ctx, args[1])
			default:
				printlnFn("Unknown wallet command:", args[0])
			}

		case "connect":
			_ = a.Connect(ctx)

		case "disconnect":
			_ = a.Disconnect(ctx)

		case "submit":
			_ = a.Submit(ctx)

		case "me":
			_ = a.Me(ctx)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <address>")
				continue
			}
			_ = a.Search(ctx, args[0])

		case "balance":
			_ = a.Balance(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
