package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/postbuilder/cmd/postbuilder/commands"
	"git.home.luguber.info/inful/postbuilder/internal/errors"
	"git.home.luguber.info/inful/postbuilder/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes the selected command and returns the process
// exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli commands.CLI
	global := &commands.Global{Context: ctx, Stdout: stdout, LogOutput: stderr}

	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("postbuilder"),
		kong.Description("Build a static blog from a directory of Markdown posts."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help or --version already printed their output.
		return exitCode
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "postbuilder: %v\n", err)
		return 2
	}

	if err := kctx.Run(global, &cli); err != nil {
		code := 1
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).
			WithOutput(stderr).
			WithExit(func(c int) { code = c }).
			HandleError(err)
		return code
	}
	return 0
}
