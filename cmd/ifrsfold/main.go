// Command ifrsfold folds a JSON transaction-spec fixture into a balanced
// ledger and prints a summary. It is a thin demonstration surface over
// package ledger; production spec sources (CSV+RON) and presentation-layer
// reports live elsewhere.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jnewland/ifrsfold/cli"
	"github.com/jnewland/ifrsfold/ledger"
	"github.com/jnewland/ifrsfold/telemetry"
)

type foldCmd struct {
	File cli.FileOrStdin `arg:"" help:"Path to a JSON fixture, or '-' for stdin."`
	Yes  bool            `short:"y" help:"Skip the confirmation prompt."`
}

func (c *foldCmd) Run(globals *cli.Globals) error {
	if err := c.File.EnsureContents(); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		return cli.NewCommandError(1)
	}

	f, err := parseFixture(c.File.Contents)
	if err != nil {
		cli.PrintError(os.Stderr, err.Error())
		return cli.NewCommandError(1)
	}

	specs, assertions, _, err := f.build()
	if err != nil {
		cli.PrintError(os.Stderr, err.Error())
		return cli.NewCommandError(1)
	}

	if !c.Yes {
		ok, err := cli.PromptYesNo(fmt.Sprintf("Fold %d specs from %s?", len(specs), c.File.GetAbsoluteFilename()))
		if err != nil {
			return cli.NewCommandError(1)
		}
		if !ok {
			cli.PrintInfof(os.Stdout, "aborted")
			return nil
		}
	}

	ctx := context.Background()
	cfg := ledger.NewConfig()
	ctx = cfg.WithContext(ctx)

	var collector telemetry.Collector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		ctx = telemetry.WithCollector(ctx, collector)
	}

	records, err := ledger.Process(ctx, specs, assertions)
	if err != nil {
		cli.PrintError(os.Stdout, err.Error())
		if globals.Telemetry && collector != nil {
			fmt.Fprintln(os.Stderr)
			collector.Report(os.Stderr)
		}
		return cli.NewCommandError(1)
	}

	cli.PrintSuccess(os.Stdout, fmt.Sprintf("folded %d specs into %d transactions, %d assertions",
		len(specs), len(records.Transactions), len(records.Assertions)))
	if len(records.UnreimbursedEntries) > 0 {
		cli.PrintInfof(os.Stdout, "%d unreimbursed entries outstanding", len(records.UnreimbursedEntries))
	}

	if globals.Telemetry && collector != nil {
		fmt.Fprintln(os.Stdout)
		collector.Report(os.Stdout)
	}

	return nil
}

type versionCmd struct{}

func (c *versionCmd) Run(*cli.Globals) error {
	version := cli.Version
	if version == "" {
		version = "dev"
	}
	fmt.Println(version)
	return nil
}

var cliApp struct {
	cli.Globals

	Fold    foldCmd    `cmd:"" default:"withargs" help:"Fold a JSON transaction-spec fixture into a ledger."`
	Version versionCmd `cmd:"" help:"Print the ifrsfold version."`
}

func main() {
	parser := kong.Must(&cliApp,
		kong.Name("ifrsfold"),
		kong.Description("Fold IFRS-oriented transaction specs into a balanced double-entry ledger."),
		kong.UsageOnError(),
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(&cliApp.Globals); err != nil {
		var cmdErr *cli.CommandError
		if errors.As(err, &cmdErr) {
			os.Exit(cmdErr.ExitCode())
		}
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
