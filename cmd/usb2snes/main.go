package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/usb2snes/usb2snes-cli/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
)

// Globals are the flags shared by every command.
type Globals struct {
	Server string `help:"usb2snes server URL (default from config, ws://localhost:23074)" placeholder:"URL"`
	Device string `help:"Use the specified device (default: first listed)"`
	Devel  bool   `help:"Show all the transactions with the usb2snes server"`

	ctx context.Context
}

// Context returns the command's context, cancelled on interrupt.
func (g *Globals) Context() context.Context {
	if g.ctx == nil {
		return context.Background()
	}
	return g.ctx
}

type CLI struct {
	Globals

	Devices         DevicesCmd         `cmd:"" help:"List the devices available"`
	Info            InfoCmd            `cmd:"" help:"Show the attached device info"`
	GetAddress      GetAddressCmd      `cmd:"" name:"get-address" help:"Read device memory, syntax address_in_hex:size"`
	Reset           ResetCmd           `cmd:"" help:"Reset the game running on the device"`
	Menu            MenuCmd            `cmd:"" help:"Bring the sd2snes/fxpak pro back to the menu"`
	Boot            BootCmd            `cmd:"" help:"Boot the specified file"`
	Ls              LsCmd              `cmd:"" help:"List a directory on the device, path separator is /"`
	Upload          UploadCmd          `cmd:"" help:"Upload a file to the device"`
	Download        DownloadCmd        `cmd:"" help:"Download a file from the device"`
	Rm              RmCmd              `cmd:"" help:"Remove a file on the device"`
	UploadLatestSfc UploadLatestSfcCmd `cmd:"" name:"upload-latest-sfc" help:"Upload the most recent .sfc file of a local directory to the device"`
	Config          ConfigCmd          `cmd:"" help:"Show or edit the configuration"`
	Logs            LogsCmd            `cmd:"" help:"Show the session log"`
	Version         VersionCmd         `cmd:"" help:"Show version"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

func main() {
	cli := CLI{}
	parser := kong.Must(&cli,
		kong.Name("usb2snes"),
		kong.Description("usb2snes --device emu1 boot \"/games/Super Metroid.smc\""),
		kong.UsageOnError(),
	)

	kongplete.Complete(parser,
		kongplete.WithPredictor("sfc", complete.PredictFiles("*.sfc")),
		kongplete.WithPredictor("dir", complete.PredictDirs("*")),
	)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cli.Globals.ctx = ctx

	if err := kctx.Run(&cli.Globals); err != nil {
		stop()
		os.Exit(report(err))
	}
}

// report prints err and returns the process exit code.
func report(err error) int {
	err = mapError(err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			ui.PrintError(exitErr.Message)
		}
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitError
}
