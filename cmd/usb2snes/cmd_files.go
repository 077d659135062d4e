package main

import (
	"fmt"
	"os"

	"github.com/usb2snes/usb2snes-cli/internal/localfs"
	"github.com/usb2snes/usb2snes-cli/internal/ui"
)

type LsCmd struct {
	Path string `arg:"" help:"Directory on the device" default:"/"`
}

func (c *LsCmd) Run(g *Globals) error {
	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.client.Ls(g.Context(), c.Path)
	if err != nil {
		return err
	}
	ui.PrintListing(c.Path, listEntries(entries))
	return nil
}

type UploadCmd struct {
	Local string `arg:"" help:"Local file to upload" predictor:"sfc"`
	Path  string `required:"" help:"Destination path on the device, e.g. \"/games/Super Metroid.smc\""`
}

func (c *UploadCmd) Run(g *Globals) error {
	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	return uploadFile(g, a, c.Local, c.Path)
}

// uploadFile reads a local file and sends it to remote.
func uploadFile(g *Globals, a *attached, local, remote string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	localPath, err := localfs.ResolvePath(local, cwd)
	if err != nil {
		return errUsage("%v", err)
	}
	data, err := localfs.ReadFile(localPath)
	if err != nil {
		return err
	}

	ui.PrintInfo(fmt.Sprintf("Sending %s to %s (%s)", localPath, remote, ui.FormatBytes(len(data))))
	if err := a.client.SendFile(g.Context(), remote, data); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Uploaded %s", remote))
	return nil
}

type DownloadCmd struct {
	Remote string `arg:"" help:"Path on the device of the file to download"`
	Output string `short:"o" help:"Local file to write (default: the remote file name in the current directory)"`
}

func (c *DownloadCmd) Run(g *Globals) error {
	output := c.Output
	if output == "" {
		output = localfs.RemoteBase(c.Remote)
	}
	if output == "" || output == "/" || output == "." {
		return errUsage("Can't derive a local file name from %q, use --output", c.Remote)
	}

	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	ui.PrintInfo(fmt.Sprintf("Downloading %s to %s", c.Remote, output))
	data, err := a.client.GetFile(g.Context(), c.Remote)
	if err != nil {
		return err
	}
	if err := localfs.WriteFile(output, data); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %s (%s)", output, ui.FormatBytes(len(data))))
	return nil
}

type RmCmd struct {
	Path string `arg:"" help:"Path on the device of the file to remove"`
}

func (c *RmCmd) Run(g *Globals) error {
	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	ui.PrintInfo(fmt.Sprintf("Removing %s", c.Path))
	if err := a.client.RemovePath(g.Context(), c.Path); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Removed %s", c.Path))
	return nil
}
