package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/usb2snes/usb2snes-cli/internal/localfs"
	"github.com/usb2snes/usb2snes-cli/internal/ui"
	"github.com/usb2snes/usb2snes-cli/internal/usb2snes"
)

const sfcExt = ".sfc"

type UploadLatestSfcCmd struct {
	LocalSourceDir string `arg:"" help:"Directory on this computer to get the latest .sfc out of, e.g. your downloads folder" predictor:"dir"`
	TargetDir      string `arg:"" help:"Directory on the device to put the .sfc into"`
	WipeTargetDir  bool   `help:"Delete .sfc files in target-dir before copying a new one there"`
}

func (c *UploadLatestSfcCmd) Run(g *Globals) error {
	newest, err := localfs.Newest(c.LocalSourceDir, sfcExt)
	if errors.Is(err, localfs.ErrNoMatch) {
		return errUsage("No %s found in %s", sfcExt, c.LocalSourceDir)
	}
	if err != nil {
		return err
	}
	ui.PrintInfo(fmt.Sprintf("Newest %s file found: %s", sfcExt, newest.Name))

	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.WipeTargetDir {
		if err := wipeSfc(g, a, c.TargetDir); err != nil {
			return err
		}
	}

	local := filepath.Join(c.LocalSourceDir, newest.Name)
	remote := localfs.RemoteJoin(c.TargetDir, newest.Name)
	return uploadFile(g, a, local, remote)
}

// wipeSfc removes the .sfc files directly inside dir on the device.
func wipeSfc(g *Globals, a *attached, dir string) error {
	entries, err := a.client.Ls(g.Context(), dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Type != usb2snes.File || !localfs.HasExt(e.Name, sfcExt) {
			continue
		}
		p := localfs.RemoteJoin(dir, e.Name)
		ui.PrintInfo(fmt.Sprintf("Deleting device file %s", p))
		if err := a.client.RemovePath(g.Context(), p); err != nil {
			return err
		}
	}
	return nil
}
