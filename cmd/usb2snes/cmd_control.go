package main

import (
	"fmt"

	"github.com/usb2snes/usb2snes-cli/internal/ui"
)

type ResetCmd struct{}

func (c *ResetCmd) Run(g *Globals) error {
	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.Reset(g.Context()); err != nil {
		return err
	}
	ui.PrintSuccess("Reset sent")
	return nil
}

type MenuCmd struct{}

func (c *MenuCmd) Run(g *Globals) error {
	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.Menu(g.Context()); err != nil {
		return err
	}
	ui.PrintSuccess("Back to menu")
	return nil
}

type BootCmd struct {
	Path string `arg:"" help:"Path on the device of the file to boot"`
}

func (c *BootCmd) Run(g *Globals) error {
	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.Boot(g.Context(), c.Path); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Booting %s", c.Path))
	return nil
}
