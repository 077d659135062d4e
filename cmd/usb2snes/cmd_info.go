package main

import "github.com/usb2snes/usb2snes-cli/internal/ui"

type InfoCmd struct{}

func (c *InfoCmd) Run(g *Globals) error {
	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	ui.PrintDeviceDetails(deviceDetails(a.device, a.info))
	return nil
}
