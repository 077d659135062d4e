package main

import (
	"context"
	"fmt"
	"time"

	"github.com/usb2snes/usb2snes-cli/internal/ui"
)

type DevicesCmd struct {
	Loop     bool          `help:"List the devices again every interval"`
	Interval time.Duration `help:"Delay between listings with --loop" default:"1s"`
	Info     bool          `help:"Show each device's info"`
}

func (c *DevicesCmd) Run(g *Globals) error {
	if c.Loop && c.Interval <= 0 {
		return errUsage("--interval must be positive")
	}
	ctx := g.Context()
	e, err := loadEnv(g)
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := e.connect(ctx, g.Devel)
	if err != nil {
		return err
	}
	defer client.Close()

	devices, err := client.ListDevice(ctx)
	if err != nil {
		return err
	}

	if c.Loop {
		return c.loop(ctx, devices, func() ([]string, error) {
			return client.ListDevice(ctx)
		})
	}

	if len(devices) == 0 {
		return errNoDevice()
	}
	if !c.Info {
		ui.PrintDeviceList(devices)
		return nil
	}

	// Each device gets its own connection, as a client stays attached to one device.
	for _, dev := range devices {
		if err := c.printInfo(ctx, e, g.Devel, dev); err != nil {
			return err
		}
	}
	return nil
}

func (c *DevicesCmd) loop(ctx context.Context, devices []string, list func() ([]string, error)) error {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		ui.PrintDeviceList(devices)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		var err error
		if devices, err = list(); err != nil {
			return err
		}
	}
}

func (c *DevicesCmd) printInfo(ctx context.Context, e *env, devel bool, device string) error {
	client, err := e.connect(ctx, devel)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Attach(ctx, device); err != nil {
		return fmt.Errorf("attach %s: %w", device, err)
	}
	info, err := client.Info(ctx)
	if err != nil {
		return fmt.Errorf("info %s: %w", device, err)
	}
	ui.PrintDeviceDetails(deviceDetails(device, info))
	return nil
}
