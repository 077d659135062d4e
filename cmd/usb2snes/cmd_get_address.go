package main

import (
	"strconv"
	"strings"

	"github.com/usb2snes/usb2snes-cli/internal/ui"
)

type GetAddressCmd struct {
	Spec string `arg:"" help:"Address in hex and size in decimal, e.g. F50010:16"`
}

func (c *GetAddressCmd) Run(g *Globals) error {
	address, size, err := parseAddressSpec(c.Spec)
	if err != nil {
		return err
	}

	a, err := open(g)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.client.GetAddress(g.Context(), address, size)
	if err != nil {
		return err
	}
	ui.PrintHexDump(data, address)
	return nil
}

// parseAddressSpec parses "address_in_hex:size_in_decimal".
func parseAddressSpec(spec string) (address, size uint32, err error) {
	addrStr, sizeStr, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, 0, errUsage("Invalid address %q, expected address_in_hex:size", spec)
	}
	addrStr = strings.TrimPrefix(strings.TrimPrefix(addrStr, "0x"), "$")

	a, err := strconv.ParseUint(addrStr, 16, 32)
	if err != nil {
		return 0, 0, errUsage("Invalid hex address %q", addrStr)
	}
	s, err := strconv.ParseUint(sizeStr, 10, 32)
	if err != nil || s == 0 {
		return 0, 0, errUsage("Invalid size %q, expected a positive decimal number", sizeStr)
	}
	return uint32(a), uint32(s), nil
}
