// Package ui provides formatted output utilities for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Color functions for consistent styling.
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Output is the destination for UI output.
// Defaults to os.Stdout but can be overridden for testing.
var Output io.Writer = os.Stdout

var printer = message.NewPrinter(language.English)

// FormatBytes formats a byte count with thousands separators.
func FormatBytes(n int) string {
	if n == 1 {
		return "1 byte"
	}
	return printer.Sprintf("%d bytes", n)
}

// PrintSuccess prints a success message with green checkmark.
func PrintSuccess(message string) {
	fmt.Fprintf(Output, "%s %s\n", Green("✓"), message)
}

// PrintError prints an error message with red X.
func PrintError(message string) {
	fmt.Fprintf(Output, "%s %s\n", Red("✗"), message)
}

// PrintWarning prints a warning message with yellow exclamation.
func PrintWarning(message string) {
	fmt.Fprintf(Output, "%s %s\n", Yellow("⚠"), message)
}

// PrintInfo prints an info message with blue dot.
func PrintInfo(message string) {
	fmt.Fprintf(Output, "%s %s\n", Blue("•"), message)
}

// PrintDeviceList prints the devices known to the server.
func PrintDeviceList(devices []string) {
	if len(devices) == 0 {
		fmt.Fprintln(Output, "No device found.")
		return
	}

	fmt.Fprintln(Output, Bold("Devices:"))
	for _, d := range devices {
		fmt.Fprintf(Output, "  %s\n", Cyan(d))
	}
}

// DeviceDetails contains device information for display.
type DeviceDetails struct {
	Name    string
	Type    string
	Version string
	Game    string
	Flags   []string
}

// PrintDeviceDetails prints one device's info.
func PrintDeviceDetails(d DeviceDetails) {
	fmt.Fprintf(Output, "%s %s\n", Bold("Device:"), Cyan(d.Name))
	fmt.Fprintf(Output, "  %s %s\n", Bold("Type:"), d.Type)
	fmt.Fprintf(Output, "  %s %s\n", Bold("Version:"), d.Version)
	fmt.Fprintf(Output, "  %s %s\n", Bold("Game:"), Blue(d.Game))
	if len(d.Flags) > 0 {
		fmt.Fprintf(Output, "  %s %s\n", Bold("Flags:"), Yellow(strings.Join(d.Flags, ", ")))
	} else {
		fmt.Fprintf(Output, "  %s %s\n", Bold("Flags:"), Dim("none"))
	}
}

// PrintHexDump prints data 16 bytes per line, each line prefixed with its address.
func PrintHexDump(data []byte, base uint32) {
	for off := 0; off < len(data); off += 16 {
		end := min(off+16, len(data))
		var sb strings.Builder
		for _, b := range data[off:end] {
			fmt.Fprintf(&sb, "%02X ", b)
		}
		fmt.Fprintf(Output, "%s : %s\n", Dim(fmt.Sprintf("%06X", base+uint32(off))), strings.TrimRight(sb.String(), " "))
	}
}

// ListEntry is a remote directory entry for display.
type ListEntry struct {
	Name string
	Dir  bool
}

// PrintListing prints a remote directory listing; directories get a trailing slash.
func PrintListing(path string, entries []ListEntry) {
	fmt.Fprintf(Output, "%s %s\n", Bold("Listing"), Blue(path))
	if len(entries) == 0 {
		fmt.Fprintf(Output, "  %s\n", Dim("(empty)"))
		return
	}
	for _, e := range entries {
		if e.Dir {
			fmt.Fprintf(Output, "  %s\n", Cyan(e.Name+"/"))
		} else {
			fmt.Fprintf(Output, "  %s\n", e.Name)
		}
	}
}
