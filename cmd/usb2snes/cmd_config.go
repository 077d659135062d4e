package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/usb2snes/usb2snes-cli/internal/config"
	"github.com/usb2snes/usb2snes-cli/internal/ui"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective configuration"`
	Path ConfigPathCmd `cmd:"" help:"Print the config file path"`
	Edit ConfigEditCmd `cmd:"" help:"Open the config file in $EDITOR"`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(g *Globals) error {
	paths, err := config.GetPaths()
	if err != nil {
		return err
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return err
	}
	if g.Server != "" {
		cfg.ServerURL = g.Server
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(ui.Output, string(data))
	return nil
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run() error {
	paths, err := config.GetPaths()
	if err != nil {
		return err
	}
	fmt.Fprintln(ui.Output, paths.Config)
	return nil
}

type ConfigEditCmd struct{}

func (c *ConfigEditCmd) Run() error {
	paths, err := config.GetPaths()
	if err != nil {
		return err
	}
	ed, err := config.FindEditor()
	if err != nil {
		return err
	}
	if _, err := config.Edit(paths, ed); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %s", paths.Config))
	return nil
}

type LogsCmd struct {
	Follow bool `short:"f" help:"Keep printing records as they are written"`
	Lines  int  `short:"n" default:"40" help:"Number of trailing lines to show"`
}

func (c *LogsCmd) Run() error {
	paths, err := config.GetPaths()
	if err != nil {
		return err
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return err
	}
	if c.Lines <= 0 {
		return errUsage("--lines must be positive")
	}

	if c.Follow {
		tail, err := exec.LookPath("tail")
		if err != nil {
			return errUsage("--follow needs tail in PATH")
		}
		return syscall.Exec(tail, []string{"tail", "-n", strconv.Itoa(c.Lines), "-f", cfg.Log.Path}, os.Environ())
	}
	return printTail(cfg.Log.Path, c.Lines)
}

// printTail prints the last n lines of the session log.
func printTail(path string, n int) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return errUsage("No session log yet at %s", path)
	}
	if err != nil {
		return err
	}
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for _, l := range lines[max(0, len(lines)-n):] {
		fmt.Fprint(ui.Output, l)
	}
	return nil
}
