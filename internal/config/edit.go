package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var fallbackEditors = []string{"nvim", "vim", "vi", "nano"}

// ErrNoEditor is returned when neither $VISUAL, $EDITOR nor a fallback editor is available.
var ErrNoEditor = errors.New("no editor found: set $EDITOR")

// FindEditor returns the editor command line to use.
func FindEditor() (string, error) {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if ed := strings.TrimSpace(os.Getenv(env)); ed != "" {
			return ed, nil
		}
	}
	for _, ed := range fallbackEditors {
		if p, err := exec.LookPath(ed); err == nil {
			return p, nil
		}
	}
	return "", ErrNoEditor
}

// Edit opens the config file in editor, writing the defaults first when the
// file does not exist yet. The edited file is loaded back and validated.
// The editor string may carry arguments, e.g. "code --wait".
func Edit(paths *Paths, editor string) (*Config, error) {
	if _, err := os.Stat(paths.Config); errors.Is(err, os.ErrNotExist) {
		if err := DefaultConfig(paths).Save(paths); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	args := strings.Fields(editor)
	if len(args) == 0 {
		return nil, ErrNoEditor
	}
	cmd := exec.Command(args[0], append(args[1:], paths.Config)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run editor %s: %w", editor, err)
	}

	return Load(paths)
}
