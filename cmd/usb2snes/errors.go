package main

import (
	"errors"
	"fmt"

	"github.com/usb2snes/usb2snes-cli/internal/usb2snes"
)

// Exit codes for CLI commands.
const (
	exitSuccess        = 0
	exitError          = 1
	exitNoDevice       = 2
	exitDeviceNotFound = 3
	exitUnsupported    = 4
	exitConnection     = 5
	exitUsage          = 6
)

// ExitError represents an error that should cause the process to exit with a specific code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func errNoDevice() *ExitError {
	return &ExitError{
		Code:    exitNoDevice,
		Message: "No device found.",
	}
}

func errDeviceNotFound(name string) *ExitError {
	return &ExitError{
		Code:    exitDeviceNotFound,
		Message: fmt.Sprintf("Can't find the specified device '%s'.", name),
	}
}

func errUsage(format string, args ...any) *ExitError {
	return &ExitError{
		Code:    exitUsage,
		Message: fmt.Sprintf(format, args...),
	}
}

// mapError converts client errors to user-facing exit errors.
func mapError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var unsupported *usb2snes.UnsupportedError
	if errors.As(err, &unsupported) {
		msg := "The device does not support this command."
		switch unsupported.Flag {
		case usb2snes.NoFileCommands:
			msg = "The device does not support file commands."
		case usb2snes.NoControlCommands:
			msg = "The device does not support control commands (menu/reset/boot)."
		case usb2snes.NoROMRead:
			msg = "The device does not allow reading ROM."
		}
		return &ExitError{Code: exitUnsupported, Message: msg}
	}

	if usb2snes.IsConnection(err) || errors.Is(err, usb2snes.ErrPoisoned) || usb2snes.IsShortRead(err) {
		return &ExitError{
			Code:    exitConnection,
			Message: fmt.Sprintf("Connection to the usb2snes server failed: %v", err),
		}
	}

	if usb2snes.IsCallerError(err) {
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}
	return err
}
