package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/usb2snes/usb2snes-cli/internal/config"
	"github.com/usb2snes/usb2snes-cli/internal/logging"
	"github.com/usb2snes/usb2snes-cli/internal/ui"
	"github.com/usb2snes/usb2snes-cli/internal/usb2snes"
)

// env is the loaded configuration and logger of one CLI invocation.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	logW   io.Closer
}

func (e *env) Close() error {
	if e.logW != nil {
		return e.logW.Close()
	}
	return nil
}

func loadEnv(g *Globals) (*env, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("get paths: %w", err)
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}
	if g.Server != "" {
		cfg.ServerURL = g.Server
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	logger, logW := logging.Open(cfg.Log, g.Devel)
	return &env{
		cfg:    cfg,
		logger: logger,
		logW:   logW,
	}, nil
}

// connect opens a client and announces the configured name.
func (e *env) connect(ctx context.Context, devel bool) (*usb2snes.Client, error) {
	opts := []usb2snes.Option{
		usb2snes.WithChunkSize(e.cfg.ChunkSize),
		usb2snes.WithTimeout(e.cfg.Timeout),
		usb2snes.WithLogger(e.logger),
	}

	var (
		client *usb2snes.Client
		err    error
	)
	if devel {
		client, err = usb2snes.ConnectWithDevel(ctx, e.cfg.ServerURL, opts...)
	} else {
		client, err = usb2snes.Connect(ctx, e.cfg.ServerURL, opts...)
	}
	if err != nil {
		return nil, err
	}
	if err := client.SetName(ctx, e.cfg.ClientName); err != nil {
		client.Close()
		return nil, err
	}
	e.logger.Info("connected", "server", e.cfg.ServerURL)
	return client, nil
}

// attached is a client attached to the selected device.
type attached struct {
	*env
	client *usb2snes.Client
	device string
	info   *usb2snes.DeviceInfo
}

func (a *attached) Close() {
	a.client.Close()
	a.env.Close()
}

// open connects, checks the server version, selects the device and fetches its info.
func open(g *Globals) (*attached, error) {
	ctx := g.Context()
	e, err := loadEnv(g)
	if err != nil {
		return nil, err
	}

	client, err := e.connect(ctx, g.Devel)
	if err != nil {
		e.Close()
		return nil, err
	}
	a := &attached{env: e, client: client}

	if err := a.setup(ctx, g.Device); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *attached) setup(ctx context.Context, wanted string) error {
	serverVersion, err := a.client.AppVersion(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("server version", "version", serverVersion)
	if !serverAtLeast(serverVersion, a.cfg.MinServerVersion) {
		ui.PrintWarning(fmt.Sprintf("Server version %s is older than %s", serverVersion, a.cfg.MinServerVersion))
	}

	devices, err := a.client.ListDevice(ctx)
	if err != nil {
		return err
	}
	device, err := selectDevice(devices, wanted)
	if err != nil {
		return err
	}

	if err := a.client.Attach(ctx, device); err != nil {
		return err
	}
	info, err := a.client.Info(ctx)
	if err != nil {
		return err
	}
	a.device = device
	a.info = info
	return nil
}

// selectDevice returns wanted if enumerated, or the first device when wanted is empty.
func selectDevice(devices []string, wanted string) (string, error) {
	if len(devices) == 0 {
		return "", errNoDevice()
	}
	if wanted == "" {
		return devices[0], nil
	}
	if !slices.Contains(devices, wanted) {
		return "", errDeviceNotFound(wanted)
	}
	return wanted, nil
}

// serverAtLeast reports whether the reported server version satisfies minimum.
// Versions that are not semantic versions are accepted.
func serverAtLeast(reported, minimum string) bool {
	if minimum == "" {
		return true
	}
	v := ensureVPrefix(trimProduct(reported))
	m := ensureVPrefix(minimum)
	if !semver.IsValid(v) || !semver.IsValid(m) {
		return true
	}
	return semver.Compare(v, m) >= 0
}

// trimProduct drops a leading product name such as "QUsb2Snes-".
func trimProduct(v string) string {
	if i := strings.LastIndex(v, "-"); i >= 0 && i+1 < len(v) && v[i+1] >= '0' && v[i+1] <= '9' {
		return v[i+1:]
	}
	return v
}

func ensureVPrefix(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

func deviceDetails(name string, info *usb2snes.DeviceInfo) ui.DeviceDetails {
	d := ui.DeviceDetails{
		Name:    name,
		Type:    info.Type,
		Version: info.Version,
		Game:    info.Game,
	}
	for _, f := range info.Flags {
		d.Flags = append(d.Flags, string(f))
	}
	return d
}

func listEntries(entries []usb2snes.DirEntry) []ui.ListEntry {
	out := make([]ui.ListEntry, len(entries))
	for i, e := range entries {
		out[i] = ui.ListEntry{Name: e.Name, Dir: e.Type == usb2snes.Dir}
	}
	return out
}
