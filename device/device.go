// Package device drives an Android device over adb.
//
// The collector talks to the device through the Controller interface.
// ADB is the real implementation; it shells out to the adb binary for
// hierarchy dumps, taps and key events.
package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/mapsieve/snapshot"
)

// ErrNoDevice is returned when adb cannot reach a device.
var ErrNoDevice = errors.New("device: no device available")

// ErrNoHierarchy is returned when a dump completes without producing a
// hierarchy document. uiautomator does this when the screen is busy.
var ErrNoHierarchy = errors.New("device: dump produced no hierarchy")

// Controller is the device surface the collector needs.
type Controller interface {
	// DumpHierarchy captures the current UI tree as uiautomator XML.
	DumpHierarchy(ctx context.Context) ([]byte, error)

	// ScreenSize reports the active display dimensions in pixels.
	ScreenSize(ctx context.Context) (snapshot.ScreenContext, error)

	// Tap injects a tap at pixel coordinates.
	Tap(ctx context.Context, x, y int) error

	// Back injects the hardware back key.
	Back(ctx context.Context) error
}

// Config selects the adb binary and the target device.
type Config struct {
	// Path is the adb binary, resolved via PATH when bare.
	Path string `json:"path" yaml:"path"`

	// Serial picks the device when several are connected.
	Serial string `json:"serial" yaml:"serial"`

	// Timeout bounds each adb invocation.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Path == "" {
		c.Path = "adb"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ADB is a Controller backed by the adb command line tool.
type ADB struct {
	cfg Config
}

// NewADB returns a Controller for the configured device.
func NewADB(cfg Config) *ADB {
	cfg.defaults()
	return &ADB{cfg: cfg}
}

// DumpHierarchy runs uiautomator dump with output on stdout and trims
// the status chatter around the XML document.
func (a *ADB) DumpHierarchy(ctx context.Context) ([]byte, error) {
	out, err := a.run(ctx, "exec-out", "uiautomator", "dump", "/dev/tty")
	if err != nil {
		return nil, err
	}
	return extractHierarchy(out)
}

// ScreenSize parses adb shell wm size.
func (a *ADB) ScreenSize(ctx context.Context) (snapshot.ScreenContext, error) {
	out, err := a.run(ctx, "shell", "wm", "size")
	if err != nil {
		return snapshot.ScreenContext{}, err
	}
	return parseWMSize(string(out))
}

// Tap injects a tap at pixel coordinates.
func (a *ADB) Tap(ctx context.Context, x, y int) error {
	a.cfg.Logger.Debug("tap", "x", x, "y", y)
	_, err := a.run(ctx, "shell", "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

// Back injects the hardware back key.
func (a *ADB) Back(ctx context.Context) error {
	a.cfg.Logger.Debug("back")
	_, err := a.run(ctx, "shell", "input", "keyevent", "4")
	return err
}

func (a *ADB) run(ctx context.Context, args ...string) ([]byte, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	full := args
	if a.cfg.Serial != "" {
		full = append([]string{"-s", a.cfg.Serial}, args...)
	}
	cmd := exec.CommandContext(ctx, a.cfg.Path, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if isNoDevice(msg) {
			return nil, fmt.Errorf("%w: %s", ErrNoDevice, msg)
		}
		if msg == "" {
			return nil, fmt.Errorf("adb %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("adb %s: %w: %s", args[0], err, msg)
	}
	return stdout.Bytes(), nil
}

func isNoDevice(stderr string) bool {
	for _, marker := range []string{
		"no devices/emulators found",
		"device offline",
		"device unauthorized",
		"not found",
	} {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

// extractHierarchy slices the XML document out of uiautomator output.
// The dump is followed by a status line on the same stream.
func extractHierarchy(out []byte) ([]byte, error) {
	start := bytes.Index(out, []byte("<?xml"))
	if start < 0 {
		start = bytes.Index(out, []byte("<hierarchy"))
	}
	end := bytes.LastIndex(out, []byte("</hierarchy>"))
	if start < 0 || end < start {
		return nil, ErrNoHierarchy
	}
	return out[start : end+len("</hierarchy>")], nil
}

// parseWMSize reads adb shell wm size output. An override size, set by
// apps or the user, takes precedence over the physical panel size.
func parseWMSize(out string) (snapshot.ScreenContext, error) {
	var physical, override snapshot.ScreenContext
	var havePhysical, haveOverride bool

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Physical size:"); ok {
			if sc, err := parseSize(rest); err == nil {
				physical, havePhysical = sc, true
			}
		}
		if rest, ok := strings.CutPrefix(line, "Override size:"); ok {
			if sc, err := parseSize(rest); err == nil {
				override, haveOverride = sc, true
			}
		}
	}

	switch {
	case haveOverride:
		return override, nil
	case havePhysical:
		return physical, nil
	default:
		return snapshot.ScreenContext{}, fmt.Errorf("device: cannot parse wm size output %q", strings.TrimSpace(out))
	}
}

func parseSize(s string) (snapshot.ScreenContext, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return snapshot.ScreenContext{}, fmt.Errorf("device: bad size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return snapshot.ScreenContext{}, fmt.Errorf("device: bad width %q", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return snapshot.ScreenContext{}, fmt.Errorf("device: bad height %q", h)
	}
	return snapshot.ScreenContext{Width: width, Height: height}, nil
}
