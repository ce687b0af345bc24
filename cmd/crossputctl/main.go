// Command crossputctl is a small demo driver over the crossput library:
// discover attached devices, list what's known, or watch live input state
// in the terminal. It exists to exercise the library end-to-end and to give
// the CLI/config dependency stack (kong + toml/yaml) somewhere to live, not
// as a product surface.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"golang.org/x/term"

	"github.com/Alia5/crossput"
	_ "github.com/Alia5/crossput/backend/evdev"
	"github.com/Alia5/crossput/internal/configpaths"
	crossputlog "github.com/Alia5/crossput/internal/log"
)

// CLI is the full command tree. Config names a TOML or YAML file to load as
// defaults for any of these flags; if empty, the XDG-conventional path from
// internal/configpaths is consulted instead.
var CLI struct {
	Config  string `help:"Path to a TOML or YAML config file." type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging."`
	LogFile string `help:"Also write JSON logs to this path." type:"path"`

	Discover   DiscoverCmd   `cmd:"" help:"Enumerate attached hardware and register new devices."`
	List       ListCmd       `cmd:"" help:"List currently known devices."`
	Watch      WatchCmd      `cmd:"" help:"Poll and print live input state until interrupted."`
	ConfigInit ConfigInitCmd `cmd:"" name:"config-init" help:"Write a template config file."`
}

type DiscoverCmd struct{}

func (c *DiscoverCmd) Run() error {
	ids, err := crossput.DiscoverDevices()
	if err != nil {
		return err
	}
	for _, id := range ids {
		dev, _ := crossput.GetDevice(id)
		fmt.Printf("discovered %d: %s\n", id, describe(dev))
	}
	fmt.Printf("%d new device(s)\n", len(ids))
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run() error {
	for _, dev := range crossput.GetDevices() {
		fmt.Printf("%6d  %-9s  %s\n", dev.ID(), dev.Type(), describe(dev))
	}
	return nil
}

type WatchCmd struct {
	Interval time.Duration `default:"50ms" help:"Polling interval."`
}

func (c *WatchCmd) Run() error {
	if _, err := crossput.DiscoverDevices(); err != nil {
		return err
	}
	// Only clear the screen between frames when stdout is an interactive
	// terminal; a redirected/piped watch just streams frame after frame,
	// one line per device.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	width := 80
	if interactive {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	for {
		if err := crossput.UpdateAllDevices(); err != nil {
			return err
		}
		printFrame(interactive, width)
		time.Sleep(c.Interval)
	}
}

func describe(dev crossput.Device) string {
	if dev == nil {
		return "?"
	}
	name := dev.DisplayName()
	if name == "" {
		name = "(disconnected)"
	}
	return name
}

// printFrame renders one snapshot of every known device's live state,
// clearing the screen first when attached to an interactive terminal, and
// truncating lines to width otherwise left alone.
func printFrame(interactive bool, width int) {
	if interactive {
		fmt.Print("\033[H\033[2J")
	}
	for _, m := range crossput.GetMice() {
		x, y := m.Position()
		printLine(width, fmt.Sprintf("mouse    %6d  pos=(%d,%d)", m.ID(), x, y))
	}
	for _, k := range crossput.GetKeyboards() {
		printLine(width, fmt.Sprintf("keyboard %6d  pressed=%d", k.ID(), k.NumKeysPressed()))
	}
	for _, g := range crossput.GetGamepads() {
		printLine(width, fmt.Sprintf("gamepad  %6d  sticks=%d motors=%d", g.ID(), g.ThumbstickCount(), g.MotorCount()))
	}
}

func printLine(width int, line string) {
	if len(line) > width {
		line = line[:width]
	}
	fmt.Println(line)
}

// findUserConfig scans raw args for an explicit --config before kong.Parse
// runs, since the config file path itself decides which loader candidate
// paths to hand kong.Configuration.
func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func main() {
	userCfg := findUserConfig(os.Args[1:])
	yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	ctx := kong.Parse(&CLI,
		kong.Name("crossputctl"),
		kong.Description("Inspect and drive crossput input devices."),
		kong.UsageOnError(),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	var fileWriter io.Writer
	if CLI.LogFile != "" {
		logFile, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			ctx.FatalIfErrorf(err)
		}
		defer logFile.Close()
		fileWriter = logFile
	}
	logger := crossputlog.New(os.Stderr, level, fileWriter, slog.LevelDebug)
	crossput.SetLogger(logger)

	cfgPath := userCfg
	if cfgPath == "" {
		cfgPath = configpaths.DefaultConfigFile()
	}
	if opts, err := loadOptions(cfgPath); err == nil {
		crossput.SetOptions(opts)
	}

	ctx.FatalIfErrorf(ctx.Run())
}
