package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gotoml "github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/crossput"
	"github.com/Alia5/crossput/internal/configpaths"
)

// ConfigInitCmd scaffolds a config file at the conventional XDG location
// (or Out, if given) populated with crossput.DefaultOptions, format chosen
// by the file extension.
type ConfigInitCmd struct {
	Out string `help:"Where to write the config file." default:""`
}

func (c *ConfigInitCmd) Run() error {
	out := c.Out
	if out == "" {
		out = filepath.Join(configpaths.ConfigDir(), "config.toml")
	}
	if err := configpaths.EnsureDir(filepath.Dir(out)); err != nil {
		return err
	}
	if _, err := os.Stat(out); err == nil {
		return fmt.Errorf("%s already exists", out)
	}

	data, err := marshalOptions(crossput.DefaultOptions(), out)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func marshalOptions(o crossput.Options, path string) ([]byte, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return yaml.Marshal(o)
	}
	return gotoml.Marshal(o)
}

// loadOptions reads path (TOML or YAML, by extension) into an Options,
// falling back to crossput.DefaultOptions if path doesn't exist.
func loadOptions(path string) (crossput.Options, error) {
	o := crossput.DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return o, err
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return o, yaml.Unmarshal(data, &o)
	}
	return o, gotoml.Unmarshal(data, &o)
}
