package models

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
)

const (
	ConfigVendor = "pecorn"
	ConfigFile   = "config.json"
)

type Config struct {
	Color   bool `json:"color"`
	Flags   bool `json:"flags"`
	Raw     bool `json:"raw"`
	Verbose bool `json:"verbose"`

	Output io.WriteCloser `json:"-"`
}

// LoadConfig returns the saved defaults for app, or an empty Config if none
// were saved. Command line flags are applied on top by the caller.
func LoadConfig(app string) (*Config, error) {
	config := &Config{Output: os.Stderr}
	dirs := configdir.New(ConfigVendor, app)
	folder := dirs.QueryFolderContainsFile(ConfigFile)
	if folder == nil {
		return config, nil
	}
	data, err := folder.ReadFile(ConfigFile)
	if err != nil {
		return config, errors.Wrap(err, "failed to read config")
	}
	if err := config.Decode(data); err != nil {
		return config, errors.Wrapf(err, "bad config in %s", folder.Path)
	}
	return config, nil
}

func (c *Config) Decode(data []byte) error {
	return errors.WithStack(json.Unmarshal(data, c))
}

// Printf writes diagnostics to the configured output when Verbose is set.
func (c *Config) Printf(format string, a ...interface{}) {
	if !c.Verbose || c.Output == nil {
		return
	}
	fmt.Fprintf(c.Output, format, a...)
}
