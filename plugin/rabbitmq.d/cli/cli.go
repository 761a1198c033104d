// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"github.com/jessevdk/go-flags"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/executable"
)

// Option defines the command line options of the multi-check binary.
type Option struct {
	List    bool `short:"l" long:"list" description:"list available checks and exit"`
	Debug   bool `short:"d" long:"debug" description:"debug mode"`
	Version bool `short:"v" long:"version" description:"display the version and exit"`

	// Check is the check name, Args are the options passed to it.
	Check string
	Args  []string
}

// PluginOption defines options every check accepts.
type PluginOption struct {
	Debug      bool   `long:"debug" description:"debug mode"`
	Version    bool   `long:"version" description:"display the version and exit"`
	ConfigFile string `long:"config" value-name:"FILE" description:"read connection settings from a YAML or TOML file"`
	EnvFile    string `long:"env-file" value-name:"FILE" description:"load environment variables from a dotenv file"`
}

// Parse returns parsed command-line flags in Option struct.
// Parsing stops at the first non-option argument, which names the check.
func Parse(args []string) (*Option, error) {
	opt := &Option{}
	parser := flags.NewParser(opt, flags.Default|flags.PassAfterNonOption)
	parser.Name = executable.Name
	parser.Usage = "[OPTIONS] <check> [check options]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	if len(rest) > 0 {
		opt.Check, opt.Args = rest[0], rest[1:]
	}

	return opt, nil
}

// PreParse extracts PluginOption from a check command line, ignoring the check options.
func PreParse(args []string) *PluginOption {
	opt := &PluginOption{}
	parser := flags.NewParser(opt, flags.IgnoreUnknown)
	_, _ = parser.ParseArgs(args)
	return opt
}

func IsHelp(err error) bool {
	return flags.WroteHelp(err)
}
