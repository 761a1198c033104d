// SPDX-License-Identifier: GPL-3.0-or-later

package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/logger"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/buildinfo"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/config"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/cli"
)

// EnvLogLevel names the environment variable that sets the log level.
const EnvLogLevel = "RABBITMQ_PLUGIN_LOG_LEVEL"

type connector interface {
	Conn() *config.Connection
}

// Runner runs a single check and reports its result.
type Runner struct {
	Registry check.Registry
	Out      io.Writer
	ErrOut   io.Writer
}

func New() *Runner {
	return &Runner{
		Registry: check.DefaultRegistry,
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
	}
}

// Run runs the named check from the default registry and returns the process exit code.
func Run(ctx context.Context, name string, args []string, stdout io.Writer) int {
	r := New()
	r.Out = stdout
	return r.Run(ctx, name, args)
}

func (r *Runner) Run(ctx context.Context, name string, args []string) int {
	creator, ok := r.Registry.Lookup(name)
	if !ok {
		_, _ = fmt.Fprintf(r.ErrOut, "unknown check '%s'\n", name)
		return status.Unknown.ExitCode()
	}

	chk := creator.Create()

	var conn *config.Connection
	if v, ok := chk.(connector); ok {
		conn = v.Conn()
	}

	if pre := cli.PreParse(args); pre.EnvFile != "" || pre.ConfigFile != "" {
		if err := loadFiles(pre, chk.Configuration()); err != nil {
			return r.report(creator, status.NewUnknown(err.Error()))
		}
	}

	opts := &cli.PluginOption{}
	parser := flags.NewParser(chk.Configuration(), flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = name
	parser.LongDescription = creator.Description
	if _, err := parser.AddGroup("Plugin Options", "", opts); err != nil {
		return r.report(creator, status.NewUnknown(err.Error()))
	}

	if _, err := parser.ParseArgs(args); err != nil {
		if cli.IsHelp(err) {
			_, _ = fmt.Fprintln(r.Out, err.Error())
			return status.OK.ExitCode()
		}
		return r.report(creator, status.NewUnknown(err.Error()))
	}

	if opts.Version {
		_, _ = fmt.Fprintf(r.Out, "%s, version: %s\n", name, buildinfo.Version)
		return status.OK.ExitCode()
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		logger.Level.SetByName(lvl)
	}
	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	if conn != nil {
		if err := conn.Resolve(); err != nil {
			return r.report(creator, status.NewUnknown(err.Error()))
		}
	}

	base := chk.GetBase()
	base.Logger = logger.New().With(slog.String("check", name))
	base.Out = r.Out

	if err := chk.Init(ctx); err != nil {
		base.Errorf("init failed: %v", err)
		return r.report(creator, status.NewUnknown(err.Error()))
	}
	defer chk.Cleanup(ctx)

	res := chk.Check(ctx)
	base.Debugf("check finished: %s", res.Line(creator.Title))

	return r.report(creator, res)
}

func (r *Runner) report(creator check.Creator, res status.Result) int {
	if creator.Kind == check.KindMetric && res.Severity == status.OK {
		return status.OK.ExitCode()
	}
	_ = res.Write(r.Out, creator.Title)
	return res.Severity.ExitCode()
}

func loadFiles(opts *cli.PluginOption, cfg any) error {
	if opts.EnvFile != "" {
		if err := config.LoadEnvFile(opts.EnvFile); err != nil {
			return fmt.Errorf("env file: %v", err)
		}
	}
	if opts.ConfigFile != "" {
		if err := config.LoadFile(opts.ConfigFile, cfg); err != nil {
			return fmt.Errorf("config file: %v", err)
		}
	}
	return nil
}
