// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/net/http/httpproxy"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/logger"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/buildinfo"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/executable"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/check"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/agent/runner"
	_ "github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/checks"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/cli"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(s string, args ...interface{}) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, executable.Name, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// run dispatches to the check the binary is linked as, or to the check named by
// the first positional argument.
func run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) int {
	if _, ok := check.DefaultRegistry.Lookup(name); ok {
		return runCheck(ctx, name, args, stdout)
	}

	opts, err := cli.Parse(args)
	if err != nil {
		if cli.IsHelp(err) {
			return status.OK.ExitCode()
		}
		return status.Unknown.ExitCode()
	}

	switch {
	case opts.Version:
		_, _ = fmt.Fprintf(stdout, "%s.plugin, version: %s\n", executable.Name, buildinfo.Version)
		return status.OK.ExitCode()
	case opts.List:
		listChecks(stdout)
		return status.OK.ExitCode()
	case opts.Check == "":
		_, _ = fmt.Fprintln(stderr, "no check given, run with --list to see the available checks")
		return status.Unknown.ExitCode()
	}

	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	return runCheck(ctx, opts.Check, opts.Args, stdout)
}

func runCheck(ctx context.Context, name string, args []string, stdout io.Writer) int {
	if lvl := os.Getenv(runner.EnvLogLevel); lvl != "" {
		logger.Level.SetByName(lvl)
	}
	if cli.PreParse(args).Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	proxyCfg := httpproxy.FromEnvironment()
	logger.Debugf("check: %s, version: %s, env HTTP_PROXY '%s', HTTPS_PROXY '%s', NO_PROXY '%s'",
		name, buildinfo.Version, proxyCfg.HTTPProxy, proxyCfg.HTTPSProxy, proxyCfg.NoProxy)

	return runner.Run(ctx, name, args, stdout)
}

func listChecks(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range check.DefaultRegistry.Names() {
		creator, _ := check.DefaultRegistry.Lookup(name)
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", name, creator.Description)
	}
	_ = tw.Flush()
}
