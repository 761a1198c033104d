// SPDX-License-Identifier: GPL-3.0-or-later

package metricout

import (
	"fmt"
	"os"
)

// Options are the output settings shared by the metrics checks.
type Options struct {
	Scheme string `long:"scheme" value-name:"SCHEME" description:"metric naming scheme, text to prepend to graphite paths" yaml:"scheme" json:"scheme"`
	Format string `long:"format" choice:"graphite" choice:"prometheus" description:"output format" yaml:"format" json:"format"`
}

// NewOptions returns graphite output under "<hostname>.rabbitmq".
func NewOptions() Options {
	return Options{
		Scheme: DefaultScheme(),
		Format: FormatGraphite,
	}
}

// DefaultScheme returns "<hostname>.rabbitmq".
func DefaultScheme() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return host + ".rabbitmq"
}

// Config returns the writer config for metrics of the given kind.
func (o Options) Config(kind string) Config {
	return Config{Format: o.Format, Scheme: o.Scheme, Kind: kind}
}

func (o Options) Validate() error {
	switch o.Format {
	case "", FormatGraphite, FormatPrometheus:
		return nil
	default:
		return fmt.Errorf("unknown metrics format '%s'", o.Format)
	}
}
