// SPDX-License-Identifier: GPL-3.0-or-later

// Package metricout writes metric samples as graphite plaintext lines or
// prometheus text exposition.
package metricout

import (
	"fmt"
	"io"
)

const (
	FormatGraphite   = "graphite"
	FormatPrometheus = "prometheus"
)

// Sample is a single metric value.
type Sample struct {
	// Object is the queue or exchange name, empty for broker-wide metrics.
	Object string
	// Metric is a dotted metric name, e.g. "message_stats.publish".
	Metric string
	// Value is the value as it is printed in graphite output.
	Value string
}

// Writer writes samples. Flush must be called once all samples are written.
type Writer interface {
	Write(Sample) error
	Flush() error
}

// Config describes the output of a metrics check.
type Config struct {
	Format string
	// Scheme prefixes graphite paths.
	Scheme string
	// Kind names prometheus metrics: rabbitmq_<kind>_<metric>.
	Kind string
}

func New(w io.Writer, cfg Config) (Writer, error) {
	switch cfg.Format {
	case "", FormatGraphite:
		return NewGraphite(w, cfg.Scheme), nil
	case FormatPrometheus:
		return NewPrometheus(w, cfg.Kind), nil
	default:
		return nil, fmt.Errorf("unknown metrics format '%s'", cfg.Format)
	}
}
