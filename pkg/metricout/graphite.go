// SPDX-License-Identifier: GPL-3.0-or-later

package metricout

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Graphite writes "<scheme>.<object>.<metric> <value> <timestamp>" lines.
// All lines of one run share the timestamp taken at creation.
type Graphite struct {
	w      io.Writer
	scheme string
	ts     int64
}

func NewGraphite(w io.Writer, scheme string) *Graphite {
	return &Graphite{w: w, scheme: scheme, ts: time.Now().Unix()}
}

func (g *Graphite) Write(s Sample) error {
	parts := make([]string, 0, 3)
	for _, v := range []string{g.scheme, s.Object, s.Metric} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	_, err := fmt.Fprintf(g.w, "%s %s %d\n", strings.Join(parts, "."), s.Value, g.ts)
	return err
}

func (g *Graphite) Flush() error { return nil }
