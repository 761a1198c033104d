// SPDX-License-Identifier: GPL-3.0-or-later

package metricout

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Prometheus collects samples as gauges and writes them in the text exposition format on Flush.
// Samples with a non-numeric value are skipped, booleans become 0 or 1.
type Prometheus struct {
	w      io.Writer
	kind   string
	reg    *prometheus.Registry
	gauges map[string]*prometheus.GaugeVec
}

func NewPrometheus(w io.Writer, kind string) *Prometheus {
	return &Prometheus{
		w:      w,
		kind:   kind,
		reg:    prometheus.NewRegistry(),
		gauges: make(map[string]*prometheus.GaugeVec),
	}
}

func (p *Prometheus) Write(s Sample) error {
	value, ok := parseValue(s.Value)
	if !ok {
		return nil
	}

	name := MetricName(p.kind, s.Metric)

	gauge, ok := p.gauges[name]
	if !ok {
		var labels []string
		if s.Object != "" {
			labels = []string{"name"}
		}
		gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: fmt.Sprintf("RabbitMQ %s metric %s", p.kind, s.Metric),
		}, labels)
		if err := p.reg.Register(gauge); err != nil {
			return fmt.Errorf("register '%s': %v", name, err)
		}
		p.gauges[name] = gauge
	}

	var values []string
	if s.Object != "" {
		values = []string{s.Object}
	}
	g, err := gauge.GetMetricWithLabelValues(values...)
	if err != nil {
		return fmt.Errorf("metric '%s': %v", name, err)
	}
	g.Set(value)

	return nil
}

func (p *Prometheus) Flush() error {
	mfs, err := p.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(p.w, mf); err != nil {
			return err
		}
	}
	return nil
}

// MetricName returns "rabbitmq_<kind>_<metric>" with characters not allowed in
// prometheus metric names replaced by underscores.
func MetricName(kind, metric string) string {
	name := "rabbitmq_" + kind + "_" + metric
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, name)
}

func parseValue(s string) (float64, bool) {
	switch s {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
