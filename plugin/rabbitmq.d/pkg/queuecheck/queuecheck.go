// SPDX-License-Identifier: GPL-3.0-or-later

// Package queuecheck classifies selected queues against thresholds and
// folds the outcome into one check result.
package queuecheck

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/threshold"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

// MsgNoQueues is reported when the queue listing cannot be fetched.
const MsgNoQueues = "Could not find any queue, check rabbitmq server"

// Metric extracts the evaluated value of a queue and renders its annotation.
type Metric struct {
	Value    func(q rabbitmq.Queue) float64
	Annotate func(q rabbitmq.Queue) string
}

var (
	ConsumerCount = Metric{
		Value:    func(q rabbitmq.Queue) float64 { return float64(q.Consumers) },
		Annotate: func(q rabbitmq.Queue) string { return fmt.Sprintf("%s:%d-Consumers", q.Name, q.Consumers) },
	}
	ConsumerUtilisation = Metric{
		Value:    func(q rabbitmq.Queue) float64 { return q.ConsumerUtilisation.Value },
		Annotate: func(q rabbitmq.Queue) string { return q.Name + ":" + ratioPercent(q.ConsumerUtilisation) + "%" },
	}
	Depth = Metric{
		Value:    func(q rabbitmq.Queue) float64 { return float64(q.Messages) },
		Annotate: func(q rabbitmq.Queue) string { return q.Name + ":" + strconv.FormatInt(q.Messages, 10) },
	}
)

// UtilisationPercent renders a [0,1] utilisation as a percentage: the value is
// rounded to two decimals first and then scaled, without rounding the product.
func UtilisationPercent(v float64) string {
	return FormatFloat(RoundHalfUp(v, 2) * 100)
}

// ratioPercent keeps integral ratios integral: a queue without consumers
// reports no utilisation and renders as "0", not "0.0".
func ratioPercent(r rabbitmq.Ratio) string {
	if !r.Fractional {
		return strconv.FormatFloat(r.Value*100, 'f', -1, 64)
	}
	return UtilisationPercent(r.Value)
}

// Evaluation holds the annotations of queues that breached a threshold
// and the names of requested queues that were not found.
type Evaluation struct {
	Missing  []string
	Critical []string
	Warning  []string
}

// Evaluate classifies every selected queue. Order of the input is kept.
func Evaluate(selected []rabbitmq.Queue, missing []string, spec threshold.Spec, m Metric) Evaluation {
	e := Evaluation{Missing: missing}

	for _, q := range selected {
		switch spec.Classify(m.Value(q)) {
		case status.Critical:
			e.Critical = append(e.Critical, m.Annotate(q))
		case status.Warning:
			e.Warning = append(e.Warning, m.Annotate(q))
		}
	}

	return e
}

type Options struct {
	// Sorted orders annotations and missing names alphabetically instead of snapshot order.
	Sorted bool
	// Pretty puts every annotation on its own line.
	Pretty bool
}

const (
	headerCritical = "Queues in critical state:"
	headerMissing  = "Queues missing:"
	headerWarning  = "Queues in warning state:"
)

// Aggregate folds an evaluation into one result. Any critical queue or missing
// name makes it critical, then any warning queue makes it a warning.
func Aggregate(e Evaluation, opts Options) status.Result {
	critical, warning, missing := e.Critical, e.Warning, e.Missing
	if opts.Sorted {
		critical, warning, missing = sorted(critical), sorted(warning), sorted(missing)
	}

	switch {
	case len(critical) > 0 || len(missing) > 0:
		var clauses []string
		if len(critical) > 0 {
			if opts.Pretty {
				clauses = append(clauses, prettyClause(headerCritical, critical))
			} else {
				clauses = append(clauses, headerCritical+" "+strings.Join(critical, ", ")+". ")
			}
		}
		if len(missing) > 0 {
			if opts.Pretty {
				clauses = append(clauses, prettyClause(headerMissing, missing))
			} else {
				clauses = append(clauses, headerMissing+" "+strings.Join(missing, ", "))
			}
		}
		return status.NewCritical(strings.Join(clauses, "\n"))
	case len(warning) > 0:
		if opts.Pretty {
			return status.NewWarning(prettyClause(headerWarning, warning))
		}
		return status.NewWarning(headerWarning + " " + strings.Join(warning, ", "))
	default:
		return status.NewOK("")
	}
}

func prettyClause(header string, items []string) string {
	return header + "\n" + strings.Join(items, "\n")
}

func sorted(list []string) []string {
	if len(list) < 2 {
		return list
	}
	list = slices.Clone(list)
	slices.Sort(list)
	return list
}
