// SPDX-License-Identifier: GPL-3.0-or-later

package check

import (
	"fmt"
	"maps"
	"slices"
)

// Kind tells the runner how to report a result.
type Kind int

const (
	// KindCheck always prints a status line.
	KindCheck Kind = iota
	// KindMetric prints metric lines and a status line only when not OK.
	KindMetric
)

type (
	// Creator is a Check builder.
	Creator struct {
		// Title starts the status line, e.g. "CheckRabbitMQConsumers".
		Title       string
		Description string
		Kind        Kind
		Create      func() Check
	}
	// Registry is a collection of Creators.
	Registry map[string]Creator
)

// DefaultRegistry holds every check linked into the binary.
var DefaultRegistry = Registry{}

// Register registers a check in the DefaultRegistry.
func Register(name string, creator Creator) {
	DefaultRegistry.Register(name, creator)
}

// Register registers a check.
func (r Registry) Register(name string, creator Creator) {
	if _, ok := r[name]; ok {
		panic(fmt.Sprintf("%s is already in registry", name))
	}
	r[name] = creator
}

func (r Registry) Lookup(name string) (Creator, bool) {
	v, ok := r[name]
	return v, ok
}

// Names returns the registered check names in alphabetical order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}
