// SPDX-License-Identifier: GPL-3.0-or-later

package threshold

import (
	"fmt"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/status"
)

// Direction tells which side of a threshold is bad.
type Direction int

const (
	// AtOrAbove flags values that reach or exceed the thresholds (queue depth, resource usage).
	AtOrAbove Direction = iota
	// AtOrBelow flags values that drop to or under the thresholds (consumer count, utilisation).
	AtOrBelow
)

func (d Direction) String() string {
	if d == AtOrBelow {
		return "at or below"
	}
	return "at or above"
}

// Spec is a warning/critical threshold pair. Both boundaries are inclusive.
// The relative order of Warn and Critical is not enforced.
type Spec struct {
	Warn      float64
	Critical  float64
	Direction Direction
}

func New(warn, crit float64, dir Direction) Spec {
	return Spec{Warn: warn, Critical: crit, Direction: dir}
}

// Classify maps value to OK, Warning or Critical. Critical is checked first.
func (s Spec) Classify(value float64) status.Severity {
	switch s.Direction {
	case AtOrBelow:
		if value <= s.Critical {
			return status.Critical
		}
		if value <= s.Warn {
			return status.Warning
		}
	default:
		if value >= s.Critical {
			return status.Critical
		}
		if value >= s.Warn {
			return status.Warning
		}
	}
	return status.OK
}

func (s Spec) String() string {
	return fmt.Sprintf("warn %v, critical %v (%s)", s.Warn, s.Critical, s.Direction)
}
