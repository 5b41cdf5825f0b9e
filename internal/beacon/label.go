package beacon

import (
	"fmt"
	"strings"
)

// Label identifies one of the three fixed beacons.
type Label int

const (
	A Label = iota
	B
	C
)

// Labels lists every beacon in fixed A, B, C order.
var Labels = [3]Label{A, B, C}

func (l Label) String() string {
	switch l {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// Topic returns the 1-based key used on the position topic ("beacon-1" for A).
func (l Label) Topic() string {
	return fmt.Sprintf("beacon-%d", int(l)+1)
}

// ParseLabel converts "a", "B", "beacon-3" and similar into a Label.
func ParseLabel(value string) (Label, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	switch normalized {
	case "A", "BEACON-1":
		return A, nil
	case "B", "BEACON-2":
		return B, nil
	case "C", "BEACON-3":
		return C, nil
	default:
		return A, fmt.Errorf("unknown beacon label %q", value)
	}
}
