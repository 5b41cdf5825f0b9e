package uart

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"locator/internal/beacon"
	"locator/internal/geometry"
	"locator/internal/position"
)

var ErrMalformedLine = errors.New("malformed beacon line")

var lineRE = regexp.MustCompile(`^Beacon ([A-Za-z]):\s*\(\s*([^,]+),\s*([^)]+)\)$`)

// FormatLine renders one beacon position, e.g. "Beacon A: (1.500000, -2.000000)".
func FormatLine(label beacon.Label, p geometry.Point) string {
	return fmt.Sprintf("Beacon %s: (%f, %f)", label, p.X, p.Y)
}

// Format renders every known beacon of res, one line each, newline terminated.
func Format(res position.Resolution) string {
	var sb strings.Builder
	for _, l := range beacon.Labels {
		if !res.Known(l) {
			continue
		}
		sb.WriteString(FormatLine(l, res.Positions[l]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseLine is the inverse of FormatLine.
func ParseLine(line string) (beacon.Label, geometry.Point, error) {
	m := lineRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, geometry.Point{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	label, err := beacon.ParseLabel(m[1])
	if err != nil {
		return 0, geometry.Point{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(m[2]), 64)
	if err != nil {
		return 0, geometry.Point{}, fmt.Errorf("%w: x: %v", ErrMalformedLine, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(m[3]), 64)
	if err != nil {
		return 0, geometry.Point{}, fmt.Errorf("%w: y: %v", ErrMalformedLine, err)
	}
	return label, geometry.Point{X: x, Y: y}, nil
}
