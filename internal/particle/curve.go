package particle

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Point is one control point of a curve. X is normalized time (0-1).
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Interpolation names the easing applied between two control points.
type Interpolation string

const (
	Linear        Interpolation = "Linear"
	EaseIn        Interpolation = "EaseIn"
	EaseOut       Interpolation = "EaseOut"
	FastInOutWeak Interpolation = "FastInOutWeak"
)

var interpolationKeywords = []Interpolation{Linear, EaseIn, EaseOut, FastInOutWeak}

// Curve is an ordered set of control points with one interpolation mode.
type Curve struct {
	Points        []Point       `yaml:"points"`
	Interpolation Interpolation `yaml:"interpolation,omitempty"`
}

// ParseCurve parses a curve string.
// Supports:
//   - Points: "0,1 0.5,0.2 1,0" → (x,y) pairs
//   - Leading value: ".4 1,0" → (0, .4) followed by the pairs
//   - Interpolation: "0,0 EaseIn 1,100" → keyword anywhere in the string
//   - Constant: "0.75" → single point (0, 0.75)
//
// Points are returned sorted by X.
func ParseCurve(s string) (Curve, error) {
	s = strings.TrimSpace(s)
	var c Curve
	if s == "" {
		return c, nil
	}

	for _, kw := range interpolationKeywords {
		if strings.Contains(s, string(kw)) {
			c.Interpolation = kw
			s = strings.TrimSpace(strings.ReplaceAll(s, string(kw), ""))
			break
		}
	}

	for i, part := range strings.Fields(s) {
		if !strings.Contains(part, ",") {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return Curve{}, fmt.Errorf("invalid curve value %q: %w", part, err)
			}
			if i != 0 {
				return Curve{}, fmt.Errorf("bare value %q is only allowed at the start of a curve", part)
			}
			c.Points = append(c.Points, Point{X: 0, Y: v})
			continue
		}
		pair := strings.Split(part, ",")
		if len(pair) != 2 {
			return Curve{}, fmt.Errorf("invalid curve point %q", part)
		}
		x, err1 := strconv.ParseFloat(pair[0], 64)
		y, err2 := strconv.ParseFloat(pair[1], 64)
		if err1 != nil || err2 != nil {
			return Curve{}, fmt.Errorf("invalid curve point %q", part)
		}
		c.Points = append(c.Points, Point{X: x, Y: y})
	}

	SortPoints(c.Points)
	return c, nil
}

// UnmarshalYAML accepts either the mapping form or a curve string.
func (c *Curve) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseCurve(node.Value)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	type plain Curve
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Curve(p)
	SortPoints(c.Points)
	return nil
}

// String renders the curve in the form accepted by ParseCurve.
func (c Curve) String() string {
	parts := make([]string, 0, len(c.Points)+1)
	for i, p := range c.Points {
		parts = append(parts, formatCoord(p.X)+","+formatCoord(p.Y))
		if i == 0 && c.Interpolation != "" && c.Interpolation != Linear {
			parts = append(parts, string(c.Interpolation))
		}
	}
	return strings.Join(parts, " ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SortPoints orders points by X, keeping the input order for equal X.
func SortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
}

// Evaluate returns the curve value at normalized time t.
func (c Curve) Evaluate(t float64) float64 {
	return EvaluatePoints(c.Points, t, c.Interpolation)
}

// EvaluatePoints calculates the interpolated value at time t (0-1).
//
// Parameters:
//   - points: control points sorted by X
//   - t: normalized time, clamped to [0, 1]
//   - interpolation: easing between points; empty means Linear
//
// Returns the interpolated value at time t. Before the first point the
// first value holds, after the last point the last value holds.
func EvaluatePoints(points []Point, t float64, interpolation Interpolation) float64 {
	if len(points) == 0 {
		return 0
	}
	if len(points) == 1 {
		return points[0].Y
	}

	t = math.Max(0, math.Min(1, t))
	if t < points[0].X {
		return points[0].Y
	}

	for i := 0; i < len(points)-1; i++ {
		p0 := points[i]
		p1 := points[i+1]
		if t < p0.X || t > p1.X {
			continue
		}
		span := p1.X - p0.X
		if span <= 0 {
			return p0.Y
		}
		ratio := ease((t-p0.X)/span, interpolation)
		return p0.Y + ratio*(p1.Y-p0.Y)
	}

	return points[len(points)-1].Y
}

func ease(ratio float64, interpolation Interpolation) float64 {
	switch interpolation {
	case EaseIn:
		return ratio * ratio
	case EaseOut:
		return 1 - (1-ratio)*(1-ratio)
	case FastInOutWeak:
		return ratio * ratio * (3 - 2*ratio)
	}
	return ratio
}
