package hydraulics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidParameter reports a NaN, missing, or non-positive pipe dimension.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedShape reports a pipe shape name with no calculator.
	ErrUnsupportedShape = errors.New("unsupported pipe shape")
)

// Calculator converts a depth (m) and velocity (m/s) reading into flow in litres per second.
// Implementations are immutable and safe for concurrent use.
type Calculator interface {
	Flow(depth, velocity float64) float64
}

// Shape names a channel cross-section. The values match the labels used in job
// descriptors and the desktop tooling.
type Shape string

const (
	Circular               Shape = "Circular"
	Rectangular            Shape = "Rectangular"
	EggType1               Shape = "Egg Type 1"
	EggType2               Shape = "Egg Type 2"
	EggType2a              Shape = "Egg Type 2a"
	TwoCirclesAndRectangle Shape = "Two Circles and a Rectangle"
)

var shapes = []Shape{Circular, Rectangular, EggType1, EggType2, EggType2a, TwoCirclesAndRectangle}

// ParseShape matches a shape label case-insensitively.
func ParseShape(s string) (Shape, error) {
	s = strings.TrimSpace(s)
	for _, shape := range shapes {
		if strings.EqualFold(s, string(shape)) {
			return shape, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedShape, s)
}

// New builds the calculator for shape from its size parameter.
//
// Circular and rectangular sizes are a single dimension in millimetres (diameter
// and width). Egg and two-circle sizes are comma separated dimensions in metres:
//
//	Egg Type 1                  width,height,r3
//	Egg Type 2                  height
//	Egg Type 2a                 height,width,r3
//	Two Circles and a Rectangle height,width
func New(shape Shape, size string) (Calculator, error) {
	switch shape {
	case Circular:
		dims, err := parseDims(size, 1)
		if err != nil {
			return nil, err
		}
		return calculator(NewCircular(dims[0] / 1000 / 2))
	case Rectangular:
		dims, err := parseDims(size, 1)
		if err != nil {
			return nil, err
		}
		return calculator(NewRectangular(dims[0] / 1000))
	case EggType1:
		dims, err := parseDims(size, 3)
		if err != nil {
			return nil, err
		}
		return calculator(NewEggType1(dims[0], dims[1], dims[2]))
	case EggType2:
		dims, err := parseDims(size, 1)
		if err != nil {
			return nil, err
		}
		return calculator(NewEggType2(dims[0]))
	case EggType2a:
		dims, err := parseDims(size, 3)
		if err != nil {
			return nil, err
		}
		return calculator(NewEggType2a(dims[0], dims[1], dims[2]))
	case TwoCirclesAndRectangle:
		dims, err := parseDims(size, 2)
		if err != nil {
			return nil, err
		}
		return calculator(NewTwoCirclesAndRectangle(dims[1], dims[0]))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedShape, shape)
	}
}

// HeaderConstant returns the pipe constant recorded in the FDV header: the
// diameter or width in metres for circular and rectangular channels, -1 for
// every other shape or when the size cannot be read.
func HeaderConstant(shape Shape, size string) float64 {
	if shape != Circular && shape != Rectangular {
		return -1
	}
	dims, err := parseDims(size, 1)
	if err != nil || dims[0] <= 0 {
		return -1
	}
	return dims[0] / 1000
}

// calculator keeps a failed constructor from surfacing as a non-nil interface.
func calculator[C Calculator](c C, err error) (Calculator, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

func parseDims(size string, n int) ([]float64, error) {
	parts := strings.Split(size, ",")
	if len(parts) < n {
		return nil, fmt.Errorf("%w: expected %d dimension(s), got %q", ErrInvalidParameter, n, size)
	}
	dims := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: dimension %q: %v", ErrInvalidParameter, parts[i], err)
		}
		dims[i] = v
	}
	return dims, nil
}

func requirePositive(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

// floorZero clamps negative and NaN flows to zero.
func floorZero(flow float64) float64 {
	if flow > 0 {
		return flow
	}
	return 0
}

// segmentArea is the area of a circular segment of the given height cut from a
// circle of the given radius.
func segmentArea(radius, height float64) float64 {
	rSq := radius * radius
	t := radius - height
	halfChord := math.Sqrt(rSq - t*t)
	angle := 2 * math.Atan(halfChord/t)
	return rSq * (angle - math.Sin(angle)) / 2
}
