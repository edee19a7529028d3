package hydraulics

import (
	"fmt"
	"math"
)

// TwoCirclesAndRectangleSection is a barrel section with semicircular invert and
// soffit joined by straight walls.
type TwoCirclesAndRectangleSection struct {
	width  float64
	height float64
}

// NewTwoCirclesAndRectangle builds the calculator from the section width and
// overall height in metres. The width may not exceed the height.
func NewTwoCirclesAndRectangle(width, height float64) (TwoCirclesAndRectangleSection, error) {
	if err := requirePositive("section width", width); err != nil {
		return TwoCirclesAndRectangleSection{}, err
	}
	if err := requirePositive("section height", height); err != nil {
		return TwoCirclesAndRectangleSection{}, err
	}
	if width > height {
		return TwoCirclesAndRectangleSection{}, fmt.Errorf("%w: section width %v exceeds height %v", ErrInvalidParameter, width, height)
	}
	return TwoCirclesAndRectangleSection{width: width, height: height}, nil
}

// Flow evaluates the four depth regimes: lower segment, lower half circle plus
// barrel, barrel plus part of the upper circle, and full section. Negative
// depths and flows are reported as zero.
func (s TwoCirclesAndRectangleSection) Flow(depth, velocity float64) float64 {
	r := s.width / 2
	circleArea := math.Pi * r * r
	barrel := s.height - s.width

	var area float64
	switch {
	case depth < r:
		if depth <= 0 {
			return 0
		}
		area = segmentArea(r, depth)
	case depth < s.height-r:
		area = circleArea/2 + (depth-r)*s.width
	case depth < s.height:
		above := depth - r - barrel
		upper := circleArea/2 - segmentArea(r, r-above)
		area = circleArea/2 + barrel*s.width + upper
	default:
		area = circleArea + barrel*s.width
	}
	return floorZero(area * velocity * 1000)
}
