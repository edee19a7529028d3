package hydraulics

import "math"

// CircularPipe is a full-bore circular pipe.
type CircularPipe struct {
	radius     float64
	radiusSq   float64
	circleArea float64
}

// NewCircular builds a calculator for a circular pipe of the given radius in metres.
func NewCircular(radius float64) (CircularPipe, error) {
	if err := requirePositive("pipe radius", radius); err != nil {
		return CircularPipe{}, err
	}
	return CircularPipe{
		radius:     radius,
		radiusSq:   radius * radius,
		circleArea: math.Pi * radius * radius,
	}, nil
}

// Flow returns the flow through the wetted segment below depth.
func (c CircularPipe) Flow(depth, velocity float64) float64 {
	switch {
	case depth >= 2*c.radius:
		return c.circleArea * velocity * 1000
	case depth > c.radius:
		// Subtract the dry segment above the water line.
		dry := segmentArea(c.radius, 2*c.radius-depth)
		return (c.circleArea - dry) * velocity * 1000
	case depth == c.radius:
		return c.circleArea / 2 * velocity * 1000
	case depth > 0:
		return segmentArea(c.radius, depth) * velocity * 1000
	default:
		return 0
	}
}
