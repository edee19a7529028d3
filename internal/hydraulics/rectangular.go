package hydraulics

// RectangularChannel is an open channel with vertical walls.
type RectangularChannel struct {
	width float64
}

// NewRectangular builds a calculator for a channel of the given width in metres.
func NewRectangular(width float64) (RectangularChannel, error) {
	if err := requirePositive("channel width", width); err != nil {
		return RectangularChannel{}, err
	}
	return RectangularChannel{width: width}, nil
}

func (r RectangularChannel) Flow(depth, velocity float64) float64 {
	return floorZero(depth * velocity * r.width * 1000)
}
