package hydraulics

import (
	"fmt"
	"math"
)

// crownClamp keeps depths just below the crown where the arc geometry degenerates.
const crownClamp = 0.9999

// EggSection is an ovoid sewer profile built from an invert arc (r1), a crown
// arc (r2) and two side arcs (r3) whose centres sit offset from the centreline.
// h1 and h2 are the heights at which the invert and crown arcs meet the sides.
type EggSection struct {
	height float64
	r1     float64
	r2     float64
	r3     float64
	offset float64
	h1     float64
	h2     float64
}

// NewEggType1 builds a Type 1 egg from its width, height and side radius in metres.
func NewEggType1(width, height, r3 float64) (EggSection, error) {
	if err := validateEgg(width, height, r3); err != nil {
		return EggSection{}, err
	}
	r2 := width / 2
	return newEggSection(height, (height-width)/2, r2, r3, r3-r2), nil
}

// NewEggType2 builds a Type 2 egg from its height alone using the standard
// proportions r1=h/12, r2=h/3, r3=8h/9 and side-arc offset 5h/9.
func NewEggType2(height float64) (EggSection, error) {
	if err := requirePositive("egg height", height); err != nil {
		return EggSection{}, err
	}
	return newEggSection(height, height/12, height/3, 8*height/9, 5*height/9), nil
}

// NewEggType2a builds a Type 2a egg from its height, width and side radius in metres.
func NewEggType2a(height, width, r3 float64) (EggSection, error) {
	if err := validateEgg(width, height, r3); err != nil {
		return EggSection{}, err
	}
	r2 := width / 2
	return newEggSection(height, (height-width)/4, r2, r3, r3-r2), nil
}

func validateEgg(width, height, r3 float64) error {
	if err := requirePositive("egg width", width); err != nil {
		return err
	}
	if err := requirePositive("egg height", height); err != nil {
		return err
	}
	if err := requirePositive("egg side radius", r3); err != nil {
		return err
	}
	if width >= height {
		return fmt.Errorf("%w: egg width %v must be less than height %v", ErrInvalidParameter, width, height)
	}
	return nil
}

func newEggSection(height, r1, r2, r3, offset float64) EggSection {
	h2 := height - r2
	h1 := h2 - r3*math.Sin(math.Atan((h2-r1)/offset))
	return EggSection{
		height: height,
		r1:     r1,
		r2:     r2,
		r3:     r3,
		offset: offset,
		h1:     h1,
		h2:     h2,
	}
}

func (e EggSection) Flow(depth, velocity float64) float64 {
	area, _ := e.WettedArea(depth)
	return floorZero(area * velocity * 1000)
}

// WettedArea returns the submerged cross-section area and wetted perimeter at
// the given depth. Depth is clamped to 0.9999 of the section height.
func (e EggSection) WettedArea(depth float64) (area, perimeter float64) {
	if depth > e.height*crownClamp {
		depth = e.height * crownClamp
	}

	r1Sq := e.r1 * e.r1
	psi := math.Atan((e.h2 - e.r1) / e.offset)
	sideSector := 0.25 * e.r3 * e.r3 * (2*psi - math.Sin(2*psi))
	innerHalfWidth := math.Sqrt(r1Sq - (e.r1-e.h1)*(e.r1-e.h1))
	invertAngle := 2 * math.Acos((e.r1-e.h1)/e.r1)
	invertArea := 0.5 * (invertAngle - math.Sin(invertAngle)) * r1Sq
	invertPerimeter := 2 * e.r1 * math.Acos((e.r1-e.h1)/e.r1)

	switch {
	case depth <= e.h1:
		theta := 2 * math.Acos((e.r1-depth)/e.r1)
		area = 0.5 * (theta - math.Sin(theta)) * r1Sq
		perimeter = 2 * e.r1 * math.Acos((e.r1-depth)/e.r1)
	case depth <= e.h2:
		z := e.h2 - depth
		phi := math.Asin(z / e.r3)
		dryWedge := 0.25 * e.r3 * e.r3 * (2*phi - math.Sin(2*phi))
		x1 := math.Sqrt(e.r3*e.r3 - z*z)
		band := (depth - e.h1) * innerHalfWidth
		strip := (x1 - e.offset - innerHalfWidth) * z
		side := sideSector - dryWedge - strip
		area = invertArea + 2*(side+band)
		perimeter = invertPerimeter + 2*e.r3*(psi-phi)
	default:
		middle := 2 * (sideSector + (depth-e.h1)*innerHalfWidth)
		halfCrown := math.Pi * e.r2 * e.r2 / 2
		dry := 2*e.r2 - (depth - e.h2 + e.r2)
		gamma := 2 * math.Acos((e.r2-dry)/e.r2)
		crownWet := math.Pi*e.r2*e.r2 - e.r2*e.r2*(gamma-math.Sin(gamma))/2
		area = invertArea + middle + (crownWet - halfCrown)
		perimeter = invertPerimeter + 2*e.r3*psi + (math.Pi*e.r2 - e.r2*gamma)
	}
	return area, perimeter
}
