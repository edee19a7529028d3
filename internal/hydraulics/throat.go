package hydraulics

import (
	"errors"
	"fmt"
	"math"
)

const (
	throatMaxIterations = 1000
	throatPrecision     = 1e-5
)

var (
	// ErrMathDomain reports width/height combinations with no real throat radius.
	ErrMathDomain = errors.New("math domain error")
	// ErrConvergence reports that the throat radius iteration hit its cap.
	ErrConvergence = errors.New("throat radius did not converge")
)

// EggForm selects the invert proportion used when solving for the throat radius.
type EggForm int

const (
	EggForm1 EggForm = 1
	EggForm2 EggForm = 2
)

// ParseEggForm maps an egg shape label onto its solver family. Type 2 and 2a
// share the quarter-width invert.
func ParseEggForm(s string) (EggForm, error) {
	shape, err := ParseShape(s)
	if err != nil {
		return 0, err
	}
	switch shape {
	case EggType1:
		return EggForm1, nil
	case EggType2, EggType2a:
		return EggForm2, nil
	default:
		return 0, fmt.Errorf("%w: %q has no throat radius", ErrUnsupportedShape, s)
	}
}

// ThroatRadius solves for the side-arc radius r3 of an egg section of the given
// width and height so that the offset between the side and crown arc centres
// agrees with the horizontal chord through the crown transition.
//
// It iterates r3 from h, nudging it by a tenth of the residual each step, and
// stops once the residual is within 1e-5.
func ThroatRadius(width, height float64, form EggForm) (float64, error) {
	if math.IsNaN(width) || math.IsNaN(height) || width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: width %v height %v", ErrInvalidParameter, width, height)
	}
	if width >= height {
		return 0, fmt.Errorf("%w: width %v must be less than height %v", ErrMathDomain, width, height)
	}

	invertDivisor := 4.0
	if form == EggForm1 {
		invertDivisor = 2
	}
	r2 := width / 2
	r1 := (height - width) / invertDivisor
	h2 := height - r2

	r3 := height
	for range throatMaxIterations {
		offset := r3 - r2
		sq := (r3-r1)*(r3-r1) - (h2-r1)*(h2-r1)
		if sq < 0 {
			return 0, fmt.Errorf("%w: negative chord term at r3=%v", ErrMathDomain, r3)
		}
		diff := offset - math.Sqrt(sq)
		if math.Abs(diff) <= throatPrecision {
			return r3, nil
		}
		r3 += diff / 10
	}
	return 0, fmt.Errorf("%w after %d iterations", ErrConvergence, throatMaxIterations)
}
