package hydraulics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShape(t *testing.T) {
	tests := []struct {
		in   string
		want Shape
	}{
		{"Circular", Circular},
		{"circular", Circular},
		{" RECTANGULAR ", Rectangular},
		{"egg type 1", EggType1},
		{"Egg Type 2", EggType2},
		{"egg type 2A", EggType2a},
		{"two circles and a rectangle", TwoCirclesAndRectangle},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShape(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseShape("Trapezoid")
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		size    string
		wantErr error
	}{
		{"circular mm", Circular, "300", nil},
		{"rectangular mm", Rectangular, "1200", nil},
		{"egg type 1", EggType1, "1,1.5,1.5", nil},
		{"egg type 2", EggType2, "1.2", nil},
		{"egg type 2a", EggType2a, "1.5,1,1.3334", nil},
		{"two circles", TwoCirclesAndRectangle, "2,1", nil},
		{"empty size", Circular, "", ErrInvalidParameter},
		{"non numeric", Rectangular, "wide", ErrInvalidParameter},
		{"zero diameter", Circular, "0", ErrInvalidParameter},
		{"negative width", Rectangular, "-5", ErrInvalidParameter},
		{"NaN height", EggType2, "NaN", ErrInvalidParameter},
		{"egg missing dimension", EggType1, "1,1.5", ErrInvalidParameter},
		{"egg wider than tall", EggType1, "1.5,1,1.5", ErrInvalidParameter},
		{"two circles wider than tall", TwoCirclesAndRectangle, "1,2", ErrInvalidParameter},
		{"two circles zero width", TwoCirclesAndRectangle, "2,0", ErrInvalidParameter},
		{"unknown shape", Shape("Oval"), "1", ErrUnsupportedShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := New(tt.shape, tt.size)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, calc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, calc)
		})
	}
}

func TestHeaderConstant(t *testing.T) {
	assert.InDelta(t, 0.3, HeaderConstant(Circular, "300"), 1e-12)
	assert.InDelta(t, 1.2, HeaderConstant(Rectangular, "1200"), 1e-12)
	assert.Equal(t, -1.0, HeaderConstant(EggType2, "1.2"))
	assert.Equal(t, -1.0, HeaderConstant(Circular, "abc"))
	assert.Equal(t, -1.0, HeaderConstant(Circular, "-3"))
}

func TestCircularPipe(t *testing.T) {
	const r = 0.15
	pipe, err := NewCircular(r)
	require.NoError(t, err)
	area := math.Pi * r * r

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, pipe.Flow(0, 1))
		assert.Equal(t, 0.0, pipe.Flow(-0.1, 1))
	})

	t.Run("half full", func(t *testing.T) {
		assert.InDelta(t, area/2*1.5*1000, pipe.Flow(r, 1.5), 1e-9)
	})

	t.Run("full and surcharged", func(t *testing.T) {
		assert.InDelta(t, area*1.5*1000, pipe.Flow(2*r, 1.5), 1e-9)
		assert.InDelta(t, area*1.5*1000, pipe.Flow(3*r, 1.5), 1e-9)
	})

	t.Run("continuous across branches", func(t *testing.T) {
		const eps = 1e-9
		assert.InDelta(t, pipe.Flow(r, 1), pipe.Flow(r-eps, 1), 1e-4)
		assert.InDelta(t, pipe.Flow(r, 1), pipe.Flow(r+eps, 1), 1e-4)
		assert.InDelta(t, pipe.Flow(2*r, 1), pipe.Flow(2*r-eps, 1), 1e-4)
	})

	t.Run("monotonic in depth", func(t *testing.T) {
		prev := 0.0
		for i := 1; i <= 300; i++ {
			q := pipe.Flow(2*r*float64(i)/300, 1)
			assert.GreaterOrEqual(t, q, prev)
			prev = q
		}
	})

	t.Run("built from diameter in millimetres", func(t *testing.T) {
		calc, err := New(Circular, "300")
		require.NoError(t, err)
		assert.InDelta(t, pipe.Flow(0.1, 0.8), calc.Flow(0.1, 0.8), 1e-12)
	})
}

func TestRectangularChannel(t *testing.T) {
	ch, err := NewRectangular(1.2)
	require.NoError(t, err)

	assert.InDelta(t, 0.5*2*1.2*1000, ch.Flow(0.5, 2), 1e-9)
	assert.Equal(t, 0.0, ch.Flow(-0.5, 2))
	assert.Equal(t, 0.0, ch.Flow(0.5, -2))
}

func TestTwoCirclesAndRectangle(t *testing.T) {
	// height 2 m, width 1 m: r = 0.5 and a 1 m barrel between the arcs.
	calc, err := New(TwoCirclesAndRectangle, "2,1")
	require.NoError(t, err)
	half := math.Pi * 0.25 / 2

	tests := []struct {
		name  string
		depth float64
		area  float64
	}{
		{"negative", -1, 0},
		{"invert half", 0.5, half},
		{"barrel", 1.0, half + 0.5},
		{"top of barrel", 1.5, half + 1},
		{"full", 2.0, 2*half + 1},
		{"surcharged", 2.5, 2*half + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.area*1000, calc.Flow(tt.depth, 1), 1e-6)
		})
	}

	assert.InDelta(t, calc.Flow(1.5, 1), calc.Flow(1.5+1e-9, 1), 1e-3)
	assert.InDelta(t, calc.Flow(2, 1), calc.Flow(2-1e-9, 1), 1e-3)
	assert.Equal(t, 0.0, calc.Flow(1, -1))
}

func TestEggSections(t *testing.T) {
	type2, err := NewEggType2(1)
	require.NoError(t, err)
	type1, err := NewEggType1(1, 1.5, 1.5)
	require.NoError(t, err)
	type2a, err := NewEggType2a(1.5, 1, 1.333354787194017)
	require.NoError(t, err)

	tests := []struct {
		name  string
		egg   EggSection
		depth float64
		area  float64
	}{
		{"type 2 mid depth", type2, 0.5, 0.2116740045603698},
		{"type 2 at crown", type2, 1, 0.5338742509088027},
		{"type 1 mid depth", type1, 0.75, 0.5093202812219637},
		{"type 1 at crown", type1, 1.5, 1.348470078229202},
		{"type 2a mid depth", type2a, 0.75, 0.47625270341374193},
		{"type 2a at crown", type2a, 1.5, 1.2011994240317319},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, perimeter := tt.egg.WettedArea(tt.depth)
			assert.InDelta(t, tt.area, area, 1e-9)
			assert.Positive(t, perimeter)
			assert.InDelta(t, tt.area*2*1000, tt.egg.Flow(tt.depth, 2), 1e-6)
		})
	}

	t.Run("depth clamped below crown", func(t *testing.T) {
		assert.Equal(t, type2.Flow(1, 1), type2.Flow(5, 1))
	})

	t.Run("continuous at arc transitions", func(t *testing.T) {
		for _, egg := range []EggSection{type1, type2} {
			for _, h := range []float64{egg.h1, egg.h2} {
				below, _ := egg.WettedArea(h - 1e-9)
				above, _ := egg.WettedArea(h + 1e-9)
				assert.InDelta(t, below, above, 1e-6)
			}
		}
	})

	t.Run("monotonic in depth", func(t *testing.T) {
		for _, egg := range []EggSection{type1, type2, type2a} {
			prev := 0.0
			for i := 1; i < 1000; i++ {
				area, _ := egg.WettedArea(egg.height * float64(i) / 1000)
				assert.GreaterOrEqual(t, area, prev-1e-12)
				prev = area
			}
		}
	})

	t.Run("negative velocity floors at zero", func(t *testing.T) {
		assert.Equal(t, 0.0, type1.Flow(0.5, -1))
	})
}
