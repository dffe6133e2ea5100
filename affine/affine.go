package affine

import (
	"fmt"
	"math"
)

// Affine data structure
// This is the same as Affine Python package used in rasterio
type Affine struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

// FromBounds creates a north-up transform that maps pixel (col, row) of a
// width x height raster onto bounds; row 0 is the top (Ymax) edge.
func FromBounds(bounds *Bounds, width int, height int) *Affine {
	return &Affine{
		A: bounds.Width() / float64(width),
		B: 0,
		C: bounds.Xmin,
		D: 0,
		E: -bounds.Height() / float64(height),
		F: bounds.Ymax,
	}
}

// Invert the Affine transform
func (a *Affine) Invert() *Affine {
	invDeterminant := 1 / (a.A*a.E - a.B*a.D)

	A := a.E * invDeterminant
	B := -a.B * invDeterminant
	D := -a.D * invDeterminant
	E := a.A * invDeterminant

	return &Affine{
		A: A,
		B: B,
		C: -a.C*A - a.F*B,
		D: D,
		E: E,
		F: -a.C*D - a.F*E,
	}
}

// Apply the transform to x and y using matrix multiplication
func (a *Affine) Multiply(x float64, y float64) (float64, float64) {
	return x*a.A + y*a.B + a.C, x*a.D + y*a.E + a.F
}

// Scale the Affine transform
func (a *Affine) Scale(x float64, y float64) *Affine {
	return &Affine{
		A: a.A * x,
		B: a.B,
		C: a.C,
		D: a.D,
		E: a.E * y,
		F: a.F,
	}
}

// Translate shifts the origin of the transform by col, row pixels
func (a *Affine) Translate(col float64, row float64) *Affine {
	x, y := a.Multiply(col, row)
	return &Affine{
		A: a.A,
		B: a.B,
		C: x,
		D: a.D,
		E: a.E,
		F: y,
	}
}

func (a *Affine) String() string {
	return fmt.Sprintf("Affine(%v, %v, %v,\n       %v, %v, %v)", a.A, a.B, a.C, a.D, a.E, a.F)
}

// Return the x, y resolution of the Affine transform
func (a *Affine) Resolution() (float64, float64) {
	return math.Abs(a.A), math.Abs(a.E)
}
