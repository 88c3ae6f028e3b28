package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Surface is the quadric A·x² + B·x + C·y² + D·y + E·z² + F·z + G = 0.
type Surface struct {
	A, B, C, D, E, F, G float64
}

func (s Surface) Value(p mgl64.Vec3) float64 {
	x, y, z := p[0], p[1], p[2]
	return s.A*x*x + s.B*x + s.C*y*y + s.D*y + s.E*z*z + s.F*z + s.G
}

// coefficients of a·t² + b·t + c = 0 for the point p + t·d
func (s Surface) coefficients(p, d mgl64.Vec3) (a, b, c float64) {
	a = s.A*d[0]*d[0] + s.C*d[1]*d[1] + s.E*d[2]*d[2]
	b = (2.*s.A*p[0]+s.B)*d[0] + (2.*s.C*p[1]+s.D)*d[1] + (2.*s.E*p[2]+s.F)*d[2]
	c = s.Value(p)
	return
}

func (s Surface) planar() bool {
	return s.A == 0 && s.C == 0 && s.E == 0
}

// smallest strictly positive root of a·t² + b·t + c
func forwardRoot(a, b, c float64) (float64, bool) {
	if a == 0 {
		if b == 0 {
			return 0, false
		}
		t := -c / b
		return t, t > 0
	}
	disc := b*b - 4.*a*c
	if disc < 0 {
		return 0, false
	}
	// q carries the sign of b so that b and sqrt(disc) never cancel;
	// the small root comes from c/q instead of the difference.
	q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
	if q == 0 {
		return 0, false
	}
	t1, t2 := q/a, c/q
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > 0 {
		return t1, true
	}
	if t2 > 0 {
		return t2, true
	}
	return 0, false
}
