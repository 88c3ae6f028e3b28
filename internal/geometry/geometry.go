package geometry

import (
	"errors"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const NoExit float64 = -1.

// ErrDegenerateRay is reported when DistanceToExit finds no exit surface.
var ErrDegenerateRay = errors.New("no exit surface found for ray")

// Geometry is immutable after New and safe for concurrent reads.
type Geometry struct {
	shape    Shape
	surfaces []Surface
	sign     []float64 // sign[i]·surfaces[i].Value(p) >= 0 inside
}

func New(shape Shape) (*Geometry, error) {
	if shape == nil {
		return nil, ErrUnknownShape
	}
	if err := shape.validate(); err != nil {
		return nil, err
	}
	surfaces, sign := shape.surfaces()
	return &Geometry{
		shape:    shape,
		surfaces: surfaces,
		sign:     sign,
	}, nil
}

func (g *Geometry) Shape() Shape {
	return g.shape
}

func (g *Geometry) Surfaces() []Surface {
	return g.surfaces
}

// DistanceToExit returns the smallest strictly positive distance along dir
// at which the ray leaves the shape and the surface that realises it, or
// (NoExit, -1). The point is taken to lie exactly on surface current
// (-1 for an interior point).
func (g *Geometry) DistanceToExit(pos, dir mgl64.Vec3, current int) (float64, int) {
	best, exit := math.Inf(1), -1
	for i, s := range g.surfaces {
		a, b, c := s.coefficients(pos, dir)
		var t float64
		var ok bool
		if i == current {
			if s.planar() || a == 0 {
				continue
			}
			// c == 0 on the surface: roots are 0 and -b/a
			t = -b / a
			ok = t > 0
		} else {
			t, ok = forwardRoot(a, b, c)
		}
		if ok && t < best {
			best, exit = t, i
		}
	}
	if exit < 0 {
		return NoExit, -1
	}
	return best, exit
}

// RandomEntryPoint samples a uniformly distributed point on the face the
// beam enters through and returns the surface it lies on.
func (g *Geometry) RandomEntryPoint(rng *rand.Rand) (mgl64.Vec3, int) {
	return g.shape.entryPoint(rng)
}

func (g *Geometry) Inside(p mgl64.Vec3, tolerance float64) bool {
	for i, s := range g.surfaces {
		if g.sign[i]*s.Value(p) < -tolerance {
			return false
		}
	}
	return true
}

// OnSurface reports the first surface p lies on within tolerance, or -1.
func (g *Geometry) OnSurface(p mgl64.Vec3, tolerance float64) int {
	for i, s := range g.surfaces {
		if math.Abs(s.Value(p)) <= tolerance {
			return i
		}
	}
	return -1
}

func (g *Geometry) Volume() float64 {
	return g.shape.volume()
}

// FrontArea is the area the beam illuminates.
func (g *Geometry) FrontArea() float64 {
	return g.shape.frontArea()
}
