package geometry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrInvalidDimension = errors.New("invalid sample dimension")
var ErrUnknownShape = errors.New("unknown sample shape")

// DimensionError names the offending size of a shape.
type DimensionError struct {
	Dimension string
	Value     float64
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s must be positive, got %v", e.Dimension, e.Value)
}

func (e *DimensionError) Unwrap() error {
	return ErrInvalidDimension
}

// Shape is either Flat or Cylinder. The beam travels along +z.
type Shape interface {
	Name() string
	validate() error
	surfaces() ([]Surface, []float64)
	entryPoint(rng *rand.Rand) (mgl64.Vec3, int)
	volume() float64
	frontArea() float64
}

// Flat is a slab occupying z∈[0,Thickness], x∈[-Width/2,Width/2], y∈[-Height/2,Height/2].
type Flat struct {
	Thickness float64 // [cm]
	Width     float64 // [cm]
	Height    float64 // [cm]
}

func (Flat) Name() string { return "Flat" }

func (f Flat) validate() error {
	for _, d := range []struct {
		name  string
		value float64
	}{{"Thickness", f.Thickness}, {"Width", f.Width}, {"Height", f.Height}} {
		if !(d.value > 0) || math.IsInf(d.value, 0) {
			return &DimensionError{Dimension: d.name, Value: d.value}
		}
	}
	return nil
}

// front face first: the entry point lies on surface 0
func (f Flat) surfaces() ([]Surface, []float64) {
	halfW, halfH := 0.5*f.Width, 0.5*f.Height
	return []Surface{
			{F: 1},
			{F: 1, G: -f.Thickness},
			{B: 1, G: halfW},
			{B: 1, G: -halfW},
			{D: 1, G: halfH},
			{D: 1, G: -halfH},
		}, []float64{
			1, -1,
			1, -1,
			1, -1,
		}
}

func (f Flat) entryPoint(rng *rand.Rand) (mgl64.Vec3, int) {
	x := (rng.Float64() - 0.5) * f.Width
	y := (rng.Float64() - 0.5) * f.Height
	return mgl64.Vec3{x, y, 0}, 0
}

func (f Flat) volume() float64 {
	return f.Thickness * f.Width * f.Height
}

func (f Flat) frontArea() float64 {
	return f.Width * f.Height
}

// Cylinder has its axis along y and diameter Width.
type Cylinder struct {
	Width  float64 // [cm]
	Height float64 // [cm]
}

func (Cylinder) Name() string { return "Cylinder" }

func (c Cylinder) validate() error {
	if !(c.Width > 0) || math.IsInf(c.Width, 0) {
		return &DimensionError{Dimension: "Width", Value: c.Width}
	}
	if !(c.Height > 0) || math.IsInf(c.Height, 0) {
		return &DimensionError{Dimension: "Height", Value: c.Height}
	}
	return nil
}

func (c Cylinder) radius() float64 {
	return 0.5 * c.Width
}

// curved face first: the entry point lies on surface 0
func (c Cylinder) surfaces() ([]Surface, []float64) {
	r, halfH := c.radius(), 0.5*c.Height
	return []Surface{
			{A: 1, E: 1, G: -r * r},
			{D: 1, G: halfH},
			{D: 1, G: -halfH},
		}, []float64{
			-1,
			1, -1,
		}
}

func (c Cylinder) entryPoint(rng *rand.Rand) (mgl64.Vec3, int) {
	r := c.radius()
	x := (rng.Float64() - 0.5) * c.Width
	y := (rng.Float64() - 0.5) * c.Height
	z := -math.Sqrt(math.Max(0, math.FMA(-x, x, r*r)))
	return mgl64.Vec3{x, y, z}, 0
}

func (c Cylinder) volume() float64 {
	r := c.radius()
	return math.Pi * r * r * c.Height
}

func (c Cylinder) frontArea() float64 {
	return c.Width * c.Height
}

// ParseShape maps a run-file tag to its shape.
func ParseShape(tag string, thickness, width, height float64) (Shape, error) {
	switch tag {
	case "Flat":
		return Flat{Thickness: thickness, Width: width, Height: height}, nil
	case "Cylinder":
		return Cylinder{Width: width, Height: height}, nil
	}
	return nil, fmt.Errorf("%w: %q (expected Flat or Cylinder)", ErrUnknownShape, tag)
}
