package model

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

var beamDirection = mgl64.Vec3{0, 0, 1}

// Particle is the state of one walk; it never outlives the walk.
type Particle struct {
	position  mgl64.Vec3 // [cm]
	direction mgl64.Vec3
	surface   int // surface the particle sits on, -1 inside
	k         float64
	weight    float64
	order     int     // scatterings so far
	qs        float64 // Σ Q·S(Q) of the sampled deflections
}

func (m *Model) newParticle(rng *rand.Rand) Particle {
	position, surface := m.Geometry.RandomEntryPoint(rng)
	return Particle{
		position:  position,
		direction: beamDirection,
		surface:   surface,
		k:         m.k,
		weight:    1,
	}
}

func (p *Particle) advance(distance float64) {
	p.position = p.position.Add(p.direction.Mul(distance))
	p.surface = -1
}

// collide moves the particle to its next collision inside the sample.
func (p *Particle) collide(distance float64) {
	p.advance(distance)
	p.order++
}

// redirect turns the direction by the polar angle acos(cosChi) and the
// azimuth phi about the current direction.
func (p *Particle) redirect(cosChi, phi float64) {
	d := p.direction
	sinChi := math.Sqrt(math.Max(0, math.FMA(cosChi, -cosChi, 1.)))
	// any unit vector orthogonal to d
	var u mgl64.Vec3
	if math.Abs(d[0]) < 0.9 {
		u = mgl64.Vec3{1, 0, 0}.Cross(d).Normalize()
	} else {
		u = mgl64.Vec3{0, 1, 0}.Cross(d).Normalize()
	}
	v := d.Cross(u)
	sinPhi, cosPhi := math.Sincos(phi)
	p.direction = d.Mul(cosChi).
		Add(u.Mul(sinChi * cosPhi)).
		Add(v.Mul(sinChi * sinPhi)).
		Normalize()
}

// momentum transfer between the current direction and out
func (p *Particle) momentumTransfer(out mgl64.Vec3) float64 {
	return p.direction.Sub(out).Mul(p.k).Len()
}
