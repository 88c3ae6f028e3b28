package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wildstyl3r/msmc/internal/constants"
	"github.com/wildstyl3r/msmc/internal/geometry"
)

type WalkStatus int

const (
	StatusOK WalkStatus = iota
	StatusDegenerate
	StatusRetriesExhausted
	StatusInvalidWeight
)

func (s WalkStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegenerate:
		return "degenerate ray"
	case StatusRetriesExhausted:
		return "retries exhausted"
	case StatusInvalidWeight:
		return "invalid weight"
	}
	return fmt.Sprintf("WalkStatus(%d)", int(s))
}

// WalkResult is everything a finished walk contributes to the accumulator.
type WalkResult struct {
	Status       WalkStatus
	Order        int
	Contribution float64 // towards the detector, for Order
	QS           float64 // Σ Q·S(Q) over intermediate deflections

	// single-scattering walks only
	Transmission     float64 // order 0: exp(-μ·dl0)
	FirstAttenuation float64 // exp(-μ·vl) up to the first collision
}

func (m *Model) exitDistance(p *Particle, direction mgl64.Vec3) (float64, error) {
	distance, surface := m.Geometry.DistanceToExit(p.position, direction, p.surface)
	if surface < 0 {
		return geometry.NoExit, geometry.ErrDegenerateRay
	}
	return distance, nil
}

// free path inside a chord of length dl, sampled from the exponential
// attenuation truncated to the chord; returns the path and 1-exp(-μ·dl)
func freePath(rng *rand.Rand, mu, dl float64) (path, interaction float64) {
	interaction = -math.Expm1(-mu * dl)
	path = -math.Log1p(-rng.Float64()*interaction) / mu
	return
}

// Walk follows one neutron that scatters order times before leaving towards
// detector. It only reads the model, so walks may run concurrently given
// separate generators.
func (m *Model) Walk(rng *rand.Rand, order int, detector mgl64.Vec3) WalkResult {
	result := WalkResult{Order: order}
	p := m.newParticle(rng)

	dl0, err := m.exitDistance(&p, p.direction)
	if err != nil {
		result.Status = StatusDegenerate
		return result
	}
	mu, albedo, _ := m.coefficients(p.k)
	vl, b9 := freePath(rng, mu, dl0)
	if order == 1 {
		result.Transmission = math.Exp(-mu * dl0)
		result.FirstAttenuation = math.Exp(-mu * vl)
	}
	p.weight = b9 * albedo
	p.collide(vl)

	for range order - 1 {
		deflection, err := m.sampleDeflection(rng, p.k)
		if err != nil {
			result.Status = StatusRetriesExhausted
			return result
		}
		qs := deflection.Q * m.Law.SofQ(deflection.Q)
		p.qs += qs
		p.weight *= qs
		p.redirect(deflection.CosChi, deflection.Phi)

		dl, err := m.exitDistance(&p, p.direction)
		if err != nil {
			result.Status = StatusDegenerate
			return result
		}
		mu, albedo, _ = m.coefficients(p.k)
		path, b := freePath(rng, mu, dl)
		p.weight *= b * albedo
		p.collide(path)
	}

	exit, err := m.exitDistance(&p, detector)
	if err != nil {
		result.Status = StatusDegenerate
		return result
	}
	mu, _, sigmaRatio := m.coefficients(p.k)
	q := p.momentumTransfer(detector)
	contribution := p.weight * math.Exp(-mu*exit) * m.Law.SofQ(q) * sigmaRatio / constants.FourPi
	if !validWeight(contribution) || !validWeight(result.Transmission) {
		result.Status = StatusInvalidWeight
		result.Transmission = 0
		result.FirstAttenuation = 0
		return result
	}
	result.Order = p.order
	result.Contribution = contribution
	result.QS = p.qs
	return result
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0)
}
