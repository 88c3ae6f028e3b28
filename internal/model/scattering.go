package model

import (
	"errors"
	"math"
	"math/rand"

	"github.com/wildstyl3r/msmc/internal/constants"
)

var ErrRetriesExhausted = errors.New("deflection sampling retries exhausted")

type Deflection struct {
	Q      float64 // [Å^-1]
	CosChi float64
	Phi    float64
}

// sampleDeflection draws Q uniformly on [0, Q_max] and rejects values that
// elastic scattering at wavenumber k cannot reach.
func (m *Model) sampleDeflection(rng *rand.Rand, k float64) (Deflection, error) {
	qMax := m.Law.QMax()
	for range constants.MaxDeflectionAttempts {
		q := rng.Float64() * qMax
		cosChi := 1. - q*q/(2.*k*k)
		if cosChi > -1. && cosChi < 1. {
			return Deflection{
				Q:      q,
				CosChi: cosChi,
				Phi:    2. * math.Pi * rng.Float64(),
			}, nil
		}
	}
	return Deflection{}, ErrRetriesExhausted
}
