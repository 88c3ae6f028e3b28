package scattering

import (
	"errors"
	"fmt"
	"math"

	"github.com/wildstyl3r/msmc/internal/utils"
)

var ErrInvalidTable = errors.New("invalid scattering-law table")
var ErrInvalidCrossSection = errors.New("invalid cross section")

// relative deviation tolerated between consecutive Q steps
const uniformityTolerance = 1e-6

// CrossSections of the sample material, all in barn.
type CrossSections struct {
	Coherent   float64
	Incoherent float64
	Total      float64
	Absorption float64 // at constants.ReferenceWavelength
}

// Law holds ln S_eff(Q) with S_eff = (σ_coh·S(Q) + σ_inc)/σ_total and
// ln σ_s(k) on the same uniform grid. Read-only after New.
type Law struct {
	q        []float64
	logS     []float64
	logSigma []float64
	deltaQ   float64
	xs       CrossSections
}

func New(q, s []float64, xs CrossSections) (*Law, error) {
	if len(q) != len(s) {
		return nil, fmt.Errorf("%w: %d Q values for %d S(Q) values", ErrInvalidTable, len(q), len(s))
	}
	if len(q) < 3 {
		return nil, fmt.Errorf("%w: at least 3 points required, got %d", ErrInvalidTable, len(q))
	}
	if err := xs.validate(); err != nil {
		return nil, err
	}
	if q[0] < 0 || math.IsNaN(q[0]) {
		return nil, fmt.Errorf("%w: negative first Q value %v", ErrInvalidTable, q[0])
	}
	deltaQ := (q[len(q)-1] - q[0]) / float64(len(q)-1)
	if !(deltaQ > 0) || math.IsInf(deltaQ, 0) {
		return nil, fmt.Errorf("%w: Q values are not increasing", ErrInvalidTable)
	}
	for i := range q {
		if math.IsNaN(q[i]) || math.IsInf(q[i], 0) {
			return nil, fmt.Errorf("%w: Q value %v at index %d", ErrInvalidTable, q[i], i)
		}
		if i > 0 {
			step := q[i] - q[i-1]
			if !(step > 0) {
				return nil, fmt.Errorf("%w: Q not increasing at index %d (%v after %v)", ErrInvalidTable, i, q[i], q[i-1])
			}
			if math.Abs(step-deltaQ) > uniformityTolerance*math.Max(deltaQ, q[i]) {
				return nil, fmt.Errorf("%w: non-uniform Q spacing at index %d", ErrInvalidTable, i)
			}
		}
		if !(s[i] > 0) || math.IsInf(s[i], 0) {
			return nil, fmt.Errorf("%w: S(Q) must be positive, got %v at Q=%v", ErrInvalidTable, s[i], q[i])
		}
	}

	l := &Law{
		q:        append([]float64(nil), q...),
		logS:     make([]float64, len(q)),
		logSigma: make([]float64, len(q)),
		deltaQ:   deltaQ,
		xs:       xs,
	}
	for i := range s {
		l.logS[i] = math.Log((xs.Coherent*s[i] + xs.Incoherent) / xs.Total)
	}

	// ∫ S(Q)·Q dQ from Q₀ on the grid; below Q₀ S is taken as S(Q₀)
	below := 0.5 * s[0] * q[0] * q[0]
	integral := utils.CumulativeTrapezoid(s, func(i int) float64 { return q[i] }, deltaQ)
	for i, k := range q {
		sigma := xs.Coherent*s[0] + xs.Incoherent
		if k > 0 {
			sigma = xs.Coherent*l.momentIntegral(2.*k, s, integral, below)/(2.*k*k) + xs.Incoherent
		}
		l.logSigma[i] = math.Log(sigma)
	}
	return l, nil
}

func (xs CrossSections) validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"coherent", xs.Coherent},
		{"incoherent", xs.Incoherent},
		{"absorption", xs.Absorption},
	} {
		if v.value < 0 || math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s cross section %v", ErrInvalidCrossSection, v.name, v.value)
		}
	}
	if !(xs.Coherent+xs.Incoherent > 0) {
		return fmt.Errorf("%w: coherent and incoherent cross sections are both zero", ErrInvalidCrossSection)
	}
	if !(xs.Total > 0) || math.IsInf(xs.Total, 0) {
		return fmt.Errorf("%w: total cross section %v", ErrInvalidCrossSection, xs.Total)
	}
	return nil
}

// ∫₀^upper S(Q)·Q dQ, S = 1 beyond the table
func (l *Law) momentIntegral(upper float64, s, integral []float64, below float64) float64 {
	n := len(l.q)
	if upper <= l.q[0] {
		return 0.5 * s[0] * upper * upper
	}
	if upper >= l.q[n-1] {
		return below + integral[n-1] + 0.5*(upper*upper-l.q[n-1]*l.q[n-1])
	}
	i := min(int((upper-l.q[0])/l.deltaQ), n-2)
	u := (upper - l.q[i]) / l.deltaQ
	f0 := s[i] * l.q[i]
	fu := (s[i] + u*(s[i+1]-s[i])) * upper
	return below + integral[i] + 0.5*(upper-l.q[i])*(f0+fu)
}

// SofQ returns the normalised scattering law, clamped to the end values
// outside the table.
func (l *Law) SofQ(q float64) float64 {
	return math.Exp(l.interpolate(l.logS, q))
}

// SigmaOfK returns the total scattering cross section [barn] at wavenumber k [Å⁻¹].
func (l *Law) SigmaOfK(k float64) float64 {
	return math.Exp(l.interpolate(l.logSigma, k))
}

// Quadratic through the bin's left point and the next two, as A·u² + B·u + C
// with u the fractional offset in the bin. The last bin reuses the final three points.
func (l *Law) interpolate(table []float64, x float64) float64 {
	n := len(table)
	if !(x > l.q[0]) {
		return table[0]
	}
	if x >= l.q[n-1] {
		return table[n-1]
	}
	i := min(int((x-l.q[0])/l.deltaQ), n-3)
	u := (x - l.q[i]) / l.deltaQ
	y0, y1, y2 := table[i], table[i+1], table[i+2]
	a := 0.5 * (y0 - 2.*y1 + y2)
	b := 0.5 * (-3.*y0 + 4.*y1 - y2)
	return math.FMA(math.FMA(a, u, b), u, y0)
}

func (l *Law) QMin() float64 {
	return l.q[0]
}

func (l *Law) QMax() float64 {
	return l.q[len(l.q)-1]
}

func (l *Law) DeltaQ() float64 {
	return l.deltaQ
}

func (l *Law) Len() int {
	return len(l.q)
}

func (l *Law) CrossSections() CrossSections {
	return l.xs
}
