package model

import (
	"math"

	"github.com/wildstyl3r/msmc/internal/constants"
)

type OrderSum struct {
	Total        float64 // Σ contributions
	QSSum        float64 // Σ Q·S(Q) over intermediate deflections
	Walks        int
	Contributing int

	Degenerate       int
	RetriesExhausted int
	InvalidWeight    int
}

func (s *OrderSum) Discarded() int {
	return s.Degenerate + s.RetriesExhausted + s.InvalidWeight
}

// Accepted walks are the ones normalisation counts.
func (s *OrderSum) Accepted() int {
	return s.Walks - s.Discarded()
}

func (s *OrderSum) merge(o *OrderSum) {
	s.Total += o.Total
	s.QSSum += o.QSSum
	s.Walks += o.Walks
	s.Contributing += o.Contributing
	s.Degenerate += o.Degenerate
	s.RetriesExhausted += o.RetriesExhausted
	s.InvalidWeight += o.InvalidWeight
}

func (s *OrderSum) discard(status WalkStatus) {
	switch status {
	case StatusDegenerate:
		s.Degenerate++
	case StatusRetriesExhausted:
		s.RetriesExhausted++
	case StatusInvalidWeight:
		s.InvalidWeight++
	}
}

// Accumulator collects walk results for one detector angle. Order 0 (the
// unscattered beam) is fed by the single-scattering walks.
type Accumulator struct {
	Orders [constants.MaxScatteringOrder + 1]OrderSum

	FirstAttenuation      float64
	FirstAttenuationWalks int
}

func (a *Accumulator) Add(r WalkResult) {
	if r.Order < 1 || r.Order > constants.MaxScatteringOrder {
		return
	}
	s := &a.Orders[r.Order]
	s.Walks++
	if r.Order == 1 {
		a.Orders[0].Walks++
	}
	if r.Status != StatusOK {
		s.discard(r.Status)
		if r.Order == 1 {
			a.Orders[0].discard(r.Status)
		}
		return
	}
	s.Total += r.Contribution
	s.QSSum += r.QS
	if r.Contribution > 0 {
		s.Contributing++
	}
	if r.Order == 1 {
		a.Orders[0].Total += r.Transmission
		if r.Transmission > 0 {
			a.Orders[0].Contributing++
		}
		a.FirstAttenuation += r.FirstAttenuation
		a.FirstAttenuationWalks++
	}
}

// Merge is plain summation, so partial accumulators can be combined in any grouping.
func (a *Accumulator) Merge(b *Accumulator) {
	for o := range a.Orders {
		a.Orders[o].merge(&b.Orders[o])
	}
	a.FirstAttenuation += b.FirstAttenuation
	a.FirstAttenuationWalks += b.FirstAttenuationWalks
}

func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Normalize turns the sums of one order into an intensity. ok is false when
// nothing contributed.
//
// Orders 0 and 1 are averaged over the walks. From order 2 the intermediate
// deflections are importance weighted by Q·S(Q), so the sum is divided by
// the mean Q·S(Q) to the power of the number of deflections m = order-1:
// Total·(m·N)^m/(N·QSSum^m), i.e. 1, 4·N, 27·N², 16²·N³ over QSSum^m.
func (a *Accumulator) Normalize(order int) (float64, bool) {
	if order < 0 || order > constants.MaxScatteringOrder {
		return 0, false
	}
	s := &a.Orders[order]
	n := float64(s.Accepted())
	if s.Contributing == 0 || n == 0 {
		return 0, false
	}
	if order <= 1 {
		return s.Total / n, true
	}
	qs := s.QSSum
	if !(qs > 0) {
		return 0, false
	}
	var value float64
	switch order {
	case 2:
		value = s.Total / qs
	case 3:
		value = s.Total * 4. * n / (qs * qs)
	case 4:
		value = s.Total * 27. * n * n / (qs * qs * qs)
	case 5:
		value = s.Total * 16. * 16. * n * n * n / (qs * qs * qs * qs)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// AttenuationToFirstScatter is the mean exp(-μ·vl) over accepted single-scattering walks.
func (a *Accumulator) AttenuationToFirstScatter() float64 {
	if a.FirstAttenuationWalks == 0 {
		return 0
	}
	return a.FirstAttenuation / float64(a.FirstAttenuationWalks)
}
