package scattering

import (
	"errors"
	"math"
	"testing"
)

func grid(n int, q0, step float64) []float64 {
	q := make([]float64, n)
	for i := range q {
		q[i] = q0 + float64(i)*step
	}
	return q
}

func relativeError(got, want float64) float64 {
	return math.Abs(got-want) / math.Max(math.Abs(want), 1e-300)
}

var water = CrossSections{Coherent: 1, Incoherent: 0.5, Total: 1.5, Absorption: 0.33}

func TestSofQReturnsTableAtGridPoints(t *testing.T) {
	q := grid(100, 0.1, 0.1)
	s := make([]float64, len(q))
	for i := range q {
		s[i] = 1 + 0.5*math.Sin(q[i])
	}
	law, err := New(q, s, water)
	if err != nil {
		t.Fatal(err)
	}
	for i := range q {
		want := (water.Coherent*s[i] + water.Incoherent) / water.Total
		if got := law.SofQ(q[i]); relativeError(got, want) > 1e-9 {
			t.Fatalf("S(%v) = %v, want %v", q[i], got, want)
		}
	}
}

func TestSofQClampsOutsideTable(t *testing.T) {
	q := grid(10, 0.5, 0.25)
	s := []float64{2, 1.5, 1.2, 1, 0.9, 0.95, 1, 1.02, 1.01, 0.7}
	law, err := New(q, s, water)
	if err != nil {
		t.Fatal(err)
	}
	first := (water.Coherent*s[0] + water.Incoherent) / water.Total
	last := (water.Coherent*s[9] + water.Incoherent) / water.Total
	tests := []struct {
		q    float64
		want float64
	}{
		{0, first},
		{0.25, first},
		{law.QMax(), last},
		{law.QMax() + 1e-3, last},
		{100, last},
	}
	for _, tt := range tests {
		if got := law.SofQ(tt.q); relativeError(got, tt.want) > 1e-12 {
			t.Errorf("S(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestSofQPositiveBetweenPoints(t *testing.T) {
	q := grid(20, 0, 0.5)
	s := make([]float64, len(q))
	for i := range q {
		s[i] = 1e-3 + math.Exp(-(q[i]-3)*(q[i]-3))
	}
	law, err := New(q, s, water)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0.; x < 12; x += 0.01 {
		if v := law.SofQ(x); !(v > 0) || math.IsInf(v, 0) {
			t.Fatalf("S(%v) = %v", x, v)
		}
	}
}

func TestSigmaOfKFlatLaw(t *testing.T) {
	q := grid(100, 0.1, 0.1)
	s := make([]float64, len(q))
	for i := range s {
		s[i] = 1
	}
	xs := CrossSections{Coherent: 0.0184, Incoherent: 5.08, Total: 5.0984, Absorption: 5.08}
	law, err := New(q, s, xs)
	if err != nil {
		t.Fatal(err)
	}
	want := xs.Coherent + xs.Incoherent
	for _, k := range []float64{0.05, 0.1, 0.37, 1, 4.99, 5, 7.3, 10, 20} {
		if got := law.SigmaOfK(k); relativeError(got, want) > 1e-9 {
			t.Errorf("σ(%v) = %v, want %v", k, got, want)
		}
	}
	if got := law.SofQ(3.33); relativeError(got, 1) > 1e-9 {
		t.Errorf("S_eff = %v, want 1", got)
	}
}

func TestSigmaOfKPeakedLaw(t *testing.T) {
	// S vanishing at low Q suppresses coherent scattering at small k
	q := grid(200, 0.05, 0.05)
	s := make([]float64, len(q))
	for i := range q {
		s[i] = 1e-4 + 1 - math.Exp(-q[i]*q[i])
	}
	xs := CrossSections{Coherent: 2, Incoherent: 0, Total: 2}
	law, err := New(q, s, xs)
	if err != nil {
		t.Fatal(err)
	}
	small, large := law.SigmaOfK(0.1), law.SigmaOfK(9)
	if !(small < large) || !(large < xs.Coherent) {
		t.Fatalf("σ(0.1) = %v, σ(9) = %v", small, large)
	}
	if relativeError(large, xs.Coherent) > 0.02 {
		t.Fatalf("σ(9) = %v, expected close to %v", large, xs.Coherent)
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	uniform := grid(5, 0.1, 0.1)
	ones := []float64{1, 1, 1, 1, 1}
	tests := []struct {
		name string
		q, s []float64
		xs   CrossSections
		want error
	}{
		{"too short", uniform[:2], ones[:2], water, ErrInvalidTable},
		{"length mismatch", uniform, ones[:4], water, ErrInvalidTable},
		{"decreasing", []float64{0.5, 0.4, 0.3, 0.2, 0.1}, ones, water, ErrInvalidTable},
		{"repeated", []float64{0.1, 0.2, 0.2, 0.3, 0.5}, ones, water, ErrInvalidTable},
		{"non-uniform", []float64{0.1, 0.2, 0.35, 0.4, 0.5}, ones, water, ErrInvalidTable},
		{"negative Q", grid(5, -0.2, 0.1), ones, water, ErrInvalidTable},
		{"NaN Q", []float64{0.1, 0.2, math.NaN(), 0.4, 0.5}, ones, water, ErrInvalidTable},
		{"infinite Q", []float64{0.1, 0.2, 0.3, 0.4, math.Inf(1)}, ones, water, ErrInvalidTable},
		{"zero S", uniform, []float64{1, 0, 1, 1, 1}, water, ErrInvalidTable},
		{"NaN S", uniform, []float64{1, 1, math.NaN(), 1, 1}, water, ErrInvalidTable},
		{"negative coherent", uniform, ones, CrossSections{Coherent: -1, Incoherent: 1, Total: 1}, ErrInvalidCrossSection},
		{"no scattering", uniform, ones, CrossSections{Total: 1, Absorption: 1}, ErrInvalidCrossSection},
		{"zero total", uniform, ones, CrossSections{Coherent: 1}, ErrInvalidCrossSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.q, tt.s, tt.xs)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewCopiesTable(t *testing.T) {
	q := grid(5, 0.1, 0.1)
	law, err := New(q, []float64{1, 2, 3, 2, 1}, water)
	if err != nil {
		t.Fatal(err)
	}
	q[0] = 100
	if law.QMin() != 0.1 || law.Len() != 5 || math.Abs(law.DeltaQ()-0.1) > 1e-12 {
		t.Fatalf("QMin %v, Len %d, DeltaQ %v", law.QMin(), law.Len(), law.DeltaQ())
	}
}
