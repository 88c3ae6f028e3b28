package model

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wildstyl3r/msmc/internal/config"
	"github.com/wildstyl3r/msmc/internal/constants"
	"github.com/wildstyl3r/msmc/internal/geometry"
	"github.com/wildstyl3r/msmc/internal/scattering"
	"github.com/wildstyl3r/msmc/internal/utils"
)

// Model is the immutable simulation setup shared by every walk.
type Model struct {
	Parameters config.ModelParameters
	Geometry   *geometry.Geometry
	Law        *scattering.Law

	k            float64 // incident wavenumber [Å^-1]
	muScattering float64 // [cm^-1]
	muAbsorption float64 // [cm^-1]
	mu           float64 // [cm^-1]
	albedo       float64
	sigmaRatio   float64 // σ_total / σ_s(k)

	Angles []float64 // detector angles [rad]
}

func NewModel(parameters config.ModelParameters) (*Model, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	g, err := parameters.Geometry()
	if err != nil {
		return nil, err
	}
	q, s := utils.SplitPairs(parameters.SofQData())
	law, err := scattering.New(q, s, scattering.CrossSections{
		Coherent:   parameters.CoherentXSection,
		Incoherent: parameters.IncoherentXSection,
		Total:      parameters.TotalXSection,
		Absorption: parameters.AbsorptionXSection,
	})
	if err != nil {
		return nil, &config.ParameterError{Parameter: "SofQ", Err: err}
	}
	if law.QMin()*parameters.Wavelength >= constants.FourPi {
		return nil, &config.ParameterError{
			Parameter: "Wavelength",
			Reason:    fmt.Sprintf("%v Å cannot reach the tabulated Q from %v Å^-1 (limit 4π/λ = %v Å^-1)", parameters.Wavelength, law.QMin(), constants.FourPi/parameters.Wavelength),
		}
	}

	m := &Model{
		Parameters: parameters,
		Geometry:   g,
		Law:        law,
		k:          2. * math.Pi / parameters.Wavelength,
	}
	m.muAbsorption = parameters.NumberDensity * parameters.AbsorptionXSection * parameters.Wavelength / constants.ReferenceWavelength
	m.mu, m.albedo, m.sigmaRatio = m.coefficients(m.k)
	m.muScattering = m.mu - m.muAbsorption
	m.Angles = detectorAngles(law.QMin(), law.QMax(), parameters.Wavelength, parameters.NumberOfAngles)

	if parameters.Verbose() {
		fmt.Printf("Mean free path: %f cm\n", 1./m.mu)
		fmt.Printf("Scattering fraction: %f\n", m.albedo)
	}
	return m, nil
}

// coefficients returns the total attenuation [cm^-1], the scattering
// fraction and σ_total/σ_s at wavenumber k.
func (m *Model) coefficients(k float64) (mu, albedo, sigmaRatio float64) {
	if k == m.k && m.mu > 0 {
		return m.mu, m.albedo, m.sigmaRatio
	}
	sigma := m.Law.SigmaOfK(k)
	muScattering := m.Parameters.NumberDensity * sigma
	mu = muScattering + m.muAbsorption
	return mu, muScattering / mu, m.Parameters.TotalXSection / sigma
}

func (m *Model) Wavenumber() float64 {
	return m.k
}

func (m *Model) Attenuation() float64 {
	return m.mu
}

func (m *Model) MeanFreePath() float64 {
	return 1. / m.mu
}

// Angular range reachable by the tabulated Q, split into n bins; the bin
// centres are the detector angles.
func detectorAngles(qMin, qMax, wavelength float64, n int) []float64 {
	from := 2. * math.Asin(math.Min(1., qMin*wavelength/constants.FourPi))
	to := 2. * math.Asin(math.Min(1., qMax*wavelength/constants.FourPi))
	step := (to - from) / float64(n)
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = from + (float64(i)+0.5)*step
	}
	return angles
}

// Detector is the unit direction towards a detector at angle theta in the x–z plane.
func Detector(theta float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(theta), 0, math.Cos(theta)}
}

func MomentumTransfer(theta, wavelength float64) float64 {
	return math.Sin(0.5*theta) * constants.FourPi / wavelength
}
