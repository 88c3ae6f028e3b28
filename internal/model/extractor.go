package model

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/wildstyl3r/msmc/internal/constants"
	"github.com/wildstyl3r/msmc/internal/utils"
)

// Point is one cell of a result curve. Missing marks a cell no walk contributed to.
type Point struct {
	X       float64
	Y       float64
	Error   float64 // 95% half-width, 0 when not estimated
	Missing bool
}

type Curve struct {
	Order   int
	ByAngle []Point // X: scattering angle [deg]
	ByQ     []Point // X: Q [Å^-1]
}

type Result struct {
	Wavelength float64
	Curves     []Curve // orders 0..ScatteringOrders
	Totals     [constants.MaxScatteringOrder + 1]OrderSum

	AttenuationToFirstScatter float64
	Warnings                  []string
	Elapsed                   time.Duration

	firstAttenuation      float64
	firstAttenuationWalks int
}

func newResult(m *Model) *Result {
	r := &Result{
		Wavelength: m.Parameters.Wavelength,
		Curves:     make([]Curve, m.Parameters.ScatteringOrders+1),
	}
	for order := range r.Curves {
		r.Curves[order] = Curve{
			Order:   order,
			ByAngle: make([]Point, len(m.Angles)),
			ByQ:     make([]Point, len(m.Angles)),
		}
	}
	return r
}

func (r *Result) record(index int, theta float64, acc *Accumulator, estimates [2][]float64) {
	degrees := theta * 180. / math.Pi
	q := MomentumTransfer(theta, r.Wavelength)
	for order := range r.Curves {
		value, ok := acc.Normalize(order)
		var confidence float64
		if order < len(estimates) && len(estimates[order]) > 1 {
			confidence = constants.Quantile95 * math.Sqrt(utils.Variance(estimates[order], true)/float64(len(estimates[order])))
		}
		r.Curves[order].ByAngle[index] = Point{X: degrees, Y: value, Error: confidence, Missing: !ok}
		r.Curves[order].ByQ[index] = Point{X: q, Y: value, Error: confidence, Missing: !ok}
	}
	for order := range r.Totals {
		r.Totals[order].merge(&acc.Orders[order])
	}
	r.firstAttenuation += acc.FirstAttenuation
	r.firstAttenuationWalks += acc.FirstAttenuationWalks
}

func (r *Result) finish(elapsed time.Duration) {
	if r.firstAttenuationWalks > 0 {
		r.AttenuationToFirstScatter = r.firstAttenuation / float64(r.firstAttenuationWalks)
	}
	r.Elapsed = elapsed
}

// Discarded counts walks of every order that were dropped.
func (r *Result) Discarded() int {
	counts := make([]int, 0, len(r.Totals))
	for order := 1; order < len(r.Totals); order++ {
		counts = append(counts, r.Totals[order].Discarded())
	}
	return utils.SumSlice(counts)
}

func (r *Result) Walks() int {
	counts := make([]int, 0, len(r.Totals))
	for order := 1; order < len(r.Totals); order++ {
		counts = append(counts, r.Totals[order].Walks)
	}
	return utils.SumSlice(counts)
}

// Missing counts the cells without a contribution.
func (r *Result) Missing() (missing int) {
	for _, curve := range r.Curves {
		for _, p := range curve.ByAngle {
			if p.Missing {
				missing++
			}
		}
	}
	return
}

var SummaryColumns = []string{"model", "attenuation to first scatter", "walks", "discarded", "missing cells", "warnings", "elapsed (s)"}

func (r *Result) SummaryRow(modelName string) []string {
	return []string{
		modelName,
		strconv.FormatFloat(r.AttenuationToFirstScatter, 'f', -1, 64),
		strconv.Itoa(r.Walks()),
		strconv.Itoa(r.Discarded()),
		strconv.Itoa(r.Missing()),
		strconv.Itoa(len(r.Warnings)),
		strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 3, 64),
	}
}

func formatPoint(p Point) []string {
	x := strconv.FormatFloat(p.X, 'f', -1, 64)
	if p.Missing {
		return []string{x, "", ""}
	}
	return []string{x, strconv.FormatFloat(p.Y, 'g', -1, 64), strconv.FormatFloat(p.Error, 'g', -1, 64)}
}

// Save writes every selected curve of every order.
func (r *Result) Save(modelName string, df DataFlags, makeDir bool) error {
	for name, output := range df.sequentials {
		if !*output.saveFlag && !*df.all {
			continue
		}
		for _, curve := range r.Curves {
			suffix := fmt.Sprintf("%s_o%d", output.fileSuffix, curve.Order)
			file, err := utils.OpenFile(makeDir, df.outputPath, suffix, modelName)
			if err != nil {
				return fmt.Errorf("unable to save %s: %w", name, err)
			}
			rows := [][]string{output.columnNames}
			for _, p := range output.values(curve) {
				rows = append(rows, formatPoint(p))
			}
			w := csv.NewWriter(file)
			err = w.WriteAll(rows)
			file.Close()
			if err != nil {
				return fmt.Errorf("error writing csv: %w", err)
			}
		}
	}
	return nil
}
