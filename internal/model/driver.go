package model

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/time/rate"
)

// Driver runs the walks of every detector angle and scattering order.
type Driver struct {
	model   *Model
	threads int
	verbose bool
	log     io.Writer

	progress *rate.Sometimes
	chunks   atomic.Int64
}

func NewDriver(m *Model) *Driver {
	threads := m.Parameters.Threads()
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &Driver{
		model:    m,
		threads:  threads,
		verbose:  m.Parameters.Verbose(),
		log:      os.Stderr,
		progress: &rate.Sometimes{Interval: 200 * time.Millisecond},
	}
}

// SetLog redirects warnings, stderr by default.
func (d *Driver) SetLog(w io.Writer) {
	d.log = w
}

func (d *Driver) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	m := d.model
	parameters := m.Parameters
	result := newResult(m)

	var acc Accumulator
	for i, theta := range m.Angles {
		acc.Reset()
		detector := Detector(theta)

		partials, err := d.batch(ctx, i, 1, parameters.NeutronsSingle, detector)
		if err != nil {
			return nil, err
		}
		var estimates [2][]float64
		for c := range partials {
			acc.Merge(&partials[c])
			if parameters.CalculateStdError {
				for order := range estimates {
					if v, ok := partials[c].Normalize(order); ok {
						estimates[order] = append(estimates[order], v)
					}
				}
			}
		}
		d.checkDiscards(result, theta, 1, &acc.Orders[1])

		for order := 2; order <= parameters.ScatteringOrders; order++ {
			partials, err := d.batch(ctx, i, order, parameters.NeutronsMultiple, detector)
			if err != nil {
				return nil, err
			}
			for c := range partials {
				acc.Merge(&partials[c])
			}
			d.checkDiscards(result, theta, order, &acc.Orders[order])
		}

		result.record(i, theta, &acc, estimates)
	}
	if d.verbose {
		print("\r")
	}
	result.finish(time.Since(startTime))
	return result, nil
}

// batch runs walks for one angle and order in chunks over the workers and
// returns the chunk partials in chunk order.
func (d *Driver) batch(ctx context.Context, angle, order, walks int, detector mgl64.Vec3) ([]Accumulator, error) {
	nChunks := (walks + chunkSize - 1) / chunkSize
	partials := make([]Accumulator, nChunks)
	seed := d.model.Parameters.Seed

	jobs := make(chan int, nChunks)
	var wg sync.WaitGroup
	for range min(d.threads, nChunks) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				if ctx.Err() != nil {
					continue
				}
				rng := newStream(seed, angle, order, c)
				n := min(chunkSize, walks-c*chunkSize)
				for range n {
					partials[c].Add(d.model.Walk(rng, order, detector))
				}
				if d.verbose {
					d.progress.Do(d.spin)
				}
			}
		}()
	}

feed:
	for c := range nChunks {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return partials, nil
}

var status = []string{"//", "==", "\\\\", "||"}

func (d *Driver) spin() {
	counter := d.chunks.Add(1)
	print("\r" + status[counter&0b11])
}

func (d *Driver) checkDiscards(result *Result, theta float64, order int, s *OrderSum) {
	if s.Walks == 0 {
		return
	}
	fraction := float64(s.Discarded()) / float64(s.Walks)
	if fraction > d.model.Parameters.DiscardWarningFraction {
		warning := fmt.Sprintf("angle %.3f°, order %d: %d of %d walks discarded (degenerate %d, retries exhausted %d, invalid weight %d); geometry or wavelength is likely pathological",
			theta*180./math.Pi, order, s.Discarded(), s.Walks, s.Degenerate, s.RetriesExhausted, s.InvalidWeight)
		result.Warnings = append(result.Warnings, warning)
		fmt.Fprintln(d.log, "warning: "+warning)
	}
}
