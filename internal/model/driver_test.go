package model

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, m *Model) *Result {
	t.Helper()
	d := NewDriver(m)
	d.SetLog(new(bytes.Buffer))
	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestRunVanadiumSlab(t *testing.T) {
	m := newTestModel(t, testParameters())
	result := run(t, m)

	if len(result.Curves) != 3 {
		t.Fatalf("%d curves, want orders 0..2", len(result.Curves))
	}
	for _, curve := range result.Curves {
		for i, p := range curve.ByAngle {
			if p.Missing {
				t.Fatalf("order %d angle %d missing", curve.Order, i)
			}
			if math.IsNaN(p.Y) || p.Y < 0 {
				t.Fatalf("order %d angle %d: %v", curve.Order, i, p.Y)
			}
			if curve.ByQ[i].Y != p.Y {
				t.Fatalf("order %d: Q and angle curves disagree at %d", curve.Order, i)
			}
		}
	}
	single, double := result.Curves[1].ByAngle, result.Curves[2].ByAngle
	for i := range single {
		if !(double[i].Y < single[i].Y) {
			t.Fatalf("angle %d: double scattering %v not below single %v", i, double[i].Y, single[i].Y)
		}
	}
	if !(single[0].Y > single[len(single)-1].Y) {
		t.Fatalf("single scattering does not fall with angle: %v .. %v", single[0].Y, single[len(single)-1].Y)
	}
	if !(result.AttenuationToFirstScatter > 0 && result.AttenuationToFirstScatter < 1) {
		t.Fatalf("attenuation to first scatter %v", result.AttenuationToFirstScatter)
	}
	if result.Walks() != 10*(1000+1000) || result.Discarded() != 0 || result.Missing() != 0 {
		t.Fatalf("walks %d, discarded %d, missing %d", result.Walks(), result.Discarded(), result.Missing())
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("warnings: %v", result.Warnings)
	}
}

func TestRunIndependentOfThreads(t *testing.T) {
	p := testParameters()
	p.NumberOfAngles = 3
	p.ScatteringOrders = 3
	p.NeutronsSingle = 700
	p.NeutronsMultiple = 500
	p.CalculateStdError = true

	var results []*Result
	for _, threads := range []int{1, 4} {
		p.SetThreads(threads)
		results = append(results, run(t, newTestModel(t, p)))
	}
	for order := range results[0].Curves {
		for i, want := range results[0].Curves[order].ByAngle {
			if got := results[1].Curves[order].ByAngle[i]; got != want {
				t.Fatalf("order %d angle %d: %+v with 4 threads, %+v with 1", order, i, got, want)
			}
		}
	}
	if results[0].Curves[1].ByAngle[0].Error <= 0 {
		t.Fatal("no confidence interval estimated")
	}

	p.Seed = 2
	other := run(t, newTestModel(t, p))
	if other.Curves[1].ByAngle[0] == results[0].Curves[1].ByAngle[0] {
		t.Fatal("seed has no effect")
	}
}

func TestRunWarnsOnDiscards(t *testing.T) {
	p := testParameters()
	p.Wavelength = 120
	p.AbsorptionXSection = 0
	p.SetSofQData(sparseTable())
	p.NumberOfAngles = 1
	p.NeutronsSingle = 64
	p.NeutronsMultiple = 64
	m := newTestModel(t, p)

	var log bytes.Buffer
	d := NewDriver(m)
	d.SetLog(&log)
	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(log.String(), "order 2") {
		t.Fatalf("warnings %v, log %q", result.Warnings, log.String())
	}
	if result.Discarded() != 64 || result.Totals[2].RetriesExhausted != 64 {
		t.Fatalf("discarded %d", result.Discarded())
	}
	if !result.Curves[2].ByAngle[0].Missing || result.Missing() != 1 {
		t.Fatalf("missing cells %d", result.Missing())
	}
}

func TestRunCancelled(t *testing.T) {
	m := newTestModel(t, testParameters())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDriver(m).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestSave(t *testing.T) {
	p := testParameters()
	p.NumberOfAngles = 4
	p.ScatteringOrders = 1
	p.NeutronsSingle = 200
	result := run(t, newTestModel(t, p))
	result.Curves[1].ByAngle[2].Missing = true

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	df := NewDataFlags(fs)
	if err := fs.Parse([]string{"-q=false"}); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	df.SetOutputPath(dir)
	if err := result.Save("vanadium", df, false); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"vanadium_theta_o0.txt", "vanadium_theta_o1.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "vanadium_q_o1.txt")); !os.IsNotExist(err) {
		t.Fatalf("Q curve written although disabled: %v", err)
	}

	file, err := os.Open(filepath.Join(dir, "vanadium_theta_o1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 || rows[0][0] != "2theta (deg)" {
		t.Fatalf("rows %v", rows)
	}
	if rows[3][1] != "" || rows[1][1] == "" {
		t.Fatalf("missing cell not left empty: %v", rows)
	}

	if err := result.Save("vanadium", df, true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "theta_o1", "vanadium.txt")); err != nil {
		t.Fatal(err)
	}
}
