package utils

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestReadFloatPairs(t *testing.T) {
	name := filepath.Join(t.TempDir(), "sofq.dat")
	content := "# vanadium\n\n0.1 1.0\n  0.2\t1.5  \n0.3 2e-1\n"
	if err := os.WriteFile(name, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	pairs, err := ReadFloatPairs(name)
	if err != nil {
		t.Fatal(err)
	}
	q, s := SplitPairs(pairs)
	if !slices.Equal(q, []float64{0.1, 0.2, 0.3}) || !slices.Equal(s, []float64{1, 1.5, 0.2}) {
		t.Fatalf("got %v %v", q, s)
	}
}

func TestReadFloatPairsErrors(t *testing.T) {
	for _, content := range []string{"0.1 1 2\n", "0.1 x\n", "0.1\n"} {
		name := filepath.Join(t.TempDir(), "bad.dat")
		if err := os.WriteFile(name, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFloatPairs(name); err == nil {
			t.Errorf("%q: no error", content)
		}
	}
	if _, err := ReadFloatPairs(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("missing file: no error")
	}
}

func TestWriteAsCSV(t *testing.T) {
	dir := t.TempDir()
	data := CSV{{"run10", "c"}, {"run2", "b"}, {"run1", "a"}}
	if err := WriteAsCSV(data, dir, "", "summary", []string{"model", "value"}); err != nil {
		t.Fatal(err)
	}
	file, err := os.Open(filepath.Join(dir, "summary.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, row := range rows {
		names = append(names, row[0])
	}
	if !slices.Equal(names, []string{"model", "run1", "run2", "run10"}) {
		t.Fatalf("rows in order %v", names)
	}
}

func TestStatistics(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	mean, variance := MeanAndVariance(s, true)
	if mean != 2.5 || math.Abs(variance-5./3.) > 1e-15 {
		t.Fatalf("mean %v, variance %v", mean, variance)
	}
	if v := Variance(s, false); v != 1.25 {
		t.Fatalf("biased variance %v", v)
	}
	if SumSlice([]int{1, 2, 3}) != 6 {
		t.Fatal("sum")
	}
}

func TestCumulativeTrapezoid(t *testing.T) {
	// ∫ Q dQ is exact for the trapezoid rule
	q := []float64{0, 0.5, 1, 1.5, 2}
	ones := []float64{1, 1, 1, 1, 1}
	integral := CumulativeTrapezoid(ones, func(i int) float64 { return q[i] }, 0.5)
	for i := range q {
		if math.Abs(integral[i]-0.5*q[i]*q[i]) > 1e-15 {
			t.Fatalf("∫ up to %v = %v", q[i], integral[i])
		}
	}
	if plain := CumulativeTrapezoid(ones, nil, 0.5); plain[4] != 2 {
		t.Fatalf("∫ 1 = %v", plain[4])
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	for _, tt := range []struct {
		makeDir bool
		suffix  string
		want    string
	}{
		{false, "", "run.txt"},
		{false, "theta_o1", "run_theta_o1.txt"},
		{true, "theta_o1", filepath.Join("theta_o1", "run.txt")},
	} {
		file, err := OpenFile(tt.makeDir, dir, tt.suffix, "run")
		if err != nil {
			t.Fatal(err)
		}
		file.Close()
		if _, err := os.Stat(filepath.Join(dir, tt.want)); err != nil {
			t.Fatal(err)
		}
	}
}
