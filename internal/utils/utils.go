package utils

import (
	"slices"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Float | constraints.Integer
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

func Average[T Number](s []T) (mean float64) {
	for i := range s {
		mean += float64(s[i])
	}
	mean /= float64(len(s))
	return
}

func MeanAndVariance[T Number](s []T, unbiased bool) (mean, variance float64) {
	mean = Average(s)
	for i := range s {
		variance += (float64(s[i]) - mean) * (float64(s[i]) - mean)
	}
	if unbiased {
		variance /= float64(len(s) - 1)
	} else {
		variance /= float64(len(s))
	}

	return
}

func Variance[T Number](s []T, unbiased bool) float64 {
	_, v := MeanAndVariance(s, unbiased)
	return v
}

// CumulativeTrapezoid returns the running trapezoid integral of a table
// sampled with a constant step; the first element is 0.
func CumulativeTrapezoid(s []float64, multiply func(int) float64, step float64) []float64 {
	integral := make([]float64, len(s))
	value := func(i int) float64 {
		if multiply == nil {
			return s[i]
		}
		return s[i] * multiply(i)
	}
	for i := 1; i < len(s); i++ {
		integral[i] = integral[i-1] + 0.5*step*(value(i-1)+value(i))
	}
	return integral
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}
