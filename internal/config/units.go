package config

import "github.com/wildstyl3r/msmc/internal/utils"

// internal units: lengths in cm, wavelengths in Å
var unitToInternal = map[string]float64{
	"m":  1e2,
	"cm": 1,
	"mm": 1e-1,
	"nm": 10,
	"A":  1,
}

type UnitClass int

const (
	Length UnitClass = iota
	Wavelength
)

var unitsInClass = map[UnitClass][]string{
	Length:     {"mm", "cm", "m"},
	Wavelength: {"A", "nm"},
}

var classesOfUnits = map[string]UnitClass{
	"m":  Length,
	"cm": Length,
	"mm": Length,
	"A":  Wavelength,
	"nm": Wavelength,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// Internal converts v expressed in units to the internal units (direct)
// or back (!direct).
func Internal(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		power := uc.Power
		if !direct {
			power = -power
		}
		for ; power > 0; power-- {
			v *= unitToInternal[*unit]
		}
		for ; power < 0; power++ {
			v /= unitToInternal[*unit]
		}
	}
	return v
}
