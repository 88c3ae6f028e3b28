package constants

import "math"

const ReferenceWavelength float64 = 1.7982 // [Å] 2200 m/s, absorption cross sections are quoted here
const FourPi float64 = 4. * math.Pi
const Quantile95 = 1.96

const MaxScatteringOrder = 5
const MaxDeflectionAttempts = 1000
