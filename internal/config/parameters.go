package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/facette/natsort"
	"github.com/wildstyl3r/msmc/internal/constants"
	"github.com/wildstyl3r/msmc/internal/geometry"
	"github.com/wildstyl3r/msmc/internal/utils"
)

var ErrInvalidParameter = errors.New("invalid parameter")

// ParameterError is a configuration mistake detected before any simulation work.
type ParameterError struct {
	Parameter string
	Reason    string
	Err       error
}

func (e *ParameterError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("parameter %s: %s: %v", e.Parameter, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("parameter %s: %v", e.Parameter, e.Err)
	}
	return fmt.Sprintf("parameter %s: %s", e.Parameter, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

type Config struct {
	OutputDir string
	Models    map[string]ModelParameters
	ModelParameters
	InputUnits []string
}

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.DecodeFile(strings.TrimSuffix(configFileName, ".toml")+".toml", &config)
	if err != nil {
		return config, meta, fmt.Errorf("unable to load config: %w", err)
	}

	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return config, meta, &ParameterError{Parameter: "InputUnits", Reason: fmt.Sprintf("unit conflict %v", unitsConflict)}
	}
	if len(config.Models) == 0 {
		return config, meta, &ParameterError{Parameter: "Models", Reason: "no models provided"}
	}
	return config, meta, nil
}

// ModelNames lists the configured runs in natural order.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	natsort.Sort(names)
	return names
}

type ModelParameters struct {
	SofQ                   string  // two columns: Q [Å^-1], S(Q)
	Shape                  string  // Flat | Cylinder
	Thickness              float64 // [cm]
	Width                  float64 // [cm]
	Height                 float64 // [cm]
	Wavelength             float64 // [Å]
	CoherentXSection       float64 // [barn]
	IncoherentXSection     float64 // [barn]
	TotalXSection          float64 // [barn]
	AbsorptionXSection     float64 // [barn] at 1.7982 Å
	NumberDensity          float64 // [Å^-3]
	NumberOfAngles         int
	ScatteringOrders       int
	NeutronsSingle         int
	NeutronsMultiple       int
	Seed                   int64
	DiscardWarningFraction float64
	CalculateStdError      bool
	MakeDir                bool

	_sofq    [][]float64
	_verbose bool
	_threads int
}

func (p *ModelParameters) SofQData() [][]float64 {
	return p._sofq
}

func (p *ModelParameters) SetSofQData(data [][]float64) {
	p._sofq = data
}

// LoadSofQ reads the two-column table named by SofQ.
func (p *ModelParameters) LoadSofQ() error {
	data, err := utils.ReadFloatPairs(p.SofQ)
	if err != nil {
		return &ParameterError{Parameter: "SofQ", Err: err}
	}
	p._sofq = data
	return nil
}

func (p *ModelParameters) Verbose() bool {
	return p._verbose
}

func (p *ModelParameters) SetVerbosity(verbose bool) {
	p._verbose = verbose
}

func (p *ModelParameters) Threads() int {
	return p._threads
}

func (p *ModelParameters) SetThreads(threads int) {
	p._threads = threads
}

var defaultValues = map[string]any{ // internal units
	"Shape":                  "Flat",
	"CoherentXSection":       0.,
	"IncoherentXSection":     0.,
	"AbsorptionXSection":     0.,
	"NumberOfAngles":         10,
	"ScatteringOrders":       2,
	"NeutronsSingle":         1000,
	"NeutronsMultiple":       1000,
	"Seed":                   int64(1),
	"DiscardWarningFraction": 0.5,
	"CalculateStdError":      false,
	"MakeDir":                true,
}

var requiredFields = []string{"SofQ", "Width", "Height", "Wavelength", "NumberDensity"}

var defaultUnits = []string{"cm", "A"}

var valueUnits = map[string][]UnitElement{
	"Thickness": {
		{Class: Length, Power: 1},
	},
	"Width": {
		{Class: Length, Power: 1},
	},
	"Height": {
		{Class: Length, Power: 1},
	},
	"Wavelength": {
		{Class: Wavelength, Power: 1},
	},
}

var calculableFields = map[string]func(*ModelParameters){
	"TotalXSection": func(mp *ModelParameters) {
		mp.TotalXSection = mp.CoherentXSection + mp.IncoherentXSection
	},
}

/*
field value priority:
1. run table
2. global table
3. default
4. derived from other fields
*/

func (modelConfig *ModelParameters) CheckAndUnify(modelName string, config *Config, meta *toml.MetaData) error {
	path := []string{"Models", modelName}
	defined := map[string]struct{}{}

	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	globalConfigReflect := reflect.ValueOf(&config.ModelParameters).Elem()
	modelConfigType := modelConfigReflect.Type()
	for i := range modelConfigType.NumField() {
		field := modelConfigType.Field(i)
		if !field.IsExported() {
			continue
		}
		switch {
		case meta.IsDefined(append(path, field.Name)...):
			defined[field.Name] = struct{}{}
		case meta.IsDefined(field.Name):
			modelConfigReflect.Field(i).Set(globalConfigReflect.Field(i))
			defined[field.Name] = struct{}{}
		}
	}

	for fieldName := range defined {
		if units, some := valueUnits[fieldName]; some {
			field := modelConfigReflect.FieldByName(fieldName)
			field.SetFloat(Internal(field.Float(), units, config.InputUnits, true))
		}
	}

	for fieldName, value := range defaultValues {
		if _, some := defined[fieldName]; !some {
			modelConfigReflect.FieldByName(fieldName).Set(reflect.ValueOf(value))
		}
	}

	for fieldName, derive := range calculableFields {
		if _, some := defined[fieldName]; !some {
			derive(modelConfig)
		}
	}

	required := requiredFields
	if modelConfig.Shape == "Flat" {
		required = append(required[:len(required):len(required)], "Thickness")
	}
	for _, fieldName := range required {
		if _, some := defined[fieldName]; !some {
			return &ParameterError{Parameter: fieldName, Reason: fmt.Sprintf("required by model %s but not found", modelName)}
		}
	}

	if len(modelConfig._sofq) == 0 {
		if err := modelConfig.LoadSofQ(); err != nil {
			return err
		}
	}

	return modelConfig.Validate()
}

// Validate checks every scalar and the geometry, not the table contents.
func (p *ModelParameters) Validate() error {
	if p.ScatteringOrders < 1 || p.ScatteringOrders > constants.MaxScatteringOrder {
		return &ParameterError{Parameter: "ScatteringOrders", Reason: fmt.Sprintf("must be within 1..%d, got %d", constants.MaxScatteringOrder, p.ScatteringOrders)}
	}
	if p.NumberOfAngles < 1 {
		return &ParameterError{Parameter: "NumberOfAngles", Reason: fmt.Sprintf("must be positive, got %d", p.NumberOfAngles)}
	}
	if p.NeutronsSingle < 1 {
		return &ParameterError{Parameter: "NeutronsSingle", Reason: fmt.Sprintf("must be positive, got %d", p.NeutronsSingle)}
	}
	if p.ScatteringOrders > 1 && p.NeutronsMultiple < 1 {
		return &ParameterError{Parameter: "NeutronsMultiple", Reason: fmt.Sprintf("must be positive, got %d", p.NeutronsMultiple)}
	}
	if !positiveFinite(p.Wavelength) {
		return &ParameterError{Parameter: "Wavelength", Reason: fmt.Sprintf("must be positive, got %v", p.Wavelength)}
	}
	if !positiveFinite(p.NumberDensity) {
		return &ParameterError{Parameter: "NumberDensity", Reason: fmt.Sprintf("must be positive, got %v", p.NumberDensity)}
	}
	for name, value := range map[string]float64{
		"CoherentXSection":   p.CoherentXSection,
		"IncoherentXSection": p.IncoherentXSection,
		"AbsorptionXSection": p.AbsorptionXSection,
	} {
		if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return &ParameterError{Parameter: name, Reason: fmt.Sprintf("must be non-negative, got %v", value)}
		}
	}
	if !positiveFinite(p.TotalXSection) {
		return &ParameterError{Parameter: "TotalXSection", Reason: fmt.Sprintf("must be positive, got %v", p.TotalXSection)}
	}
	if !(p.DiscardWarningFraction > 0 && p.DiscardWarningFraction <= 1) {
		return &ParameterError{Parameter: "DiscardWarningFraction", Reason: fmt.Sprintf("must be within (0, 1], got %v", p.DiscardWarningFraction)}
	}
	if _, err := p.Geometry(); err != nil {
		return err
	}
	if len(p._sofq) == 0 {
		return &ParameterError{Parameter: "SofQ", Reason: "no scattering-law data loaded"}
	}
	return nil
}

// Geometry builds the sample geometry, reporting bad sizes as parameter errors.
func (p *ModelParameters) Geometry() (*geometry.Geometry, error) {
	shape, err := geometry.ParseShape(p.Shape, p.Thickness, p.Width, p.Height)
	if err != nil {
		return nil, &ParameterError{Parameter: "Shape", Err: err}
	}
	g, err := geometry.New(shape)
	if err != nil {
		var dimension *geometry.DimensionError
		if errors.As(err, &dimension) {
			return nil, &ParameterError{Parameter: dimension.Dimension, Err: err}
		}
		return nil, &ParameterError{Parameter: "Shape", Err: err}
	}
	return g, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
