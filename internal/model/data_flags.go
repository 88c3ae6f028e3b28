package model

import (
	"flag"
	"path/filepath"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(Curve) []Point
}

type DataFlags struct {
	all         *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

func NewDataFlags(fs *flag.FlagSet) DataFlags {
	return DataFlags{
		all: fs.Bool("all", false, "save every available curve"),
		sequentials: map[string]SequentialDataItem{
			"Intensity vs angle": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("theta", true, "save intensity against scattering angle"),
					fileSuffix: "theta",
				},
				columnNames: []string{"2theta (deg)", "I (sr^-1)", "95% interval"},
				values:      func(c Curve) []Point { return c.ByAngle },
			},
			"Intensity vs Q": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("q", true, "save intensity against momentum transfer"),
					fileSuffix: "q",
				},
				columnNames: []string{"Q (A^-1)", "I (sr^-1)", "95% interval"},
				values:      func(c Curve) []Point { return c.ByQ },
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	df.outputPath = filepath.Clean(path)
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}
