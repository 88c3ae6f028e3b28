package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func ReadFloatPairs(filename string) ([][]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	var result [][]float64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Fields(line)

		// Skip empty lines and comments
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}

		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format in line: %q - expected 2 numbers, got %d", line, len(parts))
		}

		x, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing float in line %q: %w", line, err)
		}

		y, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing float in line %q: %w", line, err)
		}

		result = append(result, []float64{x, y})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return result, nil
}

// SplitPairs turns rows of (x, y) into two columns.
func SplitPairs(pairs [][]float64) (x, y []float64) {
	x = make([]float64, len(pairs))
	y = make([]float64, len(pairs))
	for i := range pairs {
		x[i], y[i] = pairs[i][0], pairs[i][1]
	}
	return
}

func GetFilename(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func OpenFile(makeDir bool, outputPath string, fileSuffix, modelName string) (*os.File, error) {
	if makeDir && fileSuffix != "" && fileSuffix != "." {
		if err := os.MkdirAll(filepath.Join(outputPath, fileSuffix), 0750); err != nil {
			return nil, err
		}
		return os.Create(filepath.Join(outputPath, fileSuffix, modelName+".txt"))
	}
	if fileSuffix == "" {
		return os.Create(filepath.Join(outputPath, modelName+".txt"))
	}
	return os.Create(filepath.Join(outputPath, modelName+"_"+fileSuffix+".txt"))
}
