package tempo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ReadActivations reads an activation signal from its text form: one real
// value per line, optionally followed by further columns that are ignored
// here. An empty sep splits columns on any whitespace. Blank lines are
// skipped.
func ReadActivations(r io.Reader, sep string) ([]float64, error) {
	var activations []float64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var field string
		if sep == "" {
			field = strings.Fields(line)[0]
		} else {
			field = strings.Split(line, sep)[0]
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid activation value on line %d: %w", lineNo, err)
		}
		activations = append(activations, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activations: %w", err)
	}

	return activations, nil
}

// LoadActivations reads an activation signal from a file. See
// ReadActivations for the format.
func LoadActivations(path, sep string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activations file: %w", err)
	}
	defer f.Close()

	return ReadActivations(f, sep)
}

// AverageActivations averages the activation signals of several detection
// networks run over the same audio into a single signal. All signals must
// have the same length.
func AverageActivations(signals [][]float64) ([]float64, error) {
	if len(signals) == 0 {
		return nil, fmt.Errorf("no activation signals to average")
	}

	avg := make([]float64, len(signals[0]))
	copy(avg, signals[0])
	for i, signal := range signals[1:] {
		if len(signal) != len(avg) {
			return nil, fmt.Errorf("activation signal %d has %d frames, want %d", i+1, len(signal), len(avg))
		}
		floats.Add(avg, signal)
	}
	floats.Scale(1.0/float64(len(signals)), avg)

	return avg, nil
}
