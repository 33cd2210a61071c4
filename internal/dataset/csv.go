// Package dataset loads the diabetes indicator CSV and splits it for
// training. Columns are picked by name through the shared schema, so column
// order in the file does not matter and extra columns are ignored.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"diabetes-api/internal/schema"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Dataset is the feature matrix in schema order plus the derived binary
// labels. Raw keeps the unmapped Diabetes_012 values.
type Dataset struct {
	X   *mat.Dense
	Y   []int
	Raw []float64
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int { return len(d.Y) }

// ClassCounts tallies the unmapped Diabetes_012 values.
func (d *Dataset) ClassCounts() map[int]int {
	counts := make(map[int]int, 3)
	for _, v := range d.Raw {
		counts[int(v)]++
	}
	return counts
}

// Positives counts samples labelled 1.
func (d *Dataset) Positives() int {
	n := 0
	for _, y := range d.Y {
		n += y
	}
	return n
}

// LoadCSV reads the dataset at path.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("rows", ds.Rows()).
		Int("positives", ds.Positives()).
		Msg("dataset loaded")
	return ds, nil
}

// Read parses a header row followed by numeric records.
func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	labelIdx, ok := columns[schema.LabelColumn]
	if !ok {
		return nil, fmt.Errorf("missing label column %q", schema.LabelColumn)
	}
	featureIdx := make([]int, len(schema.Features))
	for i, f := range schema.Features {
		idx, ok := columns[f.Name]
		if !ok {
			return nil, fmt.Errorf("missing feature column %q", f.Name)
		}
		featureIdx[i] = idx
	}

	var (
		data []float64
		raw  []float64
		y    []int
	)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		label, err := parseValue(record[labelIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d, column %s: %w", line, schema.LabelColumn, err)
		}
		for i, idx := range featureIdx {
			v, err := parseValue(record[idx])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, schema.Features[i].Name, err)
			}
			data = append(data, v)
		}
		raw = append(raw, label)
		y = append(y, schema.BinaryLabel(label))
	}

	if len(y) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	return &Dataset{
		X:   mat.NewDense(len(y), len(schema.Features), data),
		Y:   y,
		Raw: raw,
	}, nil
}

func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
