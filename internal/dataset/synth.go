package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"diabetes-api/internal/schema"
)

// Generate writes n synthetic survey rows with a Diabetes_012 label. Feature
// marginals roughly follow the BRFSS health indicators; the label comes from
// a logistic risk score so a model has something to learn. Output depends
// only on n and seed.
func Generate(w io.Writer, n int, seed int64) error {
	if n <= 0 {
		return fmt.Errorf("row count must be positive, got %d", n)
	}
	rng := rand.New(rand.NewSource(seed))
	cw := csv.NewWriter(w)

	header := append([]string{schema.LabelColumn}, schema.Names()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for i := 0; i < n; i++ {
		row, label := syntheticRow(rng)
		record[0] = strconv.Itoa(label)
		for j, v := range row {
			record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func syntheticRow(rng *rand.Rand) ([]float64, int) {
	bern := func(p float64) float64 {
		if rng.Float64() < p {
			return 1
		}
		return 0
	}
	between := func(lo, hi int) float64 { return float64(lo + rng.Intn(hi-lo+1)) }
	days := func(pZero float64) float64 {
		if rng.Float64() < pZero {
			return 0
		}
		return between(1, 30)
	}

	v := map[string]float64{
		"HighBP":               bern(0.43),
		"HighChol":             bern(0.42),
		"CholCheck":            bern(0.96),
		"BMI":                  math.Round(math.Min(math.Max(28.4+6.6*rng.NormFloat64(), 12), 98)),
		"Smoker":               bern(0.44),
		"Stroke":               bern(0.04),
		"HeartDiseaseorAttack": bern(0.09),
		"PhysActivity":         bern(0.76),
		"Fruits":               bern(0.63),
		"Veggies":              bern(0.81),
		"HvyAlcoholConsump":    bern(0.06),
		"AnyHealthcare":        bern(0.95),
		"NoDocbcCost":          bern(0.08),
		"GenHlth":              between(1, 5),
		"MentHlth":             days(0.7),
		"PhysHlth":             days(0.63),
		"DiffWalk":             bern(0.17),
		"Sex":                  bern(0.44),
		"Age":                  between(1, 13),
		"Education":            between(1, 6),
		"Income":               between(1, 8),
	}

	z := -6.2 +
		1.1*v["HighBP"] +
		0.7*v["HighChol"] +
		0.09*(v["BMI"]-25) +
		0.55*v["GenHlth"] +
		0.18*v["Age"] +
		0.5*v["HeartDiseaseorAttack"] +
		0.4*v["DiffWalk"] -
		0.3*v["PhysActivity"] -
		0.08*v["Income"]
	p := 1 / (1 + math.Exp(-z))

	label := 0
	switch r := rng.Float64(); {
	case r < p:
		label = 2
	case r < p+0.02:
		label = 1
	}

	row := make([]float64, schema.NumFeatures)
	for i, f := range schema.Features {
		row[i] = v[f.Name]
	}
	return row, label
}
