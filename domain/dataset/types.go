package dataset

import (
	"costwise/domain/core"
)

// ColumnKind classifies how a feature column is encoded.
type ColumnKind string

const (
	// KindNumeric columns carry their value directly.
	KindNumeric ColumnKind = "numeric"
	// KindCategorical columns carry a level index into ColumnMeta.Levels.
	KindCategorical ColumnKind = "categorical"
)

// ColumnMeta describes a single feature column.
type ColumnMeta struct {
	Name core.ColumnName `json:"name"`
	Kind ColumnKind      `json:"kind"`
	// Levels holds the ordered category labels for categorical columns.
	Levels []string `json:"levels,omitempty"`
	// Profile carries summary statistics computed at load time.
	Profile ColumnProfile `json:"profile"`
}

// ColumnProfile holds load-time summary statistics for a column.
type ColumnProfile struct {
	MissingRate float64 `json:"missing_rate"`
	UniqueCount int     `json:"unique_count"`
	Mean        float64 `json:"mean,omitempty"`
	StdDev      float64 `json:"std_dev,omitempty"`
	Min         float64 `json:"min,omitempty"`
	Max         float64 `json:"max,omitempty"`
	Median      float64 `json:"median,omitempty"`
}

// Example is one labeled feature vector. Features are aligned with the
// dataset's column metadata; categorical values are level indices.
type Example struct {
	Features []float64 `json:"features"`
	Label    int       `json:"label"`
}

// Dataset is an ordered sequence of labeled examples plus the column
// metadata needed to interpret them.
type Dataset struct {
	ID       core.DatasetID  `json:"id"`
	Name     string          `json:"name"`
	Outcome  core.ColumnName `json:"outcome"`
	Columns  []ColumnMeta    `json:"columns"`
	Examples []Example       `json:"examples"`
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return len(d.Examples)
}

// PositiveRate returns the fraction of examples with a positive label.
func (d *Dataset) PositiveRate() float64 {
	if len(d.Examples) == 0 {
		return 0
	}
	positives := 0
	for _, ex := range d.Examples {
		if ex.Label == 1 {
			positives++
		}
	}
	return float64(positives) / float64(len(d.Examples))
}

// Column returns the metadata for a named column.
func (d *Dataset) Column(name core.ColumnName) (ColumnMeta, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnMeta{}, false
}
