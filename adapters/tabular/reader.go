package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"costwise/domain/core"
	"costwise/domain/dataset"
	"costwise/internal"
	"costwise/ports"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"
)

// Loader reads Excel and CSV files into typed datasets. Columns whose
// non-missing cells all parse as numbers become numeric features; everything
// else is categorical and encoded as level indices. Missing numeric cells
// are imputed with the column mean.
type Loader struct {
	positives map[string]bool
	logger    *internal.Logger
}

// NewLoader creates a loader. positiveValues configures which outcome-cell
// spellings map to label 1; the default set is used when none are given.
func NewLoader(positiveValues ...string) *Loader {
	if len(positiveValues) == 0 {
		positiveValues = DefaultPositiveValues
	}
	set := make(map[string]bool, len(positiveValues))
	for _, v := range positiveValues {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return &Loader{positives: set, logger: internal.DefaultLogger}
}

// Load reads the file at path and binarizes the named outcome column.
func (l *Loader) Load(ctx context.Context, path string, outcome string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(outcome) == "" {
		return nil, core.NewInvalidParameterError("outcome", "outcome column name is required")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset file not found: %s", path)
	}

	var (
		table *rawTable
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		table, err = readCSV(path)
	case ".xlsx":
		table, err = readExcel(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, core.ErrInsufficientData
	}

	l.logger.Info("loaded %s: %d columns, %d rows", filepath.Base(path), len(table.Headers), len(table.Rows))

	return l.coerce(table, path, outcome)
}

func readCSV(path string) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, core.ErrInsufficientData
	}

	return &rawTable{Headers: records[0], Rows: records[1:]}, nil
}

func readExcel(path string) (*rawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, core.ErrInsufficientData
	}

	return &rawTable{Headers: rows[0], Rows: rows[1:]}, nil
}

// coerce infers column types, encodes features, and binarizes the outcome.
func (l *Loader) coerce(table *rawTable, path, outcome string) (*dataset.Dataset, error) {
	outcomeIdx := -1
	for i, h := range table.Headers {
		if strings.EqualFold(strings.TrimSpace(h), outcome) {
			outcomeIdx = i
			break
		}
	}
	if outcomeIdx < 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrColumnNotFound, outcome)
	}

	columns := gatherColumns(table, outcomeIdx)

	d := &dataset.Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Outcome: core.ColumnName(table.Headers[outcomeIdx]),
	}

	encoders := make([]func(string) float64, len(columns))
	for i, col := range columns {
		meta, encode := buildColumn(col)
		d.Columns = append(d.Columns, meta)
		encoders[i] = encode
	}

	for _, row := range table.Rows {
		features := make([]float64, len(columns))
		for i, col := range columns {
			features[i] = encoders[i](cellAt(row, col.index))
		}
		label := 0
		if l.positives[strings.ToLower(strings.TrimSpace(cellAt(row, outcomeIdx)))] {
			label = 1
		}
		d.Examples = append(d.Examples, dataset.Example{Features: features, Label: label})
	}

	return d, nil
}

type indexedColumn struct {
	columnValues
	index int
}

func gatherColumns(table *rawTable, outcomeIdx int) []indexedColumn {
	out := make([]indexedColumn, 0, len(table.Headers)-1)
	for i, h := range table.Headers {
		if i == outcomeIdx {
			continue
		}
		col := indexedColumn{index: i}
		col.header = strings.TrimSpace(h)
		for _, row := range table.Rows {
			cell := strings.TrimSpace(cellAt(row, i))
			if cell == "" {
				col.missing++
			}
			col.cells = append(col.cells, cell)
		}
		out = append(out, col)
	}
	return out
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// buildColumn infers a column's kind, computes its profile, and returns the
// cell encoder for it.
func buildColumn(col indexedColumn) (dataset.ColumnMeta, func(string) float64) {
	numeric := make([]float64, 0, len(col.cells))
	isNumeric := true
	for _, cell := range col.cells {
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			isNumeric = false
			break
		}
		numeric = append(numeric, v)
	}

	meta := dataset.ColumnMeta{Name: core.ColumnName(col.header)}
	meta.Profile.MissingRate = float64(col.missing) / float64(len(col.cells))

	if isNumeric && len(numeric) > 0 {
		meta.Kind = dataset.KindNumeric
		meta.Profile.Mean, _ = stats.Mean(numeric)
		meta.Profile.StdDev, _ = stats.StandardDeviation(numeric)
		meta.Profile.Min, _ = stats.Min(numeric)
		meta.Profile.Max, _ = stats.Max(numeric)
		meta.Profile.Median, _ = stats.Median(numeric)
		meta.Profile.UniqueCount = uniqueCount(col.cells)

		mean := meta.Profile.Mean
		return meta, func(cell string) float64 {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				return mean // mean imputation for missing numerics
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return mean
			}
			return v
		}
	}

	// Categorical: stable level order, missing cells become their own level.
	levelSet := make(map[string]bool)
	for _, cell := range col.cells {
		levelSet[cell] = true
	}
	levels := make([]string, 0, len(levelSet))
	for lv := range levelSet {
		levels = append(levels, lv)
	}
	sort.Strings(levels)

	index := make(map[string]int, len(levels))
	for i, lv := range levels {
		index[lv] = i
	}

	meta.Kind = dataset.KindCategorical
	meta.Levels = levels
	meta.Profile.UniqueCount = len(levels)

	return meta, func(cell string) float64 {
		return float64(index[strings.TrimSpace(cell)])
	}
}

func uniqueCount(cells []string) int {
	seen := make(map[string]bool, len(cells))
	for _, c := range cells {
		if c != "" {
			seen[c] = true
		}
	}
	return len(seen)
}

var _ ports.DatasetLoader = (*Loader)(nil)
