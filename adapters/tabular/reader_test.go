package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"costwise/domain/core"
	"costwise/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cohort.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `age,region,visits,readmitted
64,north,3,yes
71,south,,no
55,north,1,yes
49,east,0,no
80,,7,yes
`

func TestLoad_CSV(t *testing.T) {
	loader := NewLoader()
	d, err := loader.Load(context.Background(), writeCSV(t, sampleCSV), "readmitted")
	require.NoError(t, err)

	assert.Equal(t, "cohort", d.Name)
	assert.Equal(t, core.ColumnName("readmitted"), d.Outcome)
	require.Len(t, d.Examples, 5)
	require.Len(t, d.Columns, 3)

	age, ok := d.Column("age")
	require.True(t, ok)
	assert.Equal(t, dataset.KindNumeric, age.Kind)
	assert.InDelta(t, (64+71+55+49+80)/5.0, age.Profile.Mean, 1e-9)

	region, ok := d.Column("region")
	require.True(t, ok)
	assert.Equal(t, dataset.KindCategorical, region.Kind)
	// Levels are sorted; the missing cell forms its own empty level.
	assert.Equal(t, []string{"", "east", "north", "south"}, region.Levels)

	// Labels follow the positive-value set.
	wantLabels := []int{1, 0, 1, 0, 1}
	for i, ex := range d.Examples {
		assert.Equal(t, wantLabels[i], ex.Label, "row %d", i)
	}

	// The missing visits cell is imputed with the column mean.
	visits, _ := d.Column("visits")
	assert.InDelta(t, (3+1+0+7)/4.0, visits.Profile.Mean, 1e-9)
	assert.InDelta(t, visits.Profile.Mean, d.Examples[1].Features[2], 1e-9)
	assert.InDelta(t, 0.25, visits.Profile.MissingRate, 1e-9)
}

func TestLoad_CustomPositiveValues(t *testing.T) {
	csv := "score,outcome\n1,READMIT\n2,DISCHARGED\n"
	loader := NewLoader("readmit")

	d, err := loader.Load(context.Background(), writeCSV(t, csv), "outcome")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Examples[0].Label)
	assert.Equal(t, 0, d.Examples[1].Label)
}

func TestLoad_MissingOutcomeColumn(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load(context.Background(), writeCSV(t, sampleCSV), "no_such_column")
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), "readmitted")
	require.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.parquet")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := NewLoader().Load(context.Background(), path, "readmitted")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
