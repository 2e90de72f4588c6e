package tabular

// rawTable is the intermediate form of a loaded file: a header row plus
// string cells, before coercion into a typed dataset.
type rawTable struct {
	Headers []string
	Rows    [][]string
}

// columnValues collects one column's cells for type inference.
type columnValues struct {
	header  string
	cells   []string
	missing int
}

// DefaultPositiveValues are the outcome-cell spellings binarized to label 1
// when no explicit set is configured. Comparison is case-insensitive.
var DefaultPositiveValues = []string{"1", "true", "yes", "y"}
