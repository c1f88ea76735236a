package analytics

import (
	"iter"
	"slices"

	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/pkg/utils"
)

// GroupCount counts rows per distinct value of field. Rows where the field
// is absent, nil or empty are skipped. Groups come out in the order their
// value first occurs.
func GroupCount(rows []model.Row, field string) []model.GroupCount {
	index := make(map[string]int)
	groups := make([]model.GroupCount, 0)

	for _, row := range rows {
		key, ok := row.Key(field)
		if !ok {
			continue
		}
		if i, exists := index[key]; exists {
			groups[i].Count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, model.GroupCount{Key: key, Count: 1})
	}
	return groups
}

// Distinct returns the distinct non-empty values of field in first-occurrence
// order.
func Distinct(rows []model.Row, field string) []string {
	groups := GroupCount(rows, field)
	values := make([]string, len(groups))
	for i, g := range groups {
		values[i] = g.Key
	}
	return values
}

// SortNumeric returns a copy of groups ordered by the numeric value of their
// key, ascending. Keys that are not numbers go last in their original order.
func SortNumeric(groups []model.GroupCount) []model.GroupCount {
	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b model.GroupCount) int {
		return compareNumericKeys(a.Key, b.Key)
	})
	return sorted
}

func compareNumericKeys(a, b string) int {
	fa, okA := utils.ToFloat(a)
	fb, okB := utils.ToFloat(b)
	switch {
	case okA && okB:
		if fa < fb {
			return -1
		}
		if fa > fb {
			return 1
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// TopN returns the n largest groups by count. Equal counts keep their input
// order, so with GroupCount output the earlier first occurrence wins.
func TopN(groups []model.GroupCount, n int) []model.GroupCount {
	if n <= 0 {
		return []model.GroupCount{}
	}
	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b model.GroupCount) int {
		return b.Count - a.Count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// CrossTab is a sparse co-occurrence table of two categorical fields.
// Pairs that never occur have no cell and count as zero.
type CrossTab struct {
	RowField string               `json:"rowField"`
	ColField string               `json:"colField"`
	Rows     []string             `json:"rows"`
	Cols     []string             `json:"cols"`
	Cells    []model.CrossTabCell `json:"cells"`
}

// CrossTabulate counts rows per (rowField, colField) pair, considering only
// rows with non-empty values in both fields. Each axis lists the GroupCount
// order of its field over all rows, so a category seen without a partner
// value still gets a (zero) line.
func CrossTabulate(rows []model.Row, rowField, colField string) CrossTab {
	type pair struct{ row, col string }

	index := make(map[pair]int)
	cells := make([]model.CrossTabCell, 0)

	for _, row := range rows {
		r, ok := row.Key(rowField)
		if !ok {
			continue
		}
		c, ok := row.Key(colField)
		if !ok {
			continue
		}
		p := pair{r, c}
		if i, exists := index[p]; exists {
			cells[i].Count++
			continue
		}
		index[p] = len(cells)
		cells = append(cells, model.CrossTabCell{Row: r, Col: c, Count: 1})
	}

	return CrossTab{
		RowField: rowField,
		ColField: colField,
		Rows:     Distinct(rows, rowField),
		Cols:     Distinct(rows, colField),
		Cells:    cells,
	}
}

// WithAxes returns a copy of the table using the given axis orderings.
// Cells whose category is missing from an axis are dropped.
func (ct CrossTab) WithAxes(rows, cols []string) CrossTab {
	keepRow := make(map[string]bool, len(rows))
	for _, r := range rows {
		keepRow[r] = true
	}
	keepCol := make(map[string]bool, len(cols))
	for _, c := range cols {
		keepCol[c] = true
	}
	cells := make([]model.CrossTabCell, 0, len(ct.Cells))
	for _, cell := range ct.Cells {
		if keepRow[cell.Row] && keepCol[cell.Col] {
			cells = append(cells, cell)
		}
	}
	return CrossTab{
		RowField: ct.RowField,
		ColField: ct.ColField,
		Rows:     slices.Clone(rows),
		Cols:     slices.Clone(cols),
		Cells:    cells,
	}
}

// Dense expands the table into a len(Rows) x len(Cols) matrix, filling
// absent pairs with 0.
func (ct CrossTab) Dense() [][]int {
	rowIdx := make(map[string]int, len(ct.Rows))
	for i, r := range ct.Rows {
		rowIdx[r] = i
	}
	colIdx := make(map[string]int, len(ct.Cols))
	for i, c := range ct.Cols {
		colIdx[c] = i
	}
	matrix := make([][]int, len(ct.Rows))
	for i := range matrix {
		matrix[i] = make([]int, len(ct.Cols))
	}
	for _, cell := range ct.Cells {
		r, okR := rowIdx[cell.Row]
		c, okC := colIdx[cell.Col]
		if okR && okC {
			matrix[r][c] += cell.Count
		}
	}
	return matrix
}

// Points yields one point per row whose xField and yField are both numeric.
// The sequence is lazy; rows are read as it is consumed.
func Points(rows []model.Row, xField, yField string) iter.Seq[model.Point] {
	return func(yield func(model.Point) bool) {
		for _, row := range rows {
			x, ok := row.Number(xField)
			if !ok {
				continue
			}
			y, ok := row.Number(yField)
			if !ok {
				continue
			}
			if !yield(model.Point{X: x, Y: y}) {
				return
			}
		}
	}
}

// Samples maps each category to the numeric values observed for it.
type Samples struct {
	Categories []string             `json:"categories"`
	Values     map[string][]float64 `json:"values"`
}

// GroupSamples collects valueField per distinct categoryField value. Rows
// with an empty category or a non-numeric value are dropped. Categories keep
// first-occurrence order and samples keep row order.
func GroupSamples(rows []model.Row, categoryField, valueField string) Samples {
	s := Samples{
		Categories: make([]string, 0),
		Values:     make(map[string][]float64),
	}
	for _, row := range rows {
		cat, ok := row.Key(categoryField)
		if !ok {
			continue
		}
		v, ok := row.Number(valueField)
		if !ok {
			continue
		}
		if _, seen := s.Values[cat]; !seen {
			s.Categories = append(s.Categories, cat)
		}
		s.Values[cat] = append(s.Values[cat], v)
	}
	return s
}
