// Package joint reduces a multi-column discrete variable to a single
// integer-coded variable over its joint alphabet.
package joint

import (
	"fmt"
	"sort"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

// Join assigns one code per distinct row. Codes are the rank of the row in
// lexicographic order, so the result does not depend on the sample order.
// The returned alphabet is the number of distinct rows observed.
func Join(rows [][]int) ([]int, int, error) {
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("join: no samples: %w", internalerr.ErrInvalidInput)
	}
	width := len(rows[0])
	if width == 0 {
		return nil, 0, fmt.Errorf("join: zero columns: %w", internalerr.ErrShape)
	}
	for i, row := range rows {
		if len(row) != width {
			return nil, 0, fmt.Errorf("join: row %d has %d columns, want %d: %w", i, len(row), width, internalerr.ErrShape)
		}
	}

	if width == 1 {
		col := make([]int, len(rows))
		for i, row := range rows {
			col[i] = row[0]
		}
		return col, Alphabet(col), nil
	}

	distinct := make([][]int, 0)
	seen := make(map[string]struct{})
	for _, row := range rows {
		k := key(row)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, row)
	}
	sort.Slice(distinct, func(i, j int) bool { return less(distinct[i], distinct[j]) })

	code := make(map[string]int, len(distinct))
	for i, row := range distinct {
		code[key(row)] = i
	}

	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = code[key(row)]
	}
	return out, len(distinct), nil
}

// Alphabet returns the number of distinct values in a column.
func Alphabet(col []int) int {
	seen := make(map[int]struct{}, len(col))
	for _, v := range col {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func less(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func key(row []int) string {
	return fmt.Sprint(row)
}
