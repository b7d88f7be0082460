package spreadsheet

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/probe"
)

var cellPattern = regexp.MustCompile(`^[A-Z]+[0-9]+$`)

const columnLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IsCellAddress reports whether s looks like a cell coordinate such as "B12".
func IsCellAddress(s string) bool {
	return cellPattern.MatchString(s)
}

// ColumnName returns the column label for a zero-based index: 0 is "A",
// 25 is "Z", 26 is "AA". Indexes past "ZZ" are not supported.
func ColumnName(idx int) string {
	if idx < 26 {
		return columnLetters[idx : idx+1]
	}
	return columnLetters[idx/26-1:idx/26] + columnLetters[idx%26:idx%26+1]
}

// CellCoordinates lists every address of a maxCols x maxRows block,
// column by column. Columns stop at ZZ.
func CellCoordinates(maxCols, maxRows int) []string {
	if maxCols <= 0 || maxRows <= 0 {
		return nil
	}
	maxCols = min(maxCols, config.MaxColumnsLimit)
	out := make([]string, 0, maxCols*maxRows)
	for col := 0; col < maxCols; col++ {
		prefix := ColumnName(col)
		for row := 1; row <= maxRows; row++ {
			out = append(out, prefix+strconv.Itoa(row))
		}
	}
	return out
}

func listCells(op string, fn func() ([]string, error)) ([]string, bool) {
	cells, ok := graph.Try(op, fn)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out, len(out) > 0
}

func newCellChain(maxCols, maxRows int) probe.Chain[graph.Object, []string] {
	return probe.New("spreadsheet cells",
		probe.Strategy[graph.Object, []string]{Name: "UsedCells", Try: func(obj graph.Object) ([]string, bool) {
			lister, ok := obj.(graph.UsedCellLister)
			if !ok {
				return nil, false
			}
			return listCells("UsedCells", lister.UsedCells)
		}},
		probe.Strategy[graph.Object, []string]{Name: "NonEmptyCells", Try: func(obj graph.Object) ([]string, bool) {
			lister, ok := obj.(graph.NonEmptyCellLister)
			if !ok {
				return nil, false
			}
			return listCells("NonEmptyCells", lister.NonEmptyCells)
		}},
		probe.Strategy[graph.Object, []string]{Name: "Cells", Try: func(obj graph.Object) ([]string, bool) {
			lister, ok := obj.(graph.CellLister)
			if !ok {
				return nil, false
			}
			return listCells("Cells", lister.Cells)
		}},
		probe.Strategy[graph.Object, []string]{Name: "coordinate scan", Try: func(graph.Object) ([]string, bool) {
			return CellCoordinates(maxCols, maxRows), true
		}},
	)
}

// cellText returns a cell's raw contents, falling back to its value.
// A successful GetContents is authoritative even when empty.
func cellText(sheet graph.Object, cell string) (string, bool) {
	if reader, ok := sheet.(graph.ContentsReader); ok {
		if text, ok := graph.Try("GetContents("+cell+")", func() (string, error) {
			return reader.GetContents(cell)
		}); ok {
			return text, true
		}
	}
	if getter, ok := sheet.(graph.CellGetter); ok {
		if v, ok := graph.Try("Get("+cell+")", func() (any, error) {
			return getter.Get(cell)
		}); ok {
			if v == nil {
				return "", true
			}
			if s, isString := v.(string); isString {
				return s, true
			}
			return fmt.Sprint(v), true
		}
	}
	return "", false
}
