// Package bingo implements the 3x3 daily micro-goal board: the fixed cell
// layout and win-line detection.
package bingo

import "errors"

// Cell identifiers.
const (
	CellReview5        = "review5"
	CellStreak3        = "streak3"
	CellFillBlank      = "fillBlank"
	CellMultipleChoice = "multipleChoice"
	CellAddContext     = "addContext"
	CellWorkWord       = "workWord"
	CellSocialWord     = "socialWord"
	CellMasterWord     = "masterWord"
	CellFinishSession  = "finishSession"
)

// GridSize is the number of cells on a board.
const GridSize = 9

// Ordering maps grid positions 0-8 (row-major) to cell ids.
type Ordering [GridSize]string

// DefaultOrdering is the board layout every owner sees.
var DefaultOrdering = Ordering{
	CellReview5, CellStreak3, CellFillBlank,
	CellMultipleChoice, CellAddContext, CellWorkWord,
	CellSocialWord, CellMasterWord, CellFinishSession,
}

// Lines are the eight winning position triples: rows, columns, diagonals.
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// ErrUnknownCell is returned when a cell id is not on the board.
var ErrUnknownCell = errors.New("unknown bingo cell")

// Position returns the grid position of cell, or -1 if it is not on the board.
func (o Ordering) Position(cell string) int {
	for i, c := range o {
		if c == cell {
			return i
		}
	}
	return -1
}

// IsCell reports whether cell is on the board.
func (o Ordering) IsCell(cell string) bool {
	return o.Position(cell) >= 0
}

// positions converts a cell set into a bitmask of grid positions. Unknown
// cells are ignored.
func (o Ordering) positions(completed []string) uint16 {
	var mask uint16
	for _, cell := range completed {
		if p := o.Position(cell); p >= 0 {
			mask |= 1 << p
		}
	}
	return mask
}

// CheckWin reports whether completed covers at least one full line.
func CheckWin(completed []string, ordering Ordering) bool {
	return len(CompletedLines(completed, ordering)) > 0
}

// CompletedLines returns every line fully covered by completed.
func CompletedLines(completed []string, ordering Ordering) [][3]int {
	mask := ordering.positions(completed)
	var lines [][3]int
	for _, line := range Lines {
		want := uint16(1)<<line[0] | uint16(1)<<line[1] | uint16(1)<<line[2]
		if mask&want == want {
			lines = append(lines, line)
		}
	}
	return lines
}
