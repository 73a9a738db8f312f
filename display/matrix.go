// Package display drives the Calliope mini 5x5 LED display.
//
// The 25 LEDs are wired as a 3x9 matrix: a row line is driven high to
// select it and a column line is driven low to light the LED at the
// crossing. Matrix keeps the 5x5 image in matrix form and Driver
// multiplexes it over the row and column pins.
package display

import "calliope/board"

// Image is a 5x5 frame indexed [y][x], y=0 at the top. Any non-zero
// value is lit.
type Image [5][5]uint8

type ledPos struct {
	row, col uint8
}

// ledLayout maps each display position to its matrix row and column.
var ledLayout = [5][5]ledPos{
	{{0, 0}, {1, 3}, {0, 1}, {1, 4}, {0, 2}},
	{{2, 3}, {2, 4}, {2, 5}, {2, 6}, {2, 7}},
	{{1, 1}, {0, 8}, {1, 2}, {2, 8}, {1, 0}},
	{{0, 7}, {0, 6}, {0, 5}, {0, 4}, {0, 3}},
	{{2, 2}, {1, 6}, {2, 0}, {1, 5}, {2, 1}},
}

// Matrix is an image converted to one column mask per matrix row.
type Matrix struct {
	rows [board.NumRows]uint16
}

// Show replaces the displayed image.
func (m *Matrix) Show(img Image) {
	m.Clear()
	for y, line := range img {
		for x, v := range line {
			if v == 0 {
				continue
			}
			p := ledLayout[y][x]
			m.rows[p.row] |= 1 << p.col
		}
	}
}

// Clear turns every LED off.
func (m *Matrix) Clear() {
	m.rows = [board.NumRows]uint16{}
}

// Scan returns the columns to light while row is selected, bit n for
// column n. Out of range rows have nothing lit.
func (m *Matrix) Scan(row int) uint16 {
	if row < 0 || row >= board.NumRows {
		return 0
	}
	return m.rows[row]
}

// Lit reports whether the LED at display position (x, y) is on.
func (m *Matrix) Lit(x, y int) bool {
	if x < 0 || x >= 5 || y < 0 || y >= 5 {
		return false
	}
	p := ledLayout[y][x]
	return m.rows[p.row]&(1<<p.col) != 0
}
