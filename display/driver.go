package display

import (
	"time"

	"calliope/board"
)

// RowTime is how long each matrix row stays selected.
const RowTime = 2 * time.Millisecond

// Pin is a display line.
type Pin interface {
	Set(high bool)
}

// Driver multiplexes a Matrix over the row and column lines.
type Driver struct {
	Matrix

	rows [board.NumRows]Pin
	cols [board.NumCols]Pin
	row  int

	sleep func(time.Duration)
}

// NewDriver takes the row and column lines, in board order, and blanks
// the display.
func NewDriver(rows [board.NumRows]Pin, cols [board.NumCols]Pin) *Driver {
	d := &Driver{
		rows:  rows,
		cols:  cols,
		row:   board.NumRows - 1,
		sleep: time.Sleep,
	}
	d.Blank()
	return d
}

// Blank deselects every row and releases every column.
func (d *Driver) Blank() {
	for _, r := range d.rows {
		r.Set(false)
	}
	for _, c := range d.cols {
		c.Set(true)
	}
}

// Step moves to the next row and drives its columns. It is called once
// per RowTime by a timer or a refresh loop.
func (d *Driver) Step() {
	d.rows[d.row].Set(false)
	d.row = (d.row + 1) % board.NumRows

	mask := d.Scan(d.row)
	for i, c := range d.cols {
		c.Set(mask&(1<<i) == 0)
	}
	d.rows[d.row].Set(true)
}

// Row returns the selected matrix row.
func (d *Driver) Row() int {
	return d.row
}

// ShowFor shows img for about dur, refreshing in the calling goroutine,
// then blanks the display.
func (d *Driver) ShowFor(img Image, dur time.Duration) {
	d.Show(img)
	for elapsed := time.Duration(0); elapsed < dur; elapsed += RowTime {
		d.Step()
		d.sleep(RowTime)
	}
	d.Blank()
}
