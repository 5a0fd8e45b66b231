/*
Copyright © 2026 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/

// Package rle implements the run-length-encoded line/column tables that
// map a byte offset in a chunk's code array back to a source location.
package rle

// run is one (count, value) pair: count consecutive byte offsets all map
// to value (a line or column number).
type run struct {
	count int
	value int
}

// Table is a dense sequence of runs. Its logical invariant is that the
// sum of all run counts equals the number of bytes it has recorded.
type Table struct {
	runs []run
}

// Append records one more byte at the given value (line or column). If
// the table is empty or the most recent run's value differs, a new run
// of length 1 is pushed; otherwise the most recent run's count grows.
func (t *Table) Append(value int) {
	if n := len(t.runs); n != 0 && t.runs[n-1].value == value {
		t.runs[n-1].count++
		return
	}
	t.runs = append(t.runs, run{count: 1, value: value})
}

// Query walks the runs, accumulating counts, until the accumulator
// strictly exceeds index, and returns that run's value. Panics if index
// is out of range, which indicates a chunk/table invariant violation
// rather than a recoverable input error.
func (t *Table) Query(index int) int {
	acc := 0
	for _, r := range t.runs {
		acc += r.count
		if acc > index {
			return r.value
		}
	}
	panic("rle: index out of range")
}

// Len returns the total run length recorded so far (sum of all run
// counts). Chunk uses this to check lines/columns/code stay in lockstep.
func (t *Table) Len() int {
	total := 0
	for _, r := range t.runs {
		total += r.count
	}
	return total
}
