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

// Package intern implements the open-addressed string-interning table:
// for each distinct byte sequence, at most one value.Object of kind
// String exists at a time, so that Object pointer equality is a correct
// implementation of string equality.
//
// This hand-rolls open addressing rather than using Go's builtin map.
// The table's contract requires tombstone-visible slot states (empty
// vs. tombstone vs. occupied) and an explicit load factor/grow policy,
// neither of which a builtin map exposes.
package intern

import "github.com/pdxjjb/tinylox/value"

const minCapacity = 8
const maxLoadFactor = 0.75

// An entry is in one of three states. Tombstones reuse the value slot
// to carry Bool(true) as a sentinel: any probe that reads a Bool(true)
// entry with a nil key must treat it as a tombstone, not an occupied
// slot.
type entry struct {
	key *value.Object // nil => empty or tombstone
	val value.Value   // Bool(true) + nil key => tombstone; else placeholder
}

func (e entry) isEmpty() bool     { return e.key == nil && e.val.IsNil() }
func (e entry) isTombstone() bool { return e.key == nil && !e.val.IsNil() }
func (e entry) isOccupied() bool  { return e.key != nil }

// Table is the process- (or interpreter-) wide intern table. The zero
// Table is not ready for use; call MakeTable.
type Table struct {
	entries []entry
	count   int // occupied + tombstones
}

// MakeTable returns an empty Table with the minimum starting capacity.
func MakeTable() *Table {
	return &Table{entries: make([]entry, minCapacity)}
}

// Find looks up bytes (already hashed by the caller, typically via a
// value.Object being constructed) and returns the canonical interned
// Object, or nil if no matching entry exists. Probing is linear, modulo
// capacity, skipping tombstones, stopping at the first empty slot.
func (t *Table) Find(bytes []byte, hash uint32) *value.Object {
	if len(t.entries) == 0 {
		return nil
	}
	cap := uint32(len(t.entries))
	i := hash % cap
	for {
		e := t.entries[i]
		if e.isEmpty() {
			return nil
		}
		if e.isOccupied() && keyMatches(e.key, bytes, hash) {
			return e.key
		}
		i = (i + 1) % cap
	}
}

func keyMatches(key *value.Object, bytes []byte, hash uint32) bool {
	if key.StringHash() != hash {
		return false
	}
	kb := key.StringBytes()
	if len(kb) != len(bytes) {
		return false
	}
	for i := range kb {
		if kb[i] != bytes[i] {
			return false
		}
	}
	return true
}

// Set inserts obj (a value.Object of kind String) keyed by its own bytes
// and hash. Grows first if the load factor would be exceeded, then
// reinserts. Count increments only when a slot transitions from empty
// (not tombstone) to occupied.
func (t *Table) Set(obj *value.Object) {
	if float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.grow()
	}
	i := t.findSlot(obj.StringBytes(), obj.StringHash())
	wasEmpty := t.entries[i].isEmpty()
	t.entries[i] = entry{key: obj, val: value.Bool(true)}
	if wasEmpty {
		t.count++
	}
}

// findSlot returns the slot an entry with this key should occupy: the
// first matching occupied slot, else the first tombstone or empty slot
// seen (so deleted slots get reclaimed by later inserts).
func (t *Table) findSlot(bytes []byte, hash uint32) uint32 {
	cap := uint32(len(t.entries))
	i := hash % cap
	var tombstone *uint32
	for {
		e := t.entries[i]
		if e.isEmpty() {
			if tombstone != nil {
				return *tombstone
			}
			return i
		}
		if e.isTombstone() {
			if tombstone == nil {
				idx := i
				tombstone = &idx
			}
		} else if keyMatches(e.key, bytes, hash) {
			return i
		}
		i = (i + 1) % cap
	}
}

// Delete replaces the slot holding key with a tombstone. Count is not
// decremented; tombstones are reclaimed only on grow.
func (t *Table) Delete(key *value.Object) {
	if len(t.entries) == 0 {
		return
	}
	cap := uint32(len(t.entries))
	i := key.StringHash() % cap
	for {
		e := t.entries[i]
		if e.isEmpty() {
			return // not present
		}
		if e.isOccupied() && e.key == key {
			t.entries[i] = entry{key: nil, val: value.Bool(true)}
			return
		}
		i = (i + 1) % cap
	}
}

// grow doubles capacity (minimum minCapacity) and rehashes every live
// entry into the new table, dropping tombstones.
func (t *Table) grow() {
	newCap := len(t.entries) * 2
	if newCap < minCapacity {
		newCap = minCapacity
	}
	old := t.entries
	t.entries = make([]entry, newCap)
	t.count = 0
	for _, e := range old {
		if !e.isOccupied() {
			continue
		}
		i := t.findSlot(e.key.StringBytes(), e.key.StringHash())
		t.entries[i] = entry{key: e.key, val: value.Bool(true)}
		t.count++
	}
}

// Count returns the number of occupied-or-tombstone slots.
func (t *Table) Count() int { return t.count }

// Occupied returns the number of slots actually holding a live key,
// i.e. count minus any tombstones - used to check the testable property
// that count equals the number of occupied slots after sets only (no
// deletes).
func (t *Table) Occupied() int {
	n := 0
	for _, e := range t.entries {
		if e.isOccupied() {
			n++
		}
	}
	return n
}

// Capacity returns the table's current slot count.
func (t *Table) Capacity() int { return len(t.entries) }

// Intern returns the canonical Object for bytes, allocating and
// registering a new owned string via heap if none exists yet. This is
// the deduplicating constructor most callers should use instead of
// calling heap.NewString directly.
func (t *Table) Intern(heap *value.Heap, bytes []byte) *value.Object {
	hash := value.FNV1a(bytes)
	if existing := t.Find(bytes, hash); existing != nil {
		return existing
	}
	obj := heap.NewString(append([]byte(nil), bytes...), true)
	t.Set(obj)
	return obj
}
