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

// Package value implements the tagged Value union (nil, bool, number,
// heap object) and the heap-allocated object header strings are built on.
package value

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// Kind tags a Value's variant. A wrapper struct, not a bare int, so a
// stray assignment from an unrelated int is caught at compile time.
type Kind struct{ k int }

var (
	KindNil    = Kind{0}
	KindBool   = Kind{1}
	KindNumber = Kind{2}
	KindObject = Kind{3}
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindObject:
		return "Object"
	default:
		return fmt.Sprintf("Kind(%d)", k.k)
	}
}

// Value is a tagged union over nil, booleans, numbers, and heap
// objects. The zero Value is Nil.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	obj     *Object
}

// Nil is the single Nil value.
var Nil = Value{kind: KindNil}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number constructs a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, number: f} }

// Obj constructs a Value wrapping a heap object.
func Obj(o *Object) Value { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsBool panics if v is not a boolean; callers must check Kind first,
// exactly as the VM's runtime type checks do before calling it.
func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic(fmt.Sprintf("value: AsBool on %s", v.kind))
	}
	return v.boolean
}

// AsNumber panics if v is not a number.
func (v Value) AsNumber() float64 {
	if v.kind != KindNumber {
		panic(fmt.Sprintf("value: AsNumber on %s", v.kind))
	}
	return v.number
}

// AsObject panics if v is not an object.
func (v Value) AsObject() *Object {
	if v.kind != KindObject {
		panic(fmt.Sprintf("value: AsObject on %s", v.kind))
	}
	return v.obj
}

// Equal: values of different tags are never equal, Nil equals Nil,
// booleans and numbers compare by value, and objects compare by
// reference identity (sound because of interning - see package intern).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// Print renders v the way the VM's Return opcode does: nil -> "nil",
// booleans -> "true"/"false", numbers -> shortest round-trip decimal,
// strings -> their bytes.
func Print(v Value) string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case KindObject:
		return v.obj.printObject()
	default:
		return "<invalid value>"
	}
}

// ObjectKind tags an Object's variant. String is the only one so far.
type ObjectKind struct{ k int }

var ObjectKindString = ObjectKind{0}

// Object is a discriminated header over the heap-allocated variants,
// carrying an intrusive Next pointer so a Heap can walk every object it
// has ever allocated. There is no collector yet; the chain exists so a
// future one has something to walk.
type Object struct {
	Kind ObjectKind
	Next *Object

	str *stringData
}

type stringData struct {
	bytes []byte
	hash  uint32
	owned bool
}

func (o *Object) printObject() string {
	switch o.Kind {
	case ObjectKindString:
		return string(o.str.bytes)
	default:
		return "<object>"
	}
}

// StringBytes returns the string object's byte content.
func (o *Object) StringBytes() []byte { return o.str.bytes }

// StringHash returns the string object's cached FNV-1a hash.
func (o *Object) StringHash() uint32 { return o.str.hash }

// StringOwned reports whether the string's backing buffer is heap-owned
// (true) or borrowed from another owner such as the source buffer
// (false, e.g. a compile-time constant whose bytes live in the source
// buffer).
func (o *Object) StringOwned() bool { return o.str.owned }

// FNV1a computes the 32-bit FNV-1a hash used to key interned strings.
func FNV1a(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

// Heap owns the intrusive chain of every object allocated during an
// interpreter's lifetime. This is per-interpreter state, not a
// process-wide global - construct one per VM.
type Heap struct {
	head *Object
}

// NewString allocates a fresh String object and links it into the heap's
// object chain. owned records whether bytes is a heap-owned copy (true)
// or borrowed from some other owner, such as the source buffer, that
// outlives this object (false). It does not intern - see package intern
// for the deduplicating constructor most callers should use instead.
func (h *Heap) NewString(bytes []byte, owned bool) *Object {
	o := &Object{
		Kind: ObjectKindString,
		str:  &stringData{bytes: bytes, hash: FNV1a(bytes), owned: owned},
	}
	o.Next = h.head
	h.head = o
	return o
}

// NewBorrowedString allocates a String object whose buffer is not
// heap-owned. Nothing in the compiler emits one yet; the constructor
// exists for a future compile-time string literal whose bytes live in
// the source buffer.
func (h *Heap) NewBorrowedString(bytes []byte) *Object {
	return h.NewString(bytes, false)
}

// Objects returns every object the heap has allocated, most-recent
// first, mirroring the intrusive chain's link order.
func (h *Heap) Objects() []*Object {
	var all []*Object
	for o := h.head; o != nil; o = o.Next {
		all = append(all, o)
	}
	return all
}
