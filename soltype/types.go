// Solidity type algebra
//
// Types are built from the textual type descriptions emitted by
// the compiler (see [Parse]) or from structured type name nodes
// (see package typename). A Type is immutable once built.
package soltype

import (
	"reflect"

	"github.com/holiman/uint256"
)

// Type is implemented by the variants in this file only.
type Type interface {
	String() string
	soltype()
}

type DataLoc byte

const (
	NoLoc DataLoc = iota
	Storage
	Memory
	Calldata
)

func (l DataLoc) String() string {
	switch l {
	case Storage:
		return "storage"
	case Memory:
		return "memory"
	case Calldata:
		return "calldata"
	default:
		return ""
	}
}

// Maps the storageLocation field of a variable declaration.
// "default" and the empty string both mean no location.
func ParseDataLoc(s string) (DataLoc, bool) {
	switch s {
	case "storage":
		return Storage, true
	case "memory":
		return Memory, true
	case "calldata":
		return Calldata, true
	case "default", "":
		return NoLoc, true
	default:
		return NoLoc, false
	}
}

type Visibility byte

const (
	NoVisibility Visibility = iota
	Internal
	External
	Private
	Public
)

func (v Visibility) String() string {
	switch v {
	case Internal:
		return "internal"
	case External:
		return "external"
	case Private:
		return "private"
	case Public:
		return "public"
	default:
		return ""
	}
}

type Mutability byte

const (
	NoMutability Mutability = iota
	Constant
	Payable
	Pure
	View
)

func (m Mutability) String() string {
	switch m {
	case Constant:
		return "constant"
	case Payable:
		return "payable"
	case Pure:
		return "pure"
	case View:
		return "view"
	default:
		return ""
	}
}

type MagicKind byte

const (
	Block MagicKind = iota
	Message
	Transaction
	ABI
	Meta
)

type Bool struct{}

// Bits is nil for the type of an untyped integer literal.
type Int struct {
	Signed bool
	Bits   *uint16
}

type Fixed struct {
	Signed bool
}

type Address struct {
	Payable bool
}

// Len is nil for dynamic bytes.
type Bytes struct {
	Len *uint8
	Loc DataLoc
	Ptr bool
}

type String struct {
	Loc DataLoc
	Ptr bool
}

// Len is nil for dynamically sized arrays.
type Array struct {
	Elem Type
	Len  *uint256.Int
	Loc  DataLoc
	Ptr  bool
}

type Slice struct {
	Elem Type
}

type Struct struct {
	Name  string
	Scope string
	Loc   DataLoc
	Ptr   bool
}

type Enum struct {
	Name  string
	Scope string
}

type Module struct {
	Name string
}

// A nil element marks a skipped position,
// for example the middle value in (a, , c) = f().
type Tuple struct {
	Elems []Type
}

type Func struct {
	Params     []Type
	Returns    []Type
	Visibility Visibility
	Mutability Mutability
}

type Mapping struct {
	Key   Type
	Value Type
	Loc   DataLoc
	Ptr   bool
}

type UserDefined struct {
	Name  string
	Scope string
}

type Contract struct {
	Name    string
	Library bool
	Scope   string
}

// Meta is set only when Kind is [Meta].
type Magic struct {
	Kind MagicKind
	Meta Type
}

// Placeholder for a structured node shape that could not be
// interpreted. [Parse] never returns it.
type Unknown struct {
	NodeType string
}

func (Bool) soltype()        {}
func (Int) soltype()         {}
func (Fixed) soltype()       {}
func (Address) soltype()     {}
func (Bytes) soltype()       {}
func (String) soltype()      {}
func (Array) soltype()       {}
func (Slice) soltype()       {}
func (Struct) soltype()      {}
func (Enum) soltype()        {}
func (Module) soltype()      {}
func (Tuple) soltype()       {}
func (Func) soltype()        {}
func (Mapping) soltype()     {}
func (UserDefined) soltype() {}
func (Contract) soltype()    {}
func (Magic) soltype()       {}
func (Unknown) soltype()     {}

func bits(n uint16) *uint16 { return &n }

func IntN(n uint16) Int  { return Int{Signed: true, Bits: bits(n)} }
func UintN(n uint16) Int { return Int{Bits: bits(n)} }

func IntConst(signed bool) Int { return Int{Signed: signed} }

func BytesN(n uint8) Bytes { return Bytes{Len: &n} }

func ArrayOf(e Type) Array { return Array{Elem: e} }

func ArrayK(k uint64, e Type) Array {
	return Array{Elem: e, Len: uint256.NewInt(k)}
}

func TupleOf(elems ...Type) Tuple { return Tuple{Elems: elems} }

func MetaOf(t Type) Magic { return Magic{Kind: Meta, Meta: t} }

// Reports whether a and b describe the same type,
// including locations and pointer flags.
func Equal(a, b Type) bool {
	return reflect.DeepEqual(a, b)
}

// Returns the location of t and whether t has a location slot.
func DataLocation(t Type) (DataLoc, bool) {
	switch t := t.(type) {
	case Bytes:
		return t.Loc, t.Len == nil
	case String:
		return t.Loc, true
	case Array:
		return t.Loc, true
	case Struct:
		return t.Loc, true
	case Mapping:
		return t.Loc, true
	default:
		return NoLoc, false
	}
}

// Returns a copy of t with its top-level location replaced by loc.
// Nested types keep their own locations. Types without a location
// slot (value types, tuples, slices, functions, magic) are
// returned unchanged.
func WithDataLocation(t Type, loc DataLoc) Type {
	switch t := t.(type) {
	case Bytes:
		if t.Len != nil {
			return t
		}
		t.Loc = loc
		return t
	case String:
		t.Loc = loc
		return t
	case Array:
		t.Loc = loc
		return t
	case Struct:
		t.Loc = loc
		return t
	case Mapping:
		t.Loc = loc
		return t
	default:
		return t
	}
}
