package soltype

import (
	"strconv"
	"strings"
)

func suffix(loc DataLoc, ptr bool) string {
	var s string
	if loc != NoLoc {
		s += " " + loc.String()
	}
	if ptr {
		s += " ref"
	}
	return s
}

func path(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func join(types []Type) string {
	var s strings.Builder
	for i, t := range types {
		if t != nil {
			s.WriteString(t.String())
		}
		if i+1 < len(types) {
			s.WriteString(",")
		}
	}
	return s.String()
}

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }

func (Bool) String() string { return "bool" }

func (t Int) String() string {
	switch {
	case t.Bits == nil && t.Signed:
		return "int_const -1"
	case t.Bits == nil:
		return "int_const"
	case t.Signed:
		return "int" + itoa(uint64(*t.Bits))
	default:
		return "uint" + itoa(uint64(*t.Bits))
	}
}

func (t Fixed) String() string {
	if t.Signed {
		return "fixed"
	}
	return "ufixed"
}

func (t Address) String() string {
	if t.Payable {
		return "address payable"
	}
	return "address"
}

func (t Bytes) String() string {
	if t.Len != nil {
		return "bytes" + itoa(uint64(*t.Len))
	}
	return "bytes" + suffix(t.Loc, t.Ptr)
}

func (t String) String() string {
	return "string" + suffix(t.Loc, t.Ptr)
}

func (t Array) String() string {
	var n string
	if t.Len != nil {
		n = t.Len.Dec()
	}
	return t.Elem.String() + "[" + n + "]" + suffix(t.Loc, t.Ptr)
}

// A trailing bare "[]" after a dimension already reads as a slice.
func (t Slice) String() string {
	s := t.Elem.String()
	if strings.HasSuffix(s, "]") {
		return s + "[]"
	}
	return s + " slice"
}

func (t Struct) String() string {
	return "struct " + path(t.Scope, t.Name) + suffix(t.Loc, t.Ptr)
}

func (t Enum) String() string {
	return "enum " + path(t.Scope, t.Name)
}

func (t Module) String() string {
	return "module " + strconv.Quote(t.Name)
}

func (t Tuple) String() string {
	return "tuple(" + join(t.Elems) + ")"
}

func (t Func) String() string {
	var s strings.Builder
	s.WriteString("function (")
	s.WriteString(join(t.Params))
	s.WriteString(")")
	if t.Mutability != NoMutability {
		s.WriteString(" " + t.Mutability.String())
	}
	if t.Visibility != NoVisibility {
		s.WriteString(" " + t.Visibility.String())
	}
	if len(t.Returns) > 0 {
		s.WriteString(" returns (" + join(t.Returns) + ")")
	}
	return s.String()
}

func (t Mapping) String() string {
	return "mapping(" + t.Key.String() + " => " + t.Value.String() + ")" + suffix(t.Loc, t.Ptr)
}

func (t UserDefined) String() string {
	return path(t.Scope, t.Name)
}

func (t Contract) String() string {
	if t.Library {
		return "library " + path(t.Scope, t.Name)
	}
	return "contract " + path(t.Scope, t.Name)
}

func (t Magic) String() string {
	switch t.Kind {
	case Block:
		return "block"
	case Message:
		return "msg"
	case Transaction:
		return "tx"
	case ABI:
		return "abi"
	default:
		if t.Meta == nil {
			return "type()"
		}
		return "type(" + t.Meta.String() + ")"
	}
}

func (t Unknown) String() string {
	return "unknown(" + t.NodeType + ")"
}
