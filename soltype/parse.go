package soltype

import (
	"strconv"

	"github.com/holiman/uint256"
)

// Productions are tried in order and the first match wins.
// Keywords are identifiers that the productions recognize
// by text, so a keyword may still be used as a type name
// where no production claims it.
//
//	type_string    = data_type EOI
//	data_type      = slice_type | array_type | non_array_type
//	non_array_type = function_type | mapping_type | struct_type
//	               | elementary_type | tuple_type | magic_type | type_name
//	array_type     = non_array_type dimension {dimension}
//	dimension      = "[" [number] "]" [location] [pointer]
//	slice_type     = (array_type | non_array_type) "[" "]"
//	               | (array_type | non_array_type) "slice"
//	location       = "storage" | "memory" | "calldata" | "default"
//	pointer        = "ref" | "pointer"

// Parses a type description as printed by the compiler,
// for example "mapping(address => uint256[] storage ref)".
// On failure the returned error is a *ParseError and the
// returned Type is nil.
func Parse(s string) (Type, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{input: s, toks: toks}
	t, err := p.dataType(withSlice | withMagic)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tkEOF {
		return nil, p.fail("type_string", ErrMismatch, nil)
	}
	return t, nil
}

type mode byte

const (
	withSlice mode = 1 << iota
	withMagic
)

// Nesting beyond this fails with ErrShape.
const maxDepth = 128

type parser struct {
	input string
	toks  []token
	i     int
	depth int
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) peek2() token {
	if p.i+1 < len(p.toks) {
		return p.toks[p.i+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tkEOF {
		p.i++
	}
	return t
}

func (p *parser) accept(text string) bool {
	if p.peek().is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(prod, text string) error {
	if !p.accept(text) {
		return p.fail(prod, ErrMismatch, nil)
	}
	return nil
}

func (p *parser) fail(prod string, kind, err error) *ParseError {
	return &ParseError{
		Production: prod,
		Remaining:  p.input[p.peek().pos:],
		Kind:       kind,
		Err:        err,
	}
}

func (p *parser) dataType(m mode) (Type, error) {
	if p.depth++; p.depth > maxDepth {
		return nil, p.fail("data_type", ErrShape, errTooDeep)
	}
	defer func() { p.depth-- }()
	base, err := p.nonArrayType(m)
	if err != nil {
		return nil, err
	}
	t, err := p.dimensions(base, m&withSlice != 0)
	if err != nil {
		return nil, err
	}
	if m&withSlice != 0 && p.accept("slice") {
		t = Slice{Elem: t}
	}
	return t, nil
}

type dimension struct {
	n   *uint256.Int
	loc DataLoc
	ptr bool
}

// Reads bracket groups left to right. The leftmost group wraps
// base first, so T[2][3] is a 3 element array of T[2].
// With slices enabled, a trailing bare "[]" becomes a Slice.
func (p *parser) dimensions(base Type, slices bool) (Type, error) {
	var dims []dimension
	for p.peek().is("[") {
		p.next()
		var d dimension
		if tok := p.peek(); tok.kind == tkNumber {
			n, err := uint256.FromDecimal(tok.text)
			if err != nil {
				return nil, p.fail("dimension", ErrNumber, err)
			}
			p.next()
			d.n = n
		}
		if err := p.expect("dimension", "]"); err != nil {
			return nil, err
		}
		d.loc, d.ptr = p.locPtr()
		dims = append(dims, d)
	}
	var sliced bool
	if k := len(dims) - 1; slices && k >= 0 {
		if d := dims[k]; d.n == nil && d.loc == NoLoc && !d.ptr {
			dims, sliced = dims[:k], true
		}
	}
	t := base
	for _, d := range dims {
		t = Array{Elem: t, Len: d.n, Loc: d.loc, Ptr: d.ptr}
	}
	if sliced {
		t = Slice{Elem: t}
	}
	return t, nil
}

// Both parts are optional and default to absent.
func (p *parser) locPtr() (DataLoc, bool) {
	var loc DataLoc
	switch tok := p.peek(); {
	case tok.is("storage"):
		loc = Storage
		p.next()
	case tok.is("memory"):
		loc = Memory
		p.next()
	case tok.is("calldata"):
		loc = Calldata
		p.next()
	case tok.is("default"):
		p.next()
	}
	ptr := p.accept("ref") || p.accept("pointer")
	return loc, ptr
}

func (p *parser) nonArrayType(m mode) (Type, error) {
	tok := p.peek()
	if tok.kind != tkIdent {
		return nil, p.fail("non_array_type", ErrMismatch, nil)
	}
	switch {
	case tok.is("function"):
		return p.functionType(m)
	case tok.is("mapping"):
		return p.mappingType(m)
	case tok.is("struct"):
		return p.structType()
	}
	if t, ok, err := p.elementaryType(); ok || err != nil {
		return t, err
	}
	if tok.is("tuple") && p.peek2().is("(") {
		return p.tupleType(m)
	}
	if m&withMagic != 0 {
		if t, ok, err := p.magicType(m); ok || err != nil {
			return t, err
		}
	}
	return p.typeName()
}

// Reports ok=false without consuming input when the
// next token does not start an elementary type.
func (p *parser) elementaryType() (Type, bool, error) {
	tok := p.peek()
	if tok.kind != tkIdent {
		return nil, false, nil
	}
	g := grammar()
	switch text := tok.text; {
	case text == "bool":
		p.next()
		return Bool{}, true, nil
	case text == "address":
		p.next()
		return Address{Payable: p.accept("payable")}, true, nil
	case text == "string":
		p.next()
		loc, ptr := p.locPtr()
		return String{Loc: loc, Ptr: ptr}, true, nil
	case text == "int_const":
		p.next()
		t, err := p.intConst()
		return t, true, err
	case text == "rational_const":
		p.next()
		t, err := p.rationalConst()
		return t, true, err
	case text == "literal_string":
		p.next()
		t, err := p.literalString()
		return t, true, err
	case text == "enum":
		p.next()
		scope, name, err := p.namePath()
		if err != nil {
			return nil, true, err
		}
		return Enum{Name: name, Scope: scope}, true, nil
	case text == "module":
		p.next()
		t, err := p.module()
		return t, true, err
	case text == "contract", text == "library":
		p.next()
		p.accept("super")
		scope, name, err := p.namePath()
		if err != nil {
			return nil, true, err
		}
		return Contract{Name: name, Scope: scope, Library: text == "library"}, true, nil
	case g.ints.MatchString(text):
		t, err := p.intType(g.ints.FindStringSubmatch(text))
		return t, true, err
	case g.bytes.MatchString(text):
		t, err := p.bytesType(g.bytes.FindStringSubmatch(text)[1])
		return t, true, err
	case g.fixed.MatchString(text):
		p.next()
		return Fixed{Signed: text[0] != 'u'}, true, nil
	default:
		return nil, false, nil
	}
}

// m is the submatch of grammar().ints: [text, "u" or "", digits]
func (p *parser) intType(m []string) (Type, error) {
	t := Int{Signed: m[1] == ""}
	if m[2] == "" {
		t.Bits = bits(256)
		p.next()
		return t, nil
	}
	n, err := strconv.ParseUint(m[2], 10, 16)
	if err != nil {
		return nil, p.fail("int_type", ErrNumber, err)
	}
	p.next()
	t.Bits = bits(uint16(n))
	return t, nil
}

func (p *parser) bytesType(digits string) (Type, error) {
	if digits == "" {
		p.next()
		loc, ptr := p.locPtr()
		return Bytes{Loc: loc, Ptr: ptr}, nil
	}
	n, err := strconv.ParseUint(digits, 10, 8)
	switch {
	case err != nil:
		return nil, p.fail("bytes_type", ErrNumber, err)
	case n < 1 || n > 32:
		return nil, p.fail("bytes_type", ErrNumber, errBytesLen)
	}
	p.next()
	return BytesN(uint8(n)), nil
}

// The literal value itself is not validated.
func (p *parser) intConst() (Type, error) {
	signed := p.accept("-")
	if p.peek().isNumber() {
		p.next()
	} else if signed {
		return nil, p.fail("int_const", ErrMismatch, nil)
	}
	return IntConst(signed), nil
}

func (p *parser) rationalConst() (Type, error) {
	signed := p.accept("-")
	if !p.peek().isNumber() {
		return nil, p.fail("rational_const", ErrMismatch, nil)
	}
	p.next()
	if p.accept("/") {
		if !p.peek().isNumber() {
			return nil, p.fail("rational_const", ErrMismatch, nil)
		}
		p.next()
	}
	return Fixed{Signed: signed}, nil
}

// literal_string "abc" | literal_string hex"00" |
// literal_string (contains invalid UTF-8 sequence at position 3)
func (p *parser) literalString() (Type, error) {
	switch {
	case p.peek().kind == tkString:
		p.next()
	case p.peek().is("("):
		for depth := 0; ; {
			tok := p.next()
			switch {
			case tok.kind == tkEOF:
				return nil, p.fail("literal_string", ErrMismatch, nil)
			case tok.is("("):
				depth++
			case tok.is(")"):
				depth--
			}
			if depth == 0 {
				break
			}
		}
	default:
		return nil, p.fail("literal_string", ErrMismatch, nil)
	}
	return Bytes{}, nil
}

func (p *parser) module() (Type, error) {
	tok := p.peek()
	if tok.kind != tkString || tok.text[0] != '"' {
		return nil, p.fail("module", ErrMismatch, nil)
	}
	p.next()
	name, err := strconv.Unquote(tok.text)
	if err != nil {
		name = tok.text[1 : len(tok.text)-1]
	}
	return Module{Name: name}, nil
}

// A name is "Name" or "Scope.Name". Scopes are not resolved here.
func (p *parser) namePath() (string, string, error) {
	if p.peek().kind != tkIdent {
		return "", "", p.fail("type_name", ErrMismatch, nil)
	}
	parts := []string{p.next().text}
	for p.peek().is(".") {
		switch {
		case p.peek2().kind != tkIdent:
			return "", "", p.fail("type_name", ErrMismatch, nil)
		case len(parts) == 2:
			return "", "", p.fail("type_name", ErrShape, errTooManySegments)
		}
		p.next()
		parts = append(parts, p.next().text)
	}
	if len(parts) == 1 {
		return "", parts[0], nil
	}
	return parts[0], parts[1], nil
}

func (p *parser) typeName() (Type, error) {
	scope, name, err := p.namePath()
	if err != nil {
		return nil, err
	}
	return UserDefined{Name: name, Scope: scope}, nil
}

func (p *parser) structType() (Type, error) {
	if err := p.expect("struct_type", "struct"); err != nil {
		return nil, err
	}
	scope, name, err := p.namePath()
	if err != nil {
		return nil, err
	}
	loc, ptr := p.locPtr()
	return Struct{Name: name, Scope: scope, Loc: loc, Ptr: ptr}, nil
}

var keyExcluded = map[string]bool{
	"mapping":     true,
	"struct":      true,
	"tuple":       true,
	"function":    true,
	"magic":       true,
	"type":        true,
	"block":       true,
	"msg":         true,
	"message":     true,
	"tx":          true,
	"transaction": true,
	"abi":         true,
}

// Keys recurse only into elementary types, plain names and
// array dimensions.
func (p *parser) mappingKey() (Type, error) {
	t, ok, err := p.elementaryType()
	if err != nil {
		return nil, err
	}
	if !ok {
		if tok := p.peek(); tok.kind != tkIdent || keyExcluded[tok.text] {
			return nil, p.fail("mapping_key", ErrMismatch, nil)
		}
		if t, err = p.typeName(); err != nil {
			return nil, err
		}
	}
	return p.dimensions(t, false)
}

func (p *parser) mappingType(m mode) (Type, error) {
	if err := p.expect("mapping_type", "mapping"); err != nil {
		return nil, err
	}
	if err := p.expect("mapping_type", "("); err != nil {
		return nil, err
	}
	key, err := p.mappingKey()
	if err != nil {
		return nil, err
	}
	if err := p.expect("mapping_type", "=>"); err != nil {
		return nil, err
	}
	val, err := p.dataType(m | withSlice)
	if err != nil {
		return nil, err
	}
	if err := p.expect("mapping_type", ")"); err != nil {
		return nil, err
	}
	loc, ptr := p.locPtr()
	return Mapping{Key: key, Value: val, Loc: loc, Ptr: ptr}, nil
}

func (p *parser) tupleType(m mode) (Type, error) {
	if err := p.expect("tuple_type", "tuple"); err != nil {
		return nil, err
	}
	if err := p.expect("tuple_type", "("); err != nil {
		return nil, err
	}
	var t Tuple
	if p.accept(")") {
		return t, nil
	}
	for {
		var (
			e   Type
			err error
		)
		if tok := p.peek(); !tok.is(",") && !tok.is(")") {
			if e, err = p.dataType(m | withSlice); err != nil {
				return nil, err
			}
		}
		t.Elems = append(t.Elems, e)
		if p.accept(",") {
			continue
		}
		if err := p.expect("tuple_type", ")"); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Parameter and return lists. Unlike tuples, every slot
// must hold a type. The opening paren is already consumed.
func (p *parser) typeList(m mode) ([]Type, error) {
	var res []Type
	if p.accept(")") {
		return res, nil
	}
	for {
		t, err := p.dataType(m | withSlice)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
		if p.accept(",") {
			continue
		}
		if err := p.expect("function_type", ")"); err != nil {
			return nil, err
		}
		return res, nil
	}
}

var (
	mutabilities = map[string]Mutability{
		"constant": Constant,
		"payable":  Payable,
		"pure":     Pure,
		"view":     View,
	}
	visibilities = map[string]Visibility{
		"internal": Internal,
		"external": External,
		"private":  Private,
		"public":   Public,
	}
)

func (p *parser) functionType(m mode) (Type, error) {
	if err := p.expect("function_type", "function"); err != nil {
		return nil, err
	}
	// declarations print their name: function C.f(uint256)
	if tok := p.peek(); tok.kind == tkIdent && !p.functionKeyword(tok.text) {
		p.next()
		for p.peek().is(".") && p.peek2().kind == tkIdent {
			p.next()
			p.next()
		}
	}
	var (
		t   Func
		err error
	)
	if p.accept("(") {
		if t.Params, err = p.typeList(m); err != nil {
			return nil, err
		}
	}
	for tok := p.peek(); tok.kind == tkIdent; tok = p.peek() {
		if mut, ok := mutabilities[tok.text]; ok {
			if t.Mutability != NoMutability {
				return nil, p.fail("function_type", ErrShape, errRepeatedMutability)
			}
			t.Mutability = mut
			p.next()
			continue
		}
		if vis, ok := visibilities[tok.text]; ok {
			if t.Visibility != NoVisibility {
				return nil, p.fail("function_type", ErrShape, errRepeatedVisibility)
			}
			t.Visibility = vis
			p.next()
			continue
		}
		break
	}
	if p.accept("returns") {
		if err := p.expect("function_type", "("); err != nil {
			return nil, err
		}
		if t.Returns, err = p.typeList(m); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (p *parser) functionKeyword(s string) bool {
	_, mut := mutabilities[s]
	_, vis := visibilities[s]
	return mut || vis || s == "returns"
}

var magics = map[string]MagicKind{
	"block":       Block,
	"msg":         Message,
	"message":     Message,
	"tx":          Transaction,
	"transaction": Transaction,
	"abi":         ABI,
}

func (p *parser) magicType(m mode) (Type, bool, error) {
	tok := p.peek()
	switch {
	case tok.is("magic"):
		p.next()
		kind, ok := magics[p.peek().text]
		if !ok || p.peek().kind != tkIdent {
			return nil, true, p.fail("magic_type", ErrMismatch, nil)
		}
		p.next()
		return Magic{Kind: kind}, true, nil
	case tok.is("type") && p.peek2().is("("):
		p.next()
		p.next()
		inner, err := p.dataType(m &^ (withMagic | withSlice))
		if err != nil {
			return nil, true, err
		}
		if err := p.expect("magic_type", ")"); err != nil {
			return nil, true, err
		}
		return MetaOf(inner), true, nil
	}
	if kind, ok := magics[tok.text]; ok && !p.peek2().is(".") {
		p.next()
		return Magic{Kind: kind}, true, nil
	}
	return nil, false, nil
}
