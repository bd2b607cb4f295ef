package typename

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/soltype"

	"github.com/holiman/uint256"
)

var (
	ErrNilNode  = errors.New("nil node")
	ErrNotDecl  = errors.New("not a variable declaration")
	ErrLocation = errors.New("unknown storage location")
)

var (
	visibilities = map[string]soltype.Visibility{
		"internal": soltype.Internal,
		"external": soltype.External,
		"private":  soltype.Private,
		"public":   soltype.Public,
	}
	mutabilities = map[string]soltype.Mutability{
		"constant": soltype.Constant,
		"payable":  soltype.Payable,
		"pure":     soltype.Pure,
		"view":     soltype.View,
	}
)

// Builds the type of a type name node.
//
// Unlike [soltype.Parse], an unrecognized node type is not an
// error: it yields [soltype.Unknown] so that the surrounding
// declaration can still be analyzed. Type strings that fail to
// parse are errors.
func Build(ctx context.Context, n *Node) (soltype.Type, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	var (
		t   soltype.Type
		err error
	)
	switch n.NodeType {
	case "ElementaryTypeName":
		s := n.Name
		if s == "address" && n.StateMutability == "payable" {
			s += " payable"
		}
		t, err = soltype.Parse(s)
	case "ArrayTypeName":
		t, err = buildArray(ctx, n)
	case "Mapping":
		t, err = buildMapping(ctx, n)
	case "UserDefinedTypeName":
		t, err = buildUserDefined(n)
	case "FunctionTypeName":
		t, err = buildFunc(n)
	default:
		slog.WarnContext(ctx, "unknown-type-name", "node", n.NodeType, "id", n.ID)
		return soltype.Unknown{NodeType: n.NodeType}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("building %s %d: %w", n.NodeType, n.ID, err)
	}
	return t, nil
}

func buildArray(ctx context.Context, n *Node) (soltype.Type, error) {
	elem, err := Build(ctx, n.BaseType)
	if err != nil {
		return nil, fmt.Errorf("base type: %w", err)
	}
	a := soltype.Array{Elem: elem}
	switch {
	case n.Length == nil:
	case n.Length.NodeType == "Literal" && n.Length.Kind == "number":
		k, err := uint256.FromDecimal(n.Length.Value)
		if err == nil {
			a.Len = k
			break
		}
		fallthrough
	default:
		// constant expressions are evaluated in the type string
		k, err := arrayLen(n.TypeDescriptions.TypeString)
		if err != nil {
			return nil, err
		}
		a.Len = k
	}
	return a, nil
}

func arrayLen(s string) (*uint256.Int, error) {
	t, err := soltype.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("array length: %w", err)
	}
	a, ok := t.(soltype.Array)
	if !ok || a.Len == nil {
		return nil, fmt.Errorf("array length: %q has no fixed length", s)
	}
	return a.Len, nil
}

func buildMapping(ctx context.Context, n *Node) (soltype.Type, error) {
	key, err := Build(ctx, n.KeyType)
	if err != nil {
		return nil, fmt.Errorf("key type: %w", err)
	}
	val, err := Build(ctx, n.ValueType)
	if err != nil {
		return nil, fmt.Errorf("value type: %w", err)
	}
	m := soltype.Mapping{Key: key, Value: val}
	if s := n.TypeDescriptions.TypeString; s != "" {
		t, err := soltype.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("mapping location: %w", err)
		}
		if tm, ok := t.(soltype.Mapping); ok {
			m.Loc, m.Ptr = tm.Loc, tm.Ptr
		}
	}
	return m, nil
}

// Only the type string says whether the name refers
// to a struct, enum, contract or value type.
func buildUserDefined(n *Node) (soltype.Type, error) {
	if s := n.TypeDescriptions.TypeString; s != "" {
		return soltype.Parse(s)
	}
	name := n.Name
	if n.PathNode != nil {
		name = n.PathNode.Name
	}
	return soltype.Parse(name)
}

func buildFunc(n *Node) (soltype.Type, error) {
	var (
		t   soltype.Func
		err error
	)
	if t.Params, err = slots(n.ParameterTypes); err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	if t.Returns, err = slots(n.ReturnParameterTypes); err != nil {
		return nil, fmt.Errorf("returns: %w", err)
	}
	t.Visibility = visibilities[n.Visibility]
	t.Mutability = mutabilities[n.StateMutability]
	return t, nil
}

func slots(pl *ParameterList) ([]soltype.Type, error) {
	if pl == nil {
		return nil, nil
	}
	var res []soltype.Type
	for i, p := range pl.Parameters {
		if p == nil {
			return nil, fmt.Errorf("slot %d: %w", i, ErrNilNode)
		}
		t, err := soltype.Parse(p.TypeDescriptions.TypeString)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		res = append(res, t)
	}
	return res, nil
}

// Builds the type of a VariableDeclaration and overlays its
// storageLocation. State variables printed with the "default"
// location live in storage. Declarations without a type name
// (as in old var statements) use the declaration's own type string.
func BuildVar(ctx context.Context, n *Node) (soltype.Type, error) {
	switch {
	case n == nil:
		return nil, ErrNilNode
	case n.NodeType != "VariableDeclaration":
		return nil, fmt.Errorf("%s %d: %w", n.NodeType, n.ID, ErrNotDecl)
	}
	loc, ok := soltype.ParseDataLoc(n.StorageLocation)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", n.Name, n.StorageLocation, ErrLocation)
	}
	if loc == soltype.NoLoc && n.StateVariable {
		loc = soltype.Storage
	}
	if n.TypeName == nil {
		t, err := soltype.Parse(n.TypeDescriptions.TypeString)
		if err != nil {
			return nil, fmt.Errorf("declaration %s: %w", n.Name, err)
		}
		return t, nil
	}
	t, err := Build(ctx, n.TypeName)
	if err != nil {
		return nil, fmt.Errorf("declaration %s: %w", n.Name, err)
	}
	if loc == soltype.NoLoc {
		return t, nil
	}
	return soltype.WithDataLocation(t, loc), nil
}
