package typename

import (
	"context"
	"errors"
	"testing"

	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/soltype"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/tc"
	"kr.dev/diff"
)

func TestBuild(t *testing.T) {
	cases := []struct {
		desc  string
		input string
		want  soltype.Type
	}{
		{
			"elementary",
			`{"id": 1, "nodeType": "ElementaryTypeName", "name": "uint256",
			  "typeDescriptions": {"typeIdentifier": "t_uint256", "typeString": "uint256"}}`,
			soltype.UintN(256),
		},
		{
			"payable address",
			`{"id": 2, "nodeType": "ElementaryTypeName", "name": "address", "stateMutability": "payable",
			  "typeDescriptions": {"typeString": "address payable"}}`,
			soltype.Address{Payable: true},
		},
		{
			"fixed array",
			`{"id": 3, "nodeType": "ArrayTypeName",
			  "baseType": {"id": 4, "nodeType": "ElementaryTypeName", "name": "uint8"},
			  "length": {"id": 5, "nodeType": "Literal", "kind": "number", "value": "3"},
			  "typeDescriptions": {"typeString": "uint8[3]"}}`,
			soltype.ArrayK(3, soltype.UintN(8)),
		},
		{
			"dynamic of fixed",
			`{"id": 6, "nodeType": "ArrayTypeName",
			  "baseType": {
			    "id": 7, "nodeType": "ArrayTypeName",
			    "baseType": {"id": 8, "nodeType": "ElementaryTypeName", "name": "uint256"},
			    "length": {"id": 9, "nodeType": "Literal", "kind": "number", "value": "2"}
			  },
			  "length": null,
			  "typeDescriptions": {"typeString": "uint256[2][]"}}`,
			soltype.ArrayOf(soltype.ArrayK(2, soltype.UintN(256))),
		},
		{
			"constant length",
			`{"id": 10, "nodeType": "ArrayTypeName",
			  "baseType": {"id": 11, "nodeType": "ElementaryTypeName", "name": "bool"},
			  "length": {"id": 12, "nodeType": "Identifier", "name": "N"},
			  "typeDescriptions": {"typeString": "bool[4]"}}`,
			soltype.ArrayK(4, soltype.Bool{}),
		},
		{
			"mapping",
			`{"id": 13, "nodeType": "Mapping",
			  "keyType": {"id": 14, "nodeType": "ElementaryTypeName", "name": "address"},
			  "valueType": {"id": 15, "nodeType": "ElementaryTypeName", "name": "uint256"},
			  "typeDescriptions": {"typeString": "mapping(address => uint256)"}}`,
			soltype.Mapping{Key: soltype.Address{}, Value: soltype.UintN(256)},
		},
		{
			"struct",
			`{"id": 16, "nodeType": "UserDefinedTypeName",
			  "pathNode": {"id": 17, "nodeType": "IdentifierPath", "name": "C.S"},
			  "typeDescriptions": {"typeString": "struct C.S"}}`,
			soltype.Struct{Name: "S", Scope: "C"},
		},
		{
			"path without type string",
			`{"id": 18, "nodeType": "UserDefinedTypeName",
			  "pathNode": {"id": 19, "nodeType": "IdentifierPath", "name": "L.T"}}`,
			soltype.UserDefined{Name: "T", Scope: "L"},
		},
		{
			"function",
			`{"id": 20, "nodeType": "FunctionTypeName", "visibility": "external", "stateMutability": "view",
			  "parameterTypes": {"parameters": [
			    {"id": 21, "nodeType": "VariableDeclaration", "typeDescriptions": {"typeString": "uint256"}},
			    {"id": 22, "nodeType": "VariableDeclaration", "typeDescriptions": {"typeString": "bytes memory"}}
			  ]},
			  "returnParameterTypes": {"parameters": [
			    {"id": 23, "nodeType": "VariableDeclaration", "typeDescriptions": {"typeString": "bool"}}
			  ]}}`,
			soltype.Func{
				Params:     []soltype.Type{soltype.UintN(256), soltype.Bytes{Loc: soltype.Memory}},
				Returns:    []soltype.Type{soltype.Bool{}},
				Visibility: soltype.External,
				Mutability: soltype.View,
			},
		},
		{
			"nonpayable function",
			`{"id": 24, "nodeType": "FunctionTypeName", "visibility": "internal", "stateMutability": "nonpayable",
			  "parameterTypes": {"parameters": []}, "returnParameterTypes": {"parameters": []}}`,
			soltype.Func{Visibility: soltype.Internal},
		},
		{
			"unknown",
			`{"id": 25, "nodeType": "YulTypeName"}`,
			soltype.Unknown{NodeType: "YulTypeName"},
		},
		{
			"unknown element",
			`{"id": 26, "nodeType": "ArrayTypeName", "baseType": {"id": 27, "nodeType": "Foo"}}`,
			soltype.ArrayOf(soltype.Unknown{NodeType: "Foo"}),
		},
	}
	ctx := context.Background()
	for _, c := range cases {
		n, err := Decode([]byte(c.input))
		if err != nil {
			t.Errorf("%s: %s", c.desc, err)
			continue
		}
		got, err := Build(ctx, n)
		if err != nil {
			t.Errorf("%s: %s", c.desc, err)
			continue
		}
		diff.Test(t, t.Errorf, got, c.want)
	}
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := Build(ctx, nil)
	tc.WantErr(t, err, ErrNilNode)

	n, err := Decode([]byte(`{"id": 1, "nodeType": "ArrayTypeName"}`))
	tc.NoErr(t, err)
	_, err = Build(ctx, n)
	tc.WantErr(t, err, ErrNilNode)

	n, err = Decode([]byte(`{"id": 2, "nodeType": "UserDefinedTypeName",
		"typeDescriptions": {"typeString": "struct A.B.C"}}`))
	tc.NoErr(t, err)
	_, err = Build(ctx, n)
	tc.WantErr(t, err, soltype.ErrShape)
	var perr *soltype.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("want *soltype.ParseError got: %v", err)
	}
	diff.Test(t, t.Errorf, perr.Remaining, ".C")
}

func TestBuildVar(t *testing.T) {
	cases := []struct {
		desc  string
		input string
		want  soltype.Type
	}{
		{
			"memory string",
			`{"id": 1, "nodeType": "VariableDeclaration", "name": "s", "storageLocation": "memory",
			  "typeName": {"id": 2, "nodeType": "ElementaryTypeName", "name": "string"},
			  "typeDescriptions": {"typeString": "string memory"}}`,
			soltype.String{Loc: soltype.Memory},
		},
		{
			"state array",
			`{"id": 3, "nodeType": "VariableDeclaration", "name": "xs", "storageLocation": "default", "stateVariable": true,
			  "typeName": {
			    "id": 4, "nodeType": "ArrayTypeName",
			    "baseType": {"id": 5, "nodeType": "ElementaryTypeName", "name": "uint256"}
			  },
			  "typeDescriptions": {"typeString": "uint256[] storage ref"}}`,
			soltype.Array{Elem: soltype.UintN(256), Loc: soltype.Storage},
		},
		{
			"state value type",
			`{"id": 30, "nodeType": "VariableDeclaration", "name": "n", "storageLocation": "default", "stateVariable": true,
			  "typeName": {"id": 31, "nodeType": "ElementaryTypeName", "name": "uint8"}}`,
			soltype.UintN(8),
		},
		{
			"local default",
			`{"id": 32, "nodeType": "VariableDeclaration", "name": "xs", "storageLocation": "default",
			  "typeName": {
			    "id": 33, "nodeType": "ArrayTypeName",
			    "baseType": {"id": 34, "nodeType": "ElementaryTypeName", "name": "uint256"}
			  }}`,
			soltype.ArrayOf(soltype.UintN(256)),
		},
		{
			"calldata struct",
			`{"id": 6, "nodeType": "VariableDeclaration", "name": "p", "storageLocation": "calldata",
			  "typeName": {"id": 7, "nodeType": "UserDefinedTypeName", "typeDescriptions": {"typeString": "struct S"}}}`,
			soltype.Struct{Name: "S", Loc: soltype.Calldata},
		},
		{
			"value type ignores location",
			`{"id": 8, "nodeType": "VariableDeclaration", "name": "n", "storageLocation": "memory",
			  "typeName": {"id": 9, "nodeType": "ElementaryTypeName", "name": "uint8"}}`,
			soltype.UintN(8),
		},
		{
			"no type name",
			`{"id": 10, "nodeType": "VariableDeclaration", "name": "v", "storageLocation": "memory",
			  "typeDescriptions": {"typeString": "uint256[] memory"}}`,
			soltype.Array{Elem: soltype.UintN(256), Loc: soltype.Memory},
		},
	}
	ctx := context.Background()
	for _, c := range cases {
		n, err := Decode([]byte(c.input))
		if err != nil {
			t.Errorf("%s: %s", c.desc, err)
			continue
		}
		got, err := BuildVar(ctx, n)
		if err != nil {
			t.Errorf("%s: %s", c.desc, err)
			continue
		}
		diff.Test(t, t.Errorf, got, c.want)
	}
}

func TestBuildVar_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := BuildVar(ctx, nil)
	tc.WantErr(t, err, ErrNilNode)

	_, err = BuildVar(ctx, &Node{NodeType: "ElementaryTypeName", Name: "bool"})
	tc.WantErr(t, err, ErrNotDecl)

	_, err = BuildVar(ctx, &Node{
		NodeType:        "VariableDeclaration",
		StorageLocation: "transient",
		TypeName:        &Node{NodeType: "ElementaryTypeName", Name: "bool"},
	})
	tc.WantErr(t, err, ErrLocation)

	_, err = BuildVar(ctx, &Node{
		NodeType:         "VariableDeclaration",
		TypeDescriptions: TypeDescriptions{TypeString: "mapping(struct S => bool)"},
	})
	tc.WantErr(t, err, soltype.ErrMismatch)
}

func TestDecode(t *testing.T) {
	_, err := Decode([]byte(`{"id": "x"`))
	if err == nil {
		t.Error("want error for malformed json")
	}
}
