// structured type names
//
// Builds [soltype.Type] values from the type name nodes of the
// compiler's JSON AST. Shapes the nodes do not describe well
// (leaf types, function slots, user defined names) are read from
// the type string the compiler attaches to every node.
package typename

import (
	"fmt"

	"github.com/goccy/go-json"
)

type TypeDescriptions struct {
	TypeString string `json:"typeString"`
}

type ParameterList struct {
	Parameters []*Node `json:"parameters"`
}

// Node holds the fields of the JSON AST that the type name
// kinds and variable declarations use. Other fields are ignored.
type Node struct {
	ID               int64            `json:"id"`
	NodeType         string           `json:"nodeType"`
	Name             string           `json:"name"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`

	// ElementaryTypeName, FunctionTypeName
	StateMutability string `json:"stateMutability"`
	Visibility      string `json:"visibility"`

	// ArrayTypeName
	BaseType *Node `json:"baseType"`
	Length   *Node `json:"length"`

	// Literal
	Kind  string `json:"kind"`
	Value string `json:"value"`

	// Mapping
	KeyType   *Node `json:"keyType"`
	ValueType *Node `json:"valueType"`

	// UserDefinedTypeName
	PathNode *Node `json:"pathNode"`

	// FunctionTypeName
	ParameterTypes       *ParameterList `json:"parameterTypes"`
	ReturnParameterTypes *ParameterList `json:"returnParameterTypes"`

	// VariableDeclaration
	TypeName        *Node  `json:"typeName"`
	StorageLocation string `json:"storageLocation"`
	StateVariable   bool   `json:"stateVariable"`
}

func Decode(data []byte) (*Node, error) {
	n := &Node{}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("decoding type name node: %w", err)
	}
	return n, nil
}
