package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/soltype"

	"github.com/goccy/go-json"
	"kr.dev/diff"
)

func TestParse(t *testing.T) {
	cases := []struct {
		query  url.Values
		status int
		want   []TypeView
	}{
		{
			url.Values{"t": {"uint", "string storage ref"}},
			http.StatusOK,
			[]TypeView{
				{Input: "uint", Type: "uint256", Kind: "Int"},
				{Input: "string storage ref", Type: "string storage ref", Kind: "String"},
			},
		},
		{
			url.Values{"t": {"bool", "mapping(struct S => bool)"}},
			http.StatusUnprocessableEntity,
			[]TypeView{
				{Input: "bool", Type: "bool", Kind: "Bool"},
				{
					Input: "mapping(struct S => bool)",
					Error: &ErrorView{
						Production: "mapping_key",
						Remaining:  "struct S => bool)",
						Message:    `soltype: mapping_key: unexpected input at "struct S => bool)"`,
					},
				},
			},
		},
	}
	h := New()
	for _, tc := range cases {
		w := httptest.NewRecorder()
		h.Parse(w, httptest.NewRequest("GET", "/parse?"+tc.query.Encode(), nil))
		diff.Test(t, t.Errorf, w.Code, tc.status)
		var got []TypeView
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		diff.Test(t, t.Errorf, got, tc.want)
	}
}

func TestParse_Missing(t *testing.T) {
	w := httptest.NewRecorder()
	New().Parse(w, httptest.NewRequest("GET", "/parse", nil))
	diff.Test(t, t.Errorf, w.Code, http.StatusBadRequest)
}

func TestBuild(t *testing.T) {
	const decl = `{
		"id": 1, "nodeType": "VariableDeclaration", "name": "xs", "storageLocation": "calldata",
		"typeName": {"id": 2, "nodeType": "ArrayTypeName",
			"baseType": {"id": 3, "nodeType": "ElementaryTypeName", "name": "bytes32"}}
	}`
	h := New()
	w := httptest.NewRecorder()
	h.Build(w, httptest.NewRequest("POST", "/build", strings.NewReader(decl)))
	diff.Test(t, t.Errorf, w.Code, http.StatusOK)
	var got TypeView
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, got, TypeView{Type: "bytes32[] calldata", Kind: "Array"})

	w = httptest.NewRecorder()
	h.Build(w, httptest.NewRequest("GET", "/build", nil))
	diff.Test(t, t.Errorf, w.Code, http.StatusMethodNotAllowed)

	w = httptest.NewRecorder()
	h.Build(w, httptest.NewRequest("POST", "/build", strings.NewReader("{")))
	diff.Test(t, t.Errorf, w.Code, http.StatusBadRequest)
}

func TestKind(t *testing.T) {
	diff.Test(t, t.Errorf, Kind(soltype.MetaOf(soltype.Bool{})), "Magic")
	diff.Test(t, t.Errorf, Kind(soltype.Unknown{NodeType: "X"}), "Unknown")
}
