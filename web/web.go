// http handlers for soltype
package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/soltype"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/typename"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBody = 1 << 20

type ErrorView struct {
	Production string `json:"production,omitempty"`
	Remaining  string `json:"remaining,omitempty"`
	Message    string `json:"message"`
}

type TypeView struct {
	Input string     `json:"input,omitempty"`
	Type  string     `json:"type,omitempty"`
	Kind  string     `json:"kind,omitempty"`
	Error *ErrorView `json:"error,omitempty"`
}

// Kind names the variant of t, e.g. "Mapping".
func Kind(t soltype.Type) string {
	s := fmt.Sprintf("%T", t)
	return s[strings.LastIndexByte(s, '.')+1:]
}

func View(input string, t soltype.Type, err error) TypeView {
	v := TypeView{Input: input}
	if err != nil {
		v.Error = &ErrorView{Message: err.Error()}
		var perr *soltype.ParseError
		if errors.As(err, &perr) {
			v.Error.Production = perr.Production
			v.Error.Remaining = perr.Remaining
		}
		return v
	}
	v.Type, v.Kind = t.String(), Kind(t)
	return v
}

type Handler struct {
	prom http.Handler
}

func New() *Handler {
	return &Handler{prom: promhttp.Handler()}
}

func (h *Handler) Prom(w http.ResponseWriter, r *http.Request) {
	h.prom.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// GET /parse?t=uint256[2]&t=string memory
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	inputs := r.URL.Query()["t"]
	if len(inputs) == 0 {
		http.Error(w, "missing t query parameter", http.StatusBadRequest)
		return
	}
	var (
		res    []TypeView
		status = http.StatusOK
	)
	for _, s := range inputs {
		t, err := soltype.Parse(s)
		if err != nil {
			status = http.StatusUnprocessableEntity
		}
		res = append(res, View(s, t, err))
	}
	writeJSON(w, status, res)
}

// POST /build with a type name or variable declaration
// node from the compiler's JSON AST.
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n, err := typename.Decode(b)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var t soltype.Type
	if n.NodeType == "VariableDeclaration" {
		t, err = typename.BuildVar(ctx, n)
	} else {
		t, err = typename.Build(ctx, n)
	}
	if err != nil {
		slog.DebugContext(ctx, "build", "id", n.ID, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, View("", nil, err))
		return
	}
	writeJSON(w, http.StatusOK, View("", t, nil))
}
