package solast

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/soltype"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/typename"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/wctx"
	"github.com/LF-Decentralized-Trust-labs/verazt-sub000/wtrace"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownNode = errors.New("unknown type name node")

type Options struct {
	// Files scanned concurrently. Values < 1 mean 1.
	Workers int

	// Report declarations whose type contains an
	// unrecognized node kind as failures.
	Strict bool
}

type Failure struct {
	File       string `json:"file"`
	ID         int64  `json:"id"`
	Decl       string `json:"decl,omitempty"`
	TypeString string `json:"type_string,omitempty"`
	Err        string `json:"error"`
}

type FileReport struct {
	Path        string `json:"path"`
	Nodes       int    `json:"nodes"`
	TypeStrings int    `json:"type_strings"`
	Decls       int    `json:"decls"`
	Unknown     int    `json:"unknown"`
	Failures    int    `json:"failures"`
}

type Report struct {
	RunID    string       `json:"run_id"`
	Files    []FileReport `json:"files"`
	Failures []Failure    `json:"failures"`
}

func (r *Report) OK() bool { return len(r.Failures) == 0 }

func (r *Report) Totals() FileReport {
	var t FileReport
	for _, f := range r.Files {
		t.Nodes += f.Nodes
		t.TypeStrings += f.TypeStrings
		t.Decls += f.Decls
		t.Unknown += f.Unknown
		t.Failures += f.Failures
	}
	return t
}

// Scans each file with up to opts.Workers goroutines.
// Type strings or declarations that fail to build are
// recorded in the report. Errors opening or decoding a
// file stop the scan and are returned.
func Scan(ctx context.Context, opts Options, paths ...string) (*Report, error) {
	var (
		r     = &Report{RunID: uuid.NewString()}
		nodes uint64
		mu    sync.Mutex
	)
	ctx = wctx.WithRunID(ctx, r.RunID)
	ctx = wctx.WithCounter(ctx, &nodes)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(opts.Workers, 1))
	for _, p := range paths {
		eg.Go(func() error {
			fr, fails, err := scanFile(ctx, opts, p)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", p, err)
			}
			mu.Lock()
			r.Files = append(r.Files, fr)
			r.Failures = append(r.Failures, fails...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	slices.SortFunc(r.Files, func(a, b FileReport) int {
		return cmp.Compare(a.Path, b.Path)
	})
	slices.SortFunc(r.Failures, func(a, b Failure) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.ID, b.ID),
			cmp.Compare(a.TypeString, b.TypeString),
			cmp.Compare(a.Err, b.Err),
		)
	})
	slog.InfoContext(ctx, "scan",
		"files", len(r.Files),
		"nodes", wctx.Counter(ctx),
		"failures", len(r.Failures),
	)
	return r, nil
}

func scanFile(ctx context.Context, opts Options, path string) (FileReport, []Failure, error) {
	ctx = wctx.WithSrcName(ctx, path)
	ctx, span := wtrace.Tracer.Start(ctx, "solast.scanFile", trace.WithAttributes(
		attribute.String("file", path),
	))
	defer span.End()
	t0 := time.Now()

	w := &walker{ctx: ctx, strict: opts.Strict, fr: FileReport{Path: path}}
	err := func() error {
		rc, err := Open(path)
		if err != nil {
			return err
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("reading: %w", err)
		}
		var root any
		if err := json.Unmarshal(b, &root); err != nil {
			return fmt.Errorf("decoding: %w", err)
		}
		return w.walk(root)
	}()
	FilesScanned.WithLabelValues(result(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FileReport{}, nil, err
	}
	ScanDuration.Observe(time.Since(t0).Seconds())
	wctx.CounterAdd(ctx, uint64(w.fr.Nodes))
	w.fr.Failures = len(w.fails)
	span.SetAttributes(
		attribute.Int("nodes", w.fr.Nodes),
		attribute.Int("failures", w.fr.Failures),
	)
	slog.DebugContext(ctx, "scan-file", "nodes", w.fr.Nodes, "e", time.Since(t0))
	return w.fr, w.fails, nil
}

type walker struct {
	ctx    context.Context
	strict bool
	fr     FileReport
	fails  []Failure
}

func (w *walker) walk(v any) error {
	switch v := v.(type) {
	case []any:
		for _, e := range v {
			if err := w.walk(e); err != nil {
				return err
			}
		}
	case map[string]any:
		if err := w.node(v); err != nil {
			return err
		}
		for _, e := range v {
			if err := w.walk(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) fail(id int64, decl, ts string, err error) {
	w.fails = append(w.fails, Failure{
		File:       w.fr.Path,
		ID:         id,
		Decl:       decl,
		TypeString: ts,
		Err:        err.Error(),
	})
}

func (w *walker) node(m map[string]any) error {
	nt, ok := m["nodeType"].(string)
	if !ok {
		return nil
	}
	w.fr.Nodes++
	id := nodeID(m)
	if td, ok := m["typeDescriptions"].(map[string]any); ok {
		if s, _ := td["typeString"].(string); s != "" {
			w.fr.TypeStrings++
			_, err := soltype.Parse(s)
			TypeStrings.WithLabelValues(result(err)).Inc()
			if err != nil {
				slog.DebugContext(w.ctx, "parse-type-string", "id", id, "t", s, "error", err)
				w.fail(id, "", s, err)
			}
		}
	}
	if nt == "VariableDeclaration" {
		return w.decl(m, id)
	}
	return nil
}

func (w *walker) decl(m map[string]any, id int64) error {
	name, _ := m["name"].(string)
	ctx := wctx.WithDecl(w.ctx, name, id)
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding declaration %d: %w", id, err)
	}
	n, err := typename.Decode(b)
	if err != nil {
		return err
	}
	w.fr.Decls++
	t, err := typename.BuildVar(ctx, n)
	if err == nil {
		unk := unknowns(t)
		for _, nt := range unk {
			w.fr.Unknown++
			UnknownNodes.WithLabelValues(nt).Inc()
		}
		if w.strict && len(unk) > 0 {
			err = fmt.Errorf("%s: %w", t, ErrUnknownNode)
		}
	}
	Decls.WithLabelValues(result(err)).Inc()
	if err != nil {
		slog.DebugContext(ctx, "build-declaration", "error", err)
		w.fail(id, name, n.TypeDescriptions.TypeString, err)
	}
	wtrace.Annotate(w.ctx,
		attribute.Int("decls", w.fr.Decls),
		attribute.Int("unknown", w.fr.Unknown),
	)
	return nil
}

func nodeID(m map[string]any) int64 {
	f, _ := m["id"].(float64)
	return int64(f)
}

// Node types of the Unknown values within t.
func unknowns(t soltype.Type) []string {
	var res []string
	var visit func(soltype.Type)
	visit = func(t soltype.Type) {
		switch t := t.(type) {
		case soltype.Unknown:
			res = append(res, t.NodeType)
		case soltype.Array:
			visit(t.Elem)
		case soltype.Slice:
			visit(t.Elem)
		case soltype.Mapping:
			visit(t.Key)
			visit(t.Value)
		case soltype.Tuple:
			for _, e := range t.Elems {
				visit(e)
			}
		case soltype.Func:
			for _, e := range t.Params {
				visit(e)
			}
			for _, e := range t.Returns {
				visit(e)
			}
		case soltype.Magic:
			visit(t.Meta)
		}
	}
	visit(t)
	return res
}
