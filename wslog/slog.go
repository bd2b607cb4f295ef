// custom slog handler
//
// Adapted from: https://github.com/jba/slog
// BSD 3-Clause License
// Copyright (c) 2022, Jonathan Amsterdam
package wslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Handler writes one logfmt style line per record:
//
//	l=warn msg=unknown-type-name src=a.json node=Foo
//
// Values containing spaces, quotes or '=' are quoted
// since type strings such as "string memory" are common.
type Handler struct {
	opts   slog.HandlerOptions
	groups []string
	attrs  []byte
	mu     *sync.Mutex
	ctxsMu *sync.RWMutex
	ctxs   *[]func(context.Context) (string, any)
	w      io.Writer
}

func New(w io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{
		w:      w,
		mu:     &sync.Mutex{},
		ctxsMu: &sync.RWMutex{},
		ctxs:   &[]func(context.Context) (string, any){},
	}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Registers a func that extracts a key and value from the
// record's context. An empty key omits the pair.
// Handlers derived via WithAttrs and WithGroup share the
// registered funcs.
func (h *Handler) RegisterContext(f func(context.Context) (string, any)) {
	h.ctxsMu.Lock()
	*h.ctxs = append(*h.ctxs, f)
	h.ctxsMu.Unlock()
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	lvl := slog.LevelInfo
	if h.opts.Level != nil {
		lvl = h.opts.Level.Level()
	}
	return level >= lvl
}

func (h *Handler) clone() *Handler {
	c := *h
	c.groups = append([]string(nil), h.groups...)
	c.attrs = append([]byte(nil), h.attrs...)
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(c.groups, name)
	return c
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		c.attrs = c.appendAttr(c.attrs, c.prefix(), a)
	}
	return c
}

func (h *Handler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

var bpool = sync.Pool{New: func() any { b := make([]byte, 0, 1024); return &b }}

func freebuf(b *[]byte) {
	if cap(*b) <= 16<<10 {
		*b = (*b)[:0]
		bpool.Put(b)
	}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var (
		bufp = bpool.Get().(*[]byte)
		buf  = *bufp
	)
	defer func() {
		*bufp = buf
		freebuf(bufp)
	}()
	buf = append(buf, "l="...)
	buf = append(buf, strings.ToLower(r.Level.String())...)
	buf = append(buf, ' ')
	if r.Message != "" {
		buf = appendPair(buf, "msg", r.Message)
	}
	h.ctxsMu.RLock()
	for _, f := range *h.ctxs {
		k, v := f(ctx)
		if k == "" {
			continue
		}
		buf = appendPair(buf, k, fmt.Sprint(v))
	}
	h.ctxsMu.RUnlock()
	if h.opts.AddSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		buf = appendPair(buf, "at", f.File+":"+strconv.Itoa(f.Line))
	}
	buf = append(buf, h.attrs...)
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, prefix, a)
		return true
	})
	if n := len(buf); buf[n-1] == ' ' {
		buf = buf[:n-1]
	}
	buf = append(buf, '\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *Handler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(h.groups, a)
		a.Value = a.Value.Resolve()
	}
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() != slog.KindGroup {
		return appendPair(buf, prefix+a.Key, a.Value.String())
	}
	if a.Key != "" {
		prefix += a.Key + "."
	}
	for _, ga := range a.Value.Group() {
		buf = h.appendAttr(buf, prefix, ga)
	}
	return buf
}

func appendPair(buf []byte, k, v string) []byte {
	buf = append(buf, k...)
	buf = append(buf, '=')
	if v == "" || strings.ContainsAny(v, " =\"\t\n") {
		buf = strconv.AppendQuote(buf, v)
	} else {
		buf = append(buf, v...)
	}
	return append(buf, ' ')
}
