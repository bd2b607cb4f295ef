// index for context values
package wctx

import (
	"context"
	"sync/atomic"
)

type key int

const (
	srcNameKey key = 1
	declKey    key = 2
	runIDKey   key = 3
	versionKey key = 4
	counterKey key = 5
)

// Path of the AST file being scanned.
func WithSrcName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, srcNameKey, name)
}

func SrcName(ctx context.Context) string {
	name, _ := ctx.Value(srcNameKey).(string)
	return name
}

// Name and node id of the declaration whose type is being built.
type Decl struct {
	Name string
	ID   int64
}

func WithDecl(ctx context.Context, name string, id int64) context.Context {
	return context.WithValue(ctx, declKey, Decl{name, id})
}

func DeclOf(ctx context.Context) (Decl, bool) {
	d, ok := ctx.Value(declKey).(Decl)
	return d, ok
}

func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

func WithVersion(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, versionKey, v)
}

func Version(ctx context.Context) string {
	v, _ := ctx.Value(versionKey).(string)
	return v
}

func WithCounter(ctx context.Context, c *uint64) context.Context {
	return context.WithValue(ctx, counterKey, c)
}

func CounterAdd(ctx context.Context, n uint64) uint64 {
	cptr, ok := ctx.Value(counterKey).(*uint64)
	if !ok {
		return 0
	}
	return atomic.AddUint64(cptr, n)
}

func Counter(ctx context.Context) uint64 {
	cptr, ok := ctx.Value(counterKey).(*uint64)
	if !ok {
		return 0
	}
	return atomic.LoadUint64(cptr)
}
