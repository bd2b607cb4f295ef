// test checks shared by package tests
package tc

import (
	"errors"
	"testing"

	"github.com/kr/pretty"
)

func NoErr(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Errorf("expected no error. got: %s", err)
	}
}

// Fails unless errors.Is(err, target).
func WantErr(tb testing.TB, err, target error) {
	tb.Helper()
	if !errors.Is(err, target) {
		tb.Errorf("want error %q got: %v", target, err)
	}
}

// Compares with an equality func so that callers can pass
// soltype.Equal or reflect.DeepEqual.
func WantGot[T any](tb testing.TB, eq func(a, b T) bool, want, got T) {
	tb.Helper()
	if !eq(want, got) {
		tb.Error(pretty.Sprintf("want: %# v got: %# v", want, got))
	}
}
