package cache

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
)

type valueLookup struct{}

func (valueLookup) Find(_ context.Context, id string) (string, error) { return id, nil }

type pointerLookup struct{}

func (*pointerLookup) Find(_ context.Context, id string) (string, error) { return id, nil }

func namedLookup(_ context.Context, id string) (string, error) { return id, nil }

func genericLookup[T any](_ context.Context, v T) (T, error) { return v, nil }

func TestFuncIdentity(t *testing.T) {
	pkg := reflect.TypeOf(valueLookup{}).PkgPath()

	tests := []struct {
		name string
		fn   any
		want string
	}{
		{name: "package function", fn: namedLookup, want: pkg + ".namedLookup"},
		{name: "stdlib function", fn: strings.ToUpper, want: "strings.ToUpper"},
		{name: "value receiver method value", fn: valueLookup{}.Find, want: pkg + ".valueLookup.Find"},
		{name: "pointer receiver method value", fn: (&pointerLookup{}).Find, want: pkg + ".pointerLookup.Find"},
		{name: "method expression", fn: (*pointerLookup).Find, want: pkg + ".pointerLookup.Find"},
		{name: "generic instantiation", fn: genericLookup[int], want: pkg + ".genericLookup"},
		{name: "closure", fn: func(context.Context, string) (string, error) { return "", nil }, want: AnonymousIdentity},
		{name: "nil function", fn: (func())(nil), want: AnonymousIdentity},
		{name: "not a function", fn: 42, want: AnonymousIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FuncIdentity(tt.fn); got != tt.want {
				t.Errorf("FuncIdentity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFuncIdentity_ClosuresShareIdentity(t *testing.T) {
	a := func() int { return 1 }
	b := func() int { return 2 }

	if FuncIdentity(a) != FuncIdentity(b) {
		t.Errorf("closures should share the anonymous identity: %q vs %q", FuncIdentity(a), FuncIdentity(b))
	}
}

func TestFuncIdentity_QualifiedByPackage(t *testing.T) {
	if a, b := FuncIdentity(strings.NewReader), FuncIdentity(bytes.NewReader); a == b {
		t.Errorf("functions from different packages share identity %q", a)
	}
}

func TestWrap_SameNameDifferentPackages(t *testing.T) {
	ctx := context.Background()
	d := NewDecorator(NewEngine(newMemStore()))

	fromStrings := WrapNamed(d, FuncIdentity(strings.ToUpper), func(_ context.Context, s string) (string, error) {
		return "strings:" + s, nil
	})
	fromBytes := WrapNamed(d, FuncIdentity(bytes.ToUpper), func(_ context.Context, s string) (string, error) {
		return "bytes:" + s, nil
	})

	if got, err := fromStrings(ctx, "x"); err != nil || got != "strings:x" {
		t.Fatalf("fromStrings() = (%q, %v), want (strings:x, nil)", got, err)
	}
	if got, err := fromBytes(ctx, "x"); err != nil || got != "bytes:x" {
		t.Errorf("fromBytes() = (%q, %v), want (bytes:x, nil)", got, err)
	}
}
