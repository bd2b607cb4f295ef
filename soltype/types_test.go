package soltype

import (
	"testing"

	"kr.dev/diff"
)

func TestWithDataLocation(t *testing.T) {
	inner := Array{Elem: UintN(8), Loc: Memory}
	cases := []struct {
		desc string
		t    Type
		loc  DataLoc
		want Type
	}{
		{"string", String{}, Memory, String{Loc: Memory}},
		{"keeps pointer", String{Loc: Storage, Ptr: true}, Calldata, String{Loc: Calldata, Ptr: true}},
		{"clears", Bytes{Loc: Storage}, NoLoc, Bytes{}},
		{"fixed bytes", BytesN(4), Memory, BytesN(4)},
		{"top level only", Array{Elem: inner}, Storage, Array{Elem: inner, Loc: Storage}},
		{"struct", Struct{Name: "S"}, Memory, Struct{Name: "S", Loc: Memory}},
		{"mapping", Mapping{Key: Bool{}, Value: Bool{}}, Storage, Mapping{Key: Bool{}, Value: Bool{}, Loc: Storage}},
		{"int", UintN(256), Memory, UintN(256)},
		{"address", Address{}, Storage, Address{}},
		{"tuple", TupleOf(String{}), Memory, TupleOf(String{})},
		{"slice", Slice{Elem: Bytes{Loc: Calldata}}, Memory, Slice{Elem: Bytes{Loc: Calldata}}},
		{"enum", Enum{Name: "E"}, Memory, Enum{Name: "E"}},
	}
	for _, tc := range cases {
		got := WithDataLocation(tc.t, tc.loc)
		diff.Test(t, t.Errorf, got, tc.want)
	}
}

func TestWithDataLocation_Immutable(t *testing.T) {
	orig := Array{Elem: String{Loc: Memory}, Loc: Memory}
	_ = WithDataLocation(orig, Storage)
	diff.Test(t, t.Errorf, orig.Loc, Memory)
}

func TestDataLocation(t *testing.T) {
	cases := []struct {
		t       Type
		loc     DataLoc
		hasSlot bool
	}{
		{String{Loc: Memory}, Memory, true},
		{Bytes{}, NoLoc, true},
		{BytesN(32), NoLoc, false},
		{Struct{Name: "S", Loc: Storage}, Storage, true},
		{Bool{}, NoLoc, false},
		{Func{}, NoLoc, false},
		{MetaOf(Bool{}), NoLoc, false},
	}
	for _, tc := range cases {
		loc, ok := DataLocation(tc.t)
		diff.Test(t, t.Errorf, loc, tc.loc)
		diff.Test(t, t.Errorf, ok, tc.hasSlot)
	}
}

func TestParseDataLoc(t *testing.T) {
	cases := []struct {
		input string
		want  DataLoc
		ok    bool
	}{
		{"storage", Storage, true},
		{"memory", Memory, true},
		{"calldata", Calldata, true},
		{"default", NoLoc, true},
		{"", NoLoc, true},
		{"transient", NoLoc, false},
	}
	for _, tc := range cases {
		got, ok := ParseDataLoc(tc.input)
		diff.Test(t, t.Errorf, got, tc.want)
		diff.Test(t, t.Errorf, ok, tc.ok)
	}
}
