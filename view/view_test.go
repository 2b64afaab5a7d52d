package view

import (
	"math"
	"testing"

	"github.com/xnd-project/xnd/ndt"
)

func ints(vs ...int) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return out
}

func TestEmptyRegularArrayRoundTrip(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.FixedDim(3, ndt.Int64()))
	v, err := Empty(typ)
	if err != nil {
		t.Fatal(err)
	}
	want := []any{ints(1, 2, 3), ints(4, 5, 6)}
	if err := v.AssignValue(want); err != nil {
		t.Fatal(err)
	}
	got, err := v.Value()
	if err != nil {
		t.Fatal(err)
	}
	gotList := got.([]any)
	for i, row := range gotList {
		rowList := row.([]any)
		wantRow := want[i].([]any)
		for j := range rowList {
			if rowList[j].(int64) != wantRow[j].(int64) {
				t.Fatalf("row %d col %d: got %v want %v", i, j, rowList[j], wantRow[j])
			}
		}
	}
}

// Concrete scenario: a ragged var dimension of ?int64 under a fixed outer
// dimension of 3, with one missing row.
func TestVarDimRaggedWithMissingRow(t *testing.T) {
	typ := ndt.FixedDim(3, ndt.VarDim(ndt.Int64().Opt()).Opt())
	val := []any{ints(1, 2), nil, ints(3, 4, 5)}
	v, err := BuildValue(typ, val)
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Value()
	if err != nil {
		t.Fatal(err)
	}
	gl := got.([]any)
	if len(gl) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(gl))
	}
	if gl[1] != nil {
		t.Fatalf("expected row 1 to be missing, got %v", gl[1])
	}
	row0 := gl[0].([]any)
	if len(row0) != 2 || row0[0].(int64) != 1 || row0[1].(int64) != 2 {
		t.Fatalf("row 0 mismatch: %v", row0)
	}
	row2 := gl[2].([]any)
	if len(row2) != 3 {
		t.Fatalf("row 2 length mismatch: %v", row2)
	}
}

// Concrete scenario: chained (var * var) ragged dimensions, sliced at both
// levels plus a reversal of the one remaining row's own elements in a
// single combined Subscript call.
func TestVarOfVarSliceAndReverse(t *testing.T) {
	typ := ndt.FixedDim(3, ndt.VarDim(ndt.VarDim(ndt.Int64())))
	val := []any{
		[]any{ints(0, 1), ints(2, 3)},
		[]any{ints(4, 5, 6), ints(7)},
		[]any{ints(8, 9)},
	}
	v, err := BuildValue(typ, val)
	if err != nil {
		t.Fatal(err)
	}
	one := 1
	two := 2
	sub, err := v.Subscript(Slice(&one, &two, nil), Slice(nil, nil, p(2)), Slice(nil, nil, p(-1)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := sub.Value()
	if err != nil {
		t.Fatal(err)
	}
	gl := got.([]any)
	if len(gl) != 1 {
		t.Fatalf("expected 1 outer row, got %d", len(gl))
	}
	rows := gl[0].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 sublist after ::2, got %d", len(rows))
	}
	row := rows[0].([]any)
	if len(row) != 3 || row[0].(int64) != 6 || row[1].(int64) != 5 || row[2].(int64) != 4 {
		t.Fatalf("v[1:2,::2,::-1] mismatch: %v", row)
	}
}

func TestSliceStrides(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.FixedDim(3, ndt.Int64()))
	v, err := BuildValue(typ, []any{ints(1, 2, 3), ints(4, 5, 6)})
	if err != nil {
		t.Fatal(err)
	}
	col, err := v.Subscript(Slice(nil, nil, nil), Int(0))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := col.Len()
	if n != 2 {
		t.Fatalf("expected len 2, got %d", n)
	}
	if col.stride[0] != 3 {
		t.Fatalf("expected stride 3 for v[:,0], got %d", col.stride[0])
	}
	got, err := col.Value()
	if err != nil {
		t.Fatal(err)
	}
	gl := got.([]any)
	if gl[0].(int64) != 1 || gl[1].(int64) != 4 {
		t.Fatalf("v[:,0] mismatch: %v", gl)
	}
}

func TestChainedSliceStepAndReverse(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.FixedDim(4, ndt.Int64()))
	v, err := BuildValue(typ, []any{ints(0, 1, 2, 3), ints(10, 11, 12, 13)})
	if err != nil {
		t.Fatal(err)
	}
	one := 1
	two := 2
	stepped, err := v.Subscript(Slice(&one, &two, nil), Slice(nil, nil, p(2)))
	if err != nil {
		t.Fatal(err)
	}
	sub, err := stepped.Subscript(Slice(nil, nil, nil), Slice(nil, nil, p(-1)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := sub.Value()
	if err != nil {
		t.Fatal(err)
	}
	gl := got.([]any)
	row := gl[0].([]any)
	if row[0].(int64) != 12 || row[1].(int64) != 10 {
		t.Fatalf("v[1:2,::2][:,::-1] mismatch: %v", row)
	}
}

func TestTranspose(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.FixedDim(3, ndt.FixedDim(4, ndt.Int64())))
	v, err := Empty(typ)
	if err != nil {
		t.Fatal(err)
	}
	tv, err := v.Transpose([]int{1, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if tv.Shape()[0] != 3 || tv.Shape()[1] != 2 || tv.Shape()[2] != 4 {
		t.Fatalf("unexpected transposed shape %v", tv.Shape())
	}
}

func TestReshape(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.FixedDim(3, ndt.Int64()))
	v, err := BuildValue(typ, []any{ints(1, 2, 3), ints(4, 5, 6)})
	if err != nil {
		t.Fatal(err)
	}
	rv, err := v.Reshape([]int{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	got, err := rv.Value()
	if err != nil {
		t.Fatal(err)
	}
	gl := got.([]any)
	row1 := gl[1].([]any)
	if row1[0].(int64) != 3 || row1[1].(int64) != 4 {
		t.Fatalf("reshape mismatch: %v", gl)
	}
}

func TestRecordWithPerFieldOptionalBitmaps(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.Record(
		ndt.F("a", ndt.Int64().Opt()),
		ndt.F("b", ndt.Int64().Opt()),
		ndt.F("c", ndt.Int64().Opt()),
	))
	val := []any{
		map[string]any{"a": int64(1), "b": nil, "c": int64(3)},
		map[string]any{"a": nil, "b": int64(2), "c": nil},
	}
	v, err := BuildValue(typ, val)
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Value()
	if err != nil {
		t.Fatal(err)
	}
	gl := got.([]any)
	r0 := gl[0].(map[string]any)
	if r0["a"].(int64) != 1 || r0["b"] != nil || r0["c"].(int64) != 3 {
		t.Fatalf("record 0 mismatch: %v", r0)
	}
	r1 := gl[1].(map[string]any)
	if r1["a"] != nil || r1["b"].(int64) != 2 || r1["c"] != nil {
		t.Fatalf("record 1 mismatch: %v", r1)
	}
}

func TestFixedStringUTF32TrailingNullTrim(t *testing.T) {
	typ := ndt.FixedDim(1, ndt.FixedString(8, ndt.UTF32))
	v, err := BuildValue(typ, []any{"hi"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Value()
	if err != nil {
		t.Fatal(err)
	}
	if got.([]any)[0].(string) != "hi" {
		t.Fatalf("expected trailing NUL units trimmed, got %q", got.([]any)[0])
	}
}

func TestEqualityNaNAndSignedZero(t *testing.T) {
	typ := ndt.FixedDim(1, ndt.Float64())
	a, _ := BuildValue(typ, []any{math.NaN()})
	b, _ := BuildValue(typ, []any{math.NaN()})
	loose, err := Equal(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !loose {
		t.Fatal("expected NaN == NaN under loose equality")
	}
	strictEq, err := StrictEqual(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if strictEq {
		t.Fatal("expected NaN != NaN under strict equality")
	}

	zp, _ := BuildValue(typ, []any{0.0})
	zn, _ := BuildValue(typ, []any{math.Copysign(0, -1)})
	looseZero, _ := Equal(zp, zn)
	if !looseZero {
		t.Fatal("expected +0 == -0 under loose equality")
	}
	strictZero, _ := StrictEqual(zp, zn)
	if !strictZero {
		t.Fatal("expected +0 == -0 under strict IEEE equality")
	}
}

// Loose equality ignores dtype: an int64 array and a float32 array holding
// the same numbers compare equal, per §4.7.
func TestLooseEqualityIgnoresDtype(t *testing.T) {
	intTyp := ndt.FixedDim(3, ndt.Int64())
	floatTyp := ndt.FixedDim(3, ndt.Float32())
	a, err := BuildValue(intTyp, ints(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildValue(floatTyp, []any{float32(1), float32(2), float32(3)})
	if err != nil {
		t.Fatal(err)
	}
	loose, err := Equal(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !loose {
		t.Fatal("expected int64 and float32 views with equal numbers to compare loose-equal")
	}
	strictEq, err := StrictEqual(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if strictEq {
		t.Fatal("expected differing dtypes to compare strict-unequal")
	}
}
