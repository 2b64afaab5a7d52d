package xndio

import (
	"testing"

	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/view"
)

func ints(vs ...int) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return out
}

func TestRoundTripRegularArray(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.FixedDim(3, ndt.Int64()))
	v, err := view.BuildValue(typ, []any{ints(1, 2, 3), ints(4, 5, 6)})
	if err != nil {
		t.Fatal(err)
	}

	b, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}

	if !got.Type().Equal(v.Type()) {
		t.Fatalf("type did not round-trip: got %s want %s", ndt.Print(got.Type()), ndt.Print(v.Type()))
	}
	eq, err := view.StrictEqual(v, got)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatalf("round-tripped value does not strictly equal the original")
	}
}

func TestRoundTripRecordWithOptionalField(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.Record(
		ndt.F("x", ndt.Int64()),
		ndt.F("y", ndt.Float64().Opt()),
	))
	v, err := view.BuildValue(typ, []any{
		map[string]any{"x": int64(1), "y": nil},
		map[string]any{"x": int64(2), "y": 3.5},
	})
	if err != nil {
		t.Fatal(err)
	}

	b, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	eq, err := view.Equal(v, got)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatalf("round-tripped record does not equal the original")
	}
}

func TestRoundTripVarDimRaggedRows(t *testing.T) {
	typ := ndt.FixedDim(3, ndt.VarDim(ndt.Int64().Opt()).Opt())
	v, err := view.BuildValue(typ, []any{ints(1, 2), nil, ints(3, 4, 5)})
	if err != nil {
		t.Fatal(err)
	}

	b, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	gv, err := got.Value()
	if err != nil {
		t.Fatal(err)
	}
	rows := gv.([]any)
	if rows[1] != nil {
		t.Fatalf("expected row 1 to round-trip as missing, got %v", rows[1])
	}
	if len(rows[2].([]any)) != 3 {
		t.Fatalf("expected row 2 to have 3 elements, got %v", rows[2])
	}
}

func TestRoundTripCategoricalStringBytesTuple(t *testing.T) {
	cat, err := ndt.Categorical("red", "green", "blue")
	if err != nil {
		t.Fatal(err)
	}
	typ := ndt.Tuple(cat, ndt.String(), ndt.Bytes())
	v, err := view.BuildValue(typ, []any{"green", "hi", []byte{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}

	b, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	eq, err := view.StrictEqual(v, got)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatalf("round-tripped tuple with categorical/string/bytes fields does not equal original")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Unmarshal([]byte("not-an-xnd-container-------"))
	if err == nil {
		t.Fatalf("expected an error for a non-container byte stream")
	}
}
