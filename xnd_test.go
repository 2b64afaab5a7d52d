package xnd

import (
	"math/rand"
	"testing"

	"github.com/xnd-project/xnd/ndt"
)

func TestFromValueInfersAndBuilds(t *testing.T) {
	v, err := FromValue([]any{int64(1), int64(2), int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	n, err := v.Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected length 3, got %d", n)
	}
}

func TestNewWithExplicitTypeAndSerializeRoundTrip(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.Record(
		ndt.F("id", ndt.Int64()),
		ndt.F("note", ndt.String().Opt()),
	))
	v, err := New(typ, []any{
		map[string]any{"id": int64(1), "note": "first"},
		map[string]any{"id": int64(2), "note": nil},
	})
	if err != nil {
		t.Fatal(err)
	}

	b, err := Serialize(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(b)
	if err != nil {
		t.Fatal(err)
	}
	eq, err := Equal(v, got)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatalf("deserialized view does not equal the original")
	}
}

func TestReshapeTransposeSplit(t *testing.T) {
	typ := ndt.FixedDim(2, ndt.FixedDim(3, ndt.Int64()))
	v, err := New(typ, []any{
		[]any{int64(1), int64(2), int64(3)},
		[]any{int64(4), int64(5), int64(6)},
	})
	if err != nil {
		t.Fatal(err)
	}

	reshaped, err := Reshape(v, []int{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	if reshaped.Shape()[0] != 3 || reshaped.Shape()[1] != 2 {
		t.Fatalf("unexpected reshaped shape: %v", reshaped.Shape())
	}

	transposed, err := Transpose(v, []int{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if transposed.Shape()[0] != 3 || transposed.Shape()[1] != 2 {
		t.Fatalf("unexpected transposed shape: %v", transposed.Shape())
	}

	parts, err := Split(v, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
}

func TestContiguousCopyAfterSlice(t *testing.T) {
	typ := ndt.FixedDim(4, ndt.Int64())
	v, err := New(typ, []any{int64(1), int64(2), int64(3), int64(4)})
	if err != nil {
		t.Fatal(err)
	}
	sliced, err := v.Subscript(Slice(nil, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	cp, err := ContiguousCopy(sliced)
	if err != nil {
		t.Fatal(err)
	}
	eq, err := StrictEqual(sliced, cp)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatalf("contiguous copy does not equal the slice it was copied from")
	}
}

func TestRandomRoundTripsThroughNew(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	typ := ndt.FixedDim(3, ndt.Tuple(ndt.Int64(), ndt.Float64().Opt()))
	val, err := Random(typ, rng)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(typ, val); err != nil {
		t.Fatalf("random value did not build against its own type: %v", err)
	}
}
