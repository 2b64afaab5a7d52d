package marshal

import (
	"math/rand"
	"testing"

	"github.com/xnd-project/xnd/ndt"
)

func TestInferTypeRegularVsRagged(t *testing.T) {
	regular, err := InferType([]any{[]any{int64(1), int64(2)}, []any{int64(3), int64(4)}})
	if err != nil {
		t.Fatal(err)
	}
	if regular.Kind() != ndt.KindFixedDim || regular.Elem().Kind() != ndt.KindFixedDim {
		t.Fatalf("expected nested fixed_dim, got %s", ndt.Print(regular))
	}

	ragged, err := InferType([]any{[]any{int64(1), int64(2)}, []any{int64(3)}})
	if err != nil {
		t.Fatal(err)
	}
	if ragged.Kind() != ndt.KindVarDim {
		t.Fatalf("expected var_dim for a ragged nested list, got %s", ndt.Print(ragged))
	}
}

func TestInferTypeRecordAndOptional(t *testing.T) {
	typ, err := InferType(map[string]any{"a": int64(1), "b": nil})
	if err != nil {
		t.Fatal(err)
	}
	if typ.Kind() != ndt.KindRecord {
		t.Fatalf("expected record, got %s", typ.Kind())
	}
	f, _, ok := typ.FieldByName("b")
	if !ok || !f.Type.IsOptional() {
		t.Fatalf("expected field b to be optional float64 (from a bare None)")
	}
}

func TestBuildFromInferredType(t *testing.T) {
	v, err := Build([]any{int64(1), int64(2), int64(3)})
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

func TestRandomProducesWellTypedValues(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	typ := ndt.FixedDim(4, ndt.Record(ndt.F("x", ndt.Int64()), ndt.F("y", ndt.Float64().Opt())))
	val, err := Random(typ, rng)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := BuildTyped(typ, val); err != nil {
		t.Fatalf("random value did not build against its own type: %v", err)
	}
}
