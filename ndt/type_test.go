package ndt

import "testing"

func TestPrintNestedVarDim(t *testing.T) {
	typ := FixedDim(3, VarDim(Int64().Opt()).Opt())
	got := Print(typ)
	want := "3 * ?var * ?int64"
	if got != want {
		t.Fatalf("Print() = %q, want %q", got, want)
	}
}

func TestPrintRecord(t *testing.T) {
	typ := Record(
		F("a", Int64().Opt()),
		F("b", Int64().Opt()),
		F("c", Int64().Opt()),
	)
	got := Print(typ)
	want := "{a: ?int64, b: ?int64, c: ?int64}"
	if got != want {
		t.Fatalf("Print() = %q, want %q", got, want)
	}
}

func TestTypeEqual(t *testing.T) {
	a := FixedDim(2, Int64())
	b := FixedDim(2, Int64())
	c := FixedDim(3, Int64())
	if !a.Equal(b) {
		t.Fatalf("expected structurally equal types to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected differing shapes to compare unequal")
	}
}

func TestCategoricalDuplicateRejected(t *testing.T) {
	if _, err := Categorical("red", "green", "red"); err == nil {
		t.Fatalf("expected an error constructing a categorical with a duplicate value")
	}
}

func TestCategoryIndex(t *testing.T) {
	typ, err := Categorical("red", "green", "blue")
	if err != nil {
		t.Fatalf("Categorical: %v", err)
	}
	idx, err := typ.CategoryIndex("green")
	if err != nil {
		t.Fatalf("CategoryIndex: %v", err)
	}
	if idx != 1 {
		t.Fatalf("CategoryIndex(green) = %d, want 1", idx)
	}
	if _, err := typ.CategoryIndex("purple"); err == nil {
		t.Fatalf("expected not_a_category error for an undeclared value")
	}
}

func TestDropDim(t *testing.T) {
	typ := FixedDim(3, VarDim(Int64()))
	dt := typ.DropDim()
	if dt.Kind() != KindInt64 {
		t.Fatalf("DropDim() kind = %s, want int64", dt.Kind())
	}
}
