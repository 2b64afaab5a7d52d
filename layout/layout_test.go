package layout

import (
	"testing"

	"github.com/xnd-project/xnd/ndt"
)

func TestPrimitivePlanSizeAndAlign(t *testing.T) {
	cases := []struct {
		typ        ndt.Type
		size, align int
	}{
		{ndt.Bool(), 1, 1},
		{ndt.Int8(), 1, 1},
		{ndt.Int16(), 2, 2},
		{ndt.Int32(), 4, 4},
		{ndt.Int64(), 8, 8},
		{ndt.Float16(), 2, 2},
		{ndt.Float32(), 4, 4},
		{ndt.Float64(), 8, 8},
		{ndt.Complex64(), 8, 8},
		{ndt.Complex128(), 16, 8},
		{ndt.Char(), 4, 4},
	}
	for _, c := range cases {
		p, err := Compute(c.typ)
		if err != nil {
			t.Fatalf("%s: %v", c.typ.Kind(), err)
		}
		if p.Size != c.size || p.Align != c.align {
			t.Fatalf("%s: got size=%d align=%d, want size=%d align=%d", c.typ.Kind(), p.Size, p.Align, c.size, c.align)
		}
	}
}

func TestRecordOffsetsAndPadding(t *testing.T) {
	// {a: int8, b: int64, c: int8} should pad b up to 8-byte alignment and
	// the overall record up to the max field alignment.
	typ := ndt.Record(
		ndt.F("a", ndt.Int8()),
		ndt.F("b", ndt.Int64()),
		ndt.F("c", ndt.Int8()),
	)
	p, err := Compute(typ)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(p.Fields))
	}
	if p.Fields[0].Offset != 0 {
		t.Fatalf("field a offset = %d, want 0", p.Fields[0].Offset)
	}
	if p.Fields[1].Offset != 8 {
		t.Fatalf("field b offset = %d, want 8 (padded up to int64 alignment)", p.Fields[1].Offset)
	}
	if p.Fields[2].Offset != 16 {
		t.Fatalf("field c offset = %d, want 16", p.Fields[2].Offset)
	}
	if p.Size != 24 {
		t.Fatalf("record size = %d, want 24 (padded to 8-byte alignment)", p.Size)
	}
	if p.Align != 8 {
		t.Fatalf("record align = %d, want 8", p.Align)
	}
}

func TestUnionSizedToLargestVariantPlusTag(t *testing.T) {
	typ := ndt.Union(ndt.F("i", ndt.Int8()), ndt.F("f", ndt.Float64()))
	p, err := Compute(typ)
	if err != nil {
		t.Fatal(err)
	}
	// tag byte padded up to the float64 variant's 8-byte alignment, then
	// the 8-byte payload, then padded to the overall alignment.
	if p.Fields[0].Offset != 8 || p.Fields[1].Offset != 8 {
		t.Fatalf("expected both variants at offset 8 (post-tag padding), got %+v", p.Fields)
	}
	if p.Size != 16 {
		t.Fatalf("union size = %d, want 16", p.Size)
	}
}

func TestFixedDimMultipliesElementSize(t *testing.T) {
	typ := ndt.FixedDim(10, ndt.Int32())
	p, err := Compute(typ)
	if err != nil {
		t.Fatal(err)
	}
	if p.Size != 40 || p.Step != 4 {
		t.Fatalf("got size=%d step=%d, want size=40 step=4", p.Size, p.Step)
	}
}

func TestFixedDimOverflowIsRejected(t *testing.T) {
	typ := ndt.FixedDim(MaxInt, ndt.Int64())
	if _, err := Compute(typ); err == nil {
		t.Fatalf("expected an overflow error for an enormous fixed dim")
	}
}

func TestVarDimIsDynamicAndHasNoStaticSize(t *testing.T) {
	typ := ndt.VarDim(ndt.Int64())
	p, err := Compute(typ)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsDynamic {
		t.Fatalf("expected a var dim to be dynamic")
	}
	if p.Step != 8 {
		t.Fatalf("expected var dim step = element size 8, got %d", p.Step)
	}
}

func TestVarDimInsideTupleIsRejected(t *testing.T) {
	typ := ndt.Tuple(ndt.VarDim(ndt.Int64()))
	if _, err := Compute(typ); err == nil {
		t.Fatalf("expected a type_error for a var dim directly inside a tuple slot")
	}
}

func TestFixedStringSizePerEncoding(t *testing.T) {
	cases := []struct {
		enc  ndt.Encoding
		want int
	}{
		{ndt.Ascii, 8},
		{ndt.UTF8, 8},
		{ndt.UTF16, 16},
		{ndt.UTF32, 32},
	}
	for _, c := range cases {
		p, err := Compute(ndt.FixedString(8, c.enc))
		if err != nil {
			t.Fatal(err)
		}
		if p.Size != c.want {
			t.Fatalf("%s: got size %d, want %d", c.enc, p.Size, c.want)
		}
	}
}

func TestSingleFieldRecordTakesFieldAlignment(t *testing.T) {
	typ := ndt.Record(ndt.F("a", ndt.Int8()))
	p, err := Compute(typ)
	if err != nil {
		t.Fatal(err)
	}
	if p.Align != 1 {
		t.Fatalf("single int8 field record should have natural alignment 1, got %d", p.Align)
	}
}

func TestCategoricalIsFourByteIndex(t *testing.T) {
	cat, err := ndt.Categorical("a", "b", "c")
	if err != nil {
		t.Fatal(err)
	}
	p, err := Compute(cat)
	if err != nil {
		t.Fatal(err)
	}
	if p.Size != 4 || p.Align != 4 {
		t.Fatalf("categorical plan = %+v, want size=4 align=4", p)
	}
}
