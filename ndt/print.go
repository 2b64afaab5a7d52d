package ndt

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a datashape-style string for t, good enough for error
// messages and the concrete scenarios in the test suite (e.g.
// "3 * ?var * ?int64"). It is not a roundtrippable parser target — ndt
// intentionally ships no parser, see the package doc comment.
func Print(t Type) string {
	var sb strings.Builder
	print1(&sb, t)
	return sb.String()
}

func (t Type) String() string { return Print(t) }

func optPrefix(t Type) string {
	if t.IsOptional() {
		return "?"
	}
	return ""
}

func print1(sb *strings.Builder, t Type) {
	switch t.Kind() {
	case KindFixedDim:
		fmt.Fprintf(sb, "%s%d * ", optPrefix(t), t.Length())
		print1(sb, t.Elem())
	case KindVarDim:
		fmt.Fprintf(sb, "%svar * ", optPrefix(t))
		print1(sb, t.Elem())
	case KindTuple:
		sb.WriteString(optPrefix(t))
		sb.WriteByte('(')
		for i, f := range t.Fields() {
			if i > 0 {
				sb.WriteString(", ")
			}
			print1(sb, f.Type)
		}
		sb.WriteByte(')')
	case KindRecord:
		sb.WriteString(optPrefix(t))
		sb.WriteByte('{')
		for i, f := range t.Fields() {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: ", f.Name)
			print1(sb, f.Type)
		}
		sb.WriteByte('}')
	case KindUnion:
		sb.WriteString(optPrefix(t))
		sb.WriteByte('(')
		for i, f := range t.Fields() {
			if i > 0 {
				sb.WriteString(" | ")
			}
			if f.Name != "" {
				fmt.Fprintf(sb, "%s: ", f.Name)
			}
			print1(sb, f.Type)
		}
		sb.WriteByte(')')
	case KindRef:
		fmt.Fprintf(sb, "%sref(", optPrefix(t))
		print1(sb, t.Elem())
		sb.WriteByte(')')
	case KindConstructor:
		fmt.Fprintf(sb, "%s%s(", optPrefix(t), t.Name())
		print1(sb, t.Elem())
		sb.WriteByte(')')
	case KindTypedef:
		fmt.Fprintf(sb, "%s%s", optPrefix(t), t.Name())
	case KindFixedString:
		fmt.Fprintf(sb, "%sfixed_string[%d, '%s']", optPrefix(t), t.Length(), t.Encoding())
	case KindFixedBytes:
		fmt.Fprintf(sb, "%sfixed_bytes[size=%d, align=%d]", optPrefix(t), t.Length(), t.Align())
	case KindCategorical:
		parts := make([]string, len(t.Categories()))
		for i, c := range t.Categories() {
			parts[i] = fmt.Sprintf("%v", c)
		}
		fmt.Fprintf(sb, "%scategorical(%s)", optPrefix(t), strings.Join(parts, ", "))
	default:
		fmt.Fprintf(sb, "%s%s", optPrefix(t), t.Kind())
	}
}

// quoted is a small helper retained for future encoding-aware printing.
func quoted(s string) string { return strconv.Quote(s) }
