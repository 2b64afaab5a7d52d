package marshal

import (
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/view"
)

// Build infers a type for val and constructs a View over it, the
// "untyped" entry point (xnd.FromValue in the root facade).
func Build(val any) (*view.View, error) {
	t, err := InferType(val)
	if err != nil {
		return nil, err
	}
	return view.BuildValue(t, val)
}

// BuildTyped constructs a View of the given explicit type, skipping
// inference (the root facade's xnd.New entry point).
func BuildTyped(t ndt.Type, val any) (*view.View, error) {
	return view.BuildValue(t, val)
}
