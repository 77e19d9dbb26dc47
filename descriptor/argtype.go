// Package descriptor implements the binding descriptor generation pass:
// it matches configured types against the supplied type graphs, selects
// their members, and emits one descriptor block per type for the
// downstream macro processor.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// ---------------------------------------------------------------------------
// Type classification
// ---------------------------------------------------------------------------

// ArgKind is the closed taxonomy a raw type expression classifies into.
type ArgKind int

const (
	ArgPrimitive ArgKind = iota
	ArgSelf
	ArgRef
	ArgWrapped
	ArgGeneric
	ArgUnsupported
)

// ArgType is a classified type expression.
type ArgType struct {
	Kind    ArgKind
	Name    string   // Primitive/Wrapped/Generic/Unsupported
	Mutable bool     // Ref only
	Inner   *ArgType // Ref only
}

// Classify maps a raw type expression into the closed taxonomy.
// Classification failure is reported as an error value so callers can
// accumulate several failures for one member.
func Classify(t *graph.TypeExpr, cfg *bindings.Config) (*ArgType, error) {
	if t == nil {
		return nil, fmt.Errorf("missing type expression")
	}

	switch t.Kind {
	case graph.ExprGeneric:
		if t.IsSelf() {
			return &ArgType{Kind: ArgSelf}, nil
		}
		if cfg.IsPrimitive(t.Name) {
			return &ArgType{Kind: ArgPrimitive, Name: t.Name}, nil
		}
		return &ArgType{Kind: ArgGeneric, Name: t.Name}, nil

	case graph.ExprRef:
		inner, err := Classify(t.Inner, cfg)
		if err != nil {
			return nil, err
		}
		return &ArgType{Kind: ArgRef, Mutable: t.Mutable, Inner: inner}, nil

	case graph.ExprPrimitive, graph.ExprNamed:
		if cfg.IsPrimitive(t.Name) {
			return &ArgType{Kind: ArgPrimitive, Name: t.Name}, nil
		}
		if cfg.IsWrapped(t.Name) {
			return &ArgType{Kind: ArgWrapped, Name: t.Name}, nil
		}
		return &ArgType{Kind: ArgUnsupported, Name: t.Name}, nil

	default:
		return nil, fmt.Errorf("%s type expressions are not supported", t.Kind)
	}
}

// IsSelf reports whether the classified type denotes the declaring type,
// looking through references.
func (a *ArgType) IsSelf() bool {
	if a.Kind == ArgRef {
		return a.Inner.IsSelf()
	}
	return a.Kind == ArgSelf
}

// IsRef reports whether the outermost classification is a reference.
func (a *ArgType) IsRef() bool { return a.Kind == ArgRef }

// BaseName resolves the underlying type name, looking through
// references. Self resolves to the given declaring type name.
func (a *ArgType) BaseName(selfName string) string {
	switch a.Kind {
	case ArgRef:
		return a.Inner.BaseName(selfName)
	case ArgSelf:
		return selfName
	default:
		return a.Name
	}
}

// String renders the classified type without any wrapper, for
// diagnostics and placeholder tokens.
func (a *ArgType) String() string {
	switch a.Kind {
	case ArgSelf:
		return "self"
	case ArgRef:
		if a.Mutable {
			return "&mut " + a.Inner.String()
		}
		return "&" + a.Inner.String()
	default:
		return a.Name
	}
}

// ---------------------------------------------------------------------------
// Wrapper strategy
// ---------------------------------------------------------------------------

// WrapperKind is the wrapping strategy for one operand or return type.
type WrapperKind int

const (
	WrapNone    WrapperKind = iota // pass as-is; for fields this means the reflected fallback
	WrapRaw                        // pass the raw primitive
	WrapWrapped                    // pass through the generated proxy
)

// WrapperFor decides the wrapping strategy for a classified type, given
// the declaring type's name. The second return is false when no strategy
// exists; the caller decides whether that excludes the member (methods)
// or falls back to the reflected placeholder (fields).
func WrapperFor(a *ArgType, selfName string, cfg *bindings.Config) (WrapperKind, bool) {
	if a.IsSelf() {
		// never wrap the receiver type
		return WrapNone, true
	}
	base := a.BaseName(selfName)
	if cfg.IsPrimitive(base) {
		return WrapRaw, true
	}
	if cfg.IsWrapped(base) {
		return WrapWrapped, true
	}
	return WrapNone, false
}

// RenderArg renders a classified type under a wrapping strategy, the
// form the downstream macro consumes. References render around the
// wrapped inner type.
func RenderArg(a *ArgType, w WrapperKind) string {
	switch a.Kind {
	case ArgRef:
		var b strings.Builder
		b.WriteString("&")
		if a.Mutable {
			b.WriteString("mut ")
		}
		b.WriteString(RenderArg(a.Inner, w))
		return b.String()
	case ArgSelf:
		return "self"
	default:
		switch w {
		case WrapRaw:
			return "Raw(" + a.Name + ")"
		case WrapWrapped:
			return "Wrapped(" + a.Name + ")"
		default:
			return a.Name
		}
	}
}
