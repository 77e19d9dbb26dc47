// Package graph models the type graph documents produced by the host
// introspection tool: items keyed by opaque id, with a parallel id → path
// table. Documents are read-only inputs for the generator.
package graph

import "fmt"

// Kind identifies what an Item describes.
type Kind string

const (
	KindRecord      Kind = "record"      // plain/tuple/unit record type
	KindUnion       Kind = "union"       // tagged union
	KindImpl        Kind = "impl"        // implementation block
	KindFunction    Kind = "function"    // method or free function
	KindField       Kind = "field"       // record field
	KindAssocType   Kind = "assoc_type"  // associated type inside an impl
	KindUnsupported Kind = "unsupported" // anything the producer does not model
)

// Item is one node of the type graph. Exactly one of the payload pointers
// matching Kind is set.
type Item struct {
	ID    string   `json:"id" cbor:"id"`
	Name  string   `json:"name" cbor:"name"`
	Docs  string   `json:"docs,omitempty" cbor:"docs,omitempty"`
	Kind  Kind     `json:"kind" cbor:"kind"`
	Attrs []string `json:"attrs,omitempty" cbor:"attrs,omitempty"`

	Record   *Record    `json:"record,omitempty" cbor:"record,omitempty"`
	Union    *Union     `json:"union,omitempty" cbor:"union,omitempty"`
	Impl     *Impl      `json:"impl,omitempty" cbor:"impl,omitempty"`
	Function *Function  `json:"function,omitempty" cbor:"function,omitempty"`
	Field    *TypeExpr  `json:"field,omitempty" cbor:"field,omitempty"`
	Assoc    *AssocType `json:"assoc_type,omitempty" cbor:"assoc_type,omitempty"`
}

// FieldStyle describes how a record lays out its fields.
type FieldStyle string

const (
	FieldsPlain FieldStyle = "plain"
	FieldsTuple FieldStyle = "tuple"
	FieldsUnit  FieldStyle = "unit"
)

// Record is the payload of a KindRecord item.
type Record struct {
	Style  FieldStyle `json:"style" cbor:"style"`
	Fields []string   `json:"fields,omitempty" cbor:"fields,omitempty"` // field item ids, declaration order
	Impls  []string   `json:"impls,omitempty" cbor:"impls,omitempty"`   // impl block ids, declaration order
}

// Union is the payload of a KindUnion item.
type Union struct {
	Impls []string `json:"impls,omitempty" cbor:"impls,omitempty"`
}

// Impl is the payload of a KindImpl item. Interface is empty for the
// type's own implementation block.
type Impl struct {
	Interface string   `json:"interface,omitempty" cbor:"interface,omitempty"`
	For       TypeExpr `json:"for" cbor:"for"`                         // the implementing type
	Items     []string `json:"items,omitempty" cbor:"items,omitempty"` // member item ids, declaration order
}

// Param is one declared function parameter.
type Param struct {
	Name string   `json:"name" cbor:"name"`
	Type TypeExpr `json:"type" cbor:"type"`
}

// Function is the payload of a KindFunction item.
type Function struct {
	Inputs   []Param   `json:"inputs,omitempty" cbor:"inputs,omitempty"`
	Output   *TypeExpr `json:"output,omitempty" cbor:"output,omitempty"`
	Generics []string  `json:"generics,omitempty" cbor:"generics,omitempty"` // type parameters declared on the function
}

// AssocType is the payload of a KindAssocType item.
type AssocType struct {
	Default *TypeExpr `json:"default,omitempty" cbor:"default,omitempty"`
}

// Document is one type graph document: an item index plus a path table.
type Document struct {
	Root          string              `json:"root,omitempty" cbor:"root,omitempty"`
	FormatVersion int                 `json:"format_version" cbor:"format_version"`
	Index         map[string]*Item    `json:"index" cbor:"index"`
	Paths         map[string][]string `json:"paths" cbor:"paths"`
}

// Item resolves an item id within this document.
func (d *Document) Item(id string) (*Item, bool) {
	it, ok := d.Index[id]
	return it, ok
}

// Path resolves the ordered path segments for an item id. Path
// information is assumed present for every matched type; absence is a
// fatal condition for the run, reported with the offending id.
func (d *Document) Path(id string) ([]string, error) {
	segs, ok := d.Paths[id]
	if !ok {
		return nil, fmt.Errorf("no path recorded for item %s (graph root %s)", id, d.Root)
	}
	return segs, nil
}

// Set is the logical union of all supplied documents.
type Set struct {
	Docs []*Document
}

// ExprKind discriminates TypeExpr variants.
type ExprKind string

const (
	ExprNamed     ExprKind = "named"     // resolved path to a named type
	ExprGeneric   ExprKind = "generic"   // type parameter; "Self" denotes the declaring type
	ExprPrimitive ExprKind = "primitive" // builtin scalar/str type
	ExprRef       ExprKind = "ref"       // reference, with mutability
	ExprTuple     ExprKind = "tuple"
	ExprSlice     ExprKind = "slice"
	ExprArray     ExprKind = "array"
	ExprRawPtr    ExprKind = "raw_ptr"
	ExprFnPtr     ExprKind = "fn_ptr"
	ExprQualified ExprKind = "qualified" // <T as Trait>::Name
)

// TypeExpr is a raw type expression as recorded by the producer.
type TypeExpr struct {
	Kind    ExprKind    `json:"kind" cbor:"kind"`
	Name    string      `json:"name,omitempty" cbor:"name,omitempty"`
	Mutable bool        `json:"mutable,omitempty" cbor:"mutable,omitempty"`
	Inner   *TypeExpr   `json:"inner,omitempty" cbor:"inner,omitempty"`
	Elems   []*TypeExpr `json:"elems,omitempty" cbor:"elems,omitempty"`
}

// IsSelf reports whether the expression denotes the declaring type.
func (t *TypeExpr) IsSelf() bool {
	return t.Kind == ExprGeneric && t.Name == "Self"
}
