package descriptor

import (
	"strings"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// opMapping pairs an operator method name with its display token.
type opMapping struct {
	method string
	token  string
}

var binaryOps = []opMapping{
	{"add", "Add"},
	{"sub", "Sub"},
	{"div", "Div"},
	{"mul", "Mul"},
	{"rem", "Rem"},
}

var unaryOps = []opMapping{
	{"neg", "Neg"},
}

// outputAssocName is the associated item carrying a binary operator's
// declared result type.
const outputAssocName = "Output"

// writeBinOps writes the BinOps block body. Only implementations whose
// operand type is the target type itself (and configured as wrapped) or
// a configured primitive are considered; any classification or wrapping
// failure drops that single implementation silently.
func (w *WrappedItem) writeBinOps(out *strings.Builder, cfg *bindings.Config) int {
	emitted := 0
	for _, op := range binaryOps {
		for _, ref := range w.Members[op.method] {
			if line, ok := w.renderBinOp(op, ref, cfg); ok {
				out.WriteString(line)
				out.WriteString(",\n")
				emitted++
			}
		}
	}
	return emitted
}

func (w *WrappedItem) renderBinOp(op opMapping, ref MemberRef, cfg *bindings.Config) (string, bool) {
	operand, err := Classify(&ref.Block.For, cfg)
	if err != nil {
		return "", false
	}
	base := operand.BaseName(w.TypeName)
	selfOperand := base == w.TypeName && cfg.IsWrapped(base)
	if !selfOperand && !cfg.IsPrimitive(base) {
		// implementation on an unrelated type
		return "", false
	}

	fn := ref.Member.Function
	if ref.Member.Kind != graph.KindFunction || fn == nil {
		return "", false
	}

	parts := make([]string, 0, len(fn.Inputs))
	for _, p := range fn.Inputs {
		at, err := Classify(&p.Type, cfg)
		if err != nil {
			return "", false
		}
		wrapper, ok := WrapperFor(at, w.TypeName, cfg)
		if !ok {
			return "", false
		}
		parts = append(parts, RenderArg(at, wrapper))
	}

	outType, ok := w.operatorOutput(ref.Block)
	if !ok {
		return "", false
	}
	at, err := Classify(outType, cfg)
	if err != nil {
		return "", false
	}
	wrapper, ok := WrapperFor(at, w.TypeName, cfg)
	if !ok || wrapper == WrapNone {
		return "", false
	}

	return strings.Join(parts, " "+op.token+" ") + " -> " + RenderArg(at, wrapper), true
}

// operatorOutput locates the implementation's associated item named
// Output and returns its declared default type.
func (w *WrappedItem) operatorOutput(block *graph.Impl) (*graph.TypeExpr, bool) {
	for _, id := range block.Items {
		item, ok := w.Source.Item(id)
		if !ok {
			continue
		}
		if item.Kind == graph.KindAssocType && item.Name == outputAssocName {
			if item.Assoc == nil || item.Assoc.Default == nil {
				return nil, false
			}
			return item.Assoc.Default, true
		}
	}
	return nil, false
}

// writeUnaryOps writes the UnaryOps block body. Unary emission is
// signature-blind: any qualifying implementation emits the fixed form
// without inspecting parameters or output.
func (w *WrappedItem) writeUnaryOps(out *strings.Builder) int {
	emitted := 0
	for _, op := range unaryOps {
		for range w.Members[op.method] {
			out.WriteString(op.token)
			out.WriteString(" self -> self\n")
			emitted++
		}
	}
	return emitted
}
