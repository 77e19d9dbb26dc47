package descriptor

import (
	"fmt"
	"strings"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// reflectedPlaceholder is the opaque handle a field falls back to when
// its type cannot be classified or wrapped. The field stays represented,
// just without structural typing.
const reflectedPlaceholder = "Raw(ReflectedValue)"

// ignoreReflectAttr excludes a field from binding generation entirely.
const ignoreReflectAttr = "#[reflect(ignore)]"

// writeFields writes the Fields block body. It applies only to plain
// record kinds; tagged unions and tuple/unit records expose no fields.
// Field selection never drops a field over a bad type: it degrades to
// the reflected placeholder instead. Names colliding with a selected
// method are renamed with a leading underscore.
func (w *WrappedItem) writeFields(out *strings.Builder, cfg *bindings.Config, used map[string]bool) int {
	if w.Item.Kind != graph.KindRecord || w.Item.Record.Style != graph.FieldsPlain {
		return 0
	}

	emitted := 0
	for _, id := range w.Item.Record.Fields {
		fieldItem, ok := w.Source.Item(id)
		if !ok || fieldItem.Kind != graph.KindField || fieldItem.Field == nil {
			continue
		}
		if hasAttr(fieldItem.Attrs, ignoreReflectAttr) {
			continue
		}

		rendered := reflectedPlaceholder
		if at, err := Classify(fieldItem.Field, cfg); err == nil {
			if wrapper, ok := WrapperFor(at, w.TypeName, cfg); ok && wrapper != WrapNone {
				rendered = RenderArg(at, wrapper)
			}
		}

		for _, line := range docLines(fieldItem.Docs) {
			out.WriteString("/// ")
			out.WriteString(line)
			out.WriteString("\n")
		}

		name := fieldItem.Name
		if used[name] {
			// a selected method owns the plain name
			fmt.Fprintf(out, "#[rename(%q)]\n", name)
			name = "_" + name
		}
		fmt.Fprintf(out, "%s: %s,\n", name, rendered)
		emitted++
	}
	return emitted
}

func hasAttr(attrs []string, want string) bool {
	for _, a := range attrs {
		if a == want {
			return true
		}
	}
	return false
}
