package descriptor

import (
	"fmt"
	"strings"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// methodStats counts the outcome of method selection for one type.
type methodStats struct {
	Included int
	Excluded int
}

// writeMethods runs the per-method state machine over every candidate
// member and writes the Methods block body. Exclusion reasons accumulate
// so the diagnostic trail reports everything wrong with a member, not
// just the first failure. Selected names are recorded in used for
// field-collision renaming.
func (w *WrappedItem) writeMethods(out *strings.Builder, cfg *bindings.Config, diagnostics bool, used map[string]bool) methodStats {
	var stats methodStats

	for _, name := range w.memberNames {
		for _, ref := range w.Members[name] {
			// Methods from interfaces outside the allow-list are not
			// candidates at all, not failures.
			if ref.Block.Interface != "" && !w.Config.AcceptsInterface(ref.Block.Interface) {
				continue
			}
			fn := ref.Member.Function
			if ref.Member.Kind != graph.KindFunction || fn == nil {
				continue
			}

			var reasons []string
			var sig strings.Builder

			if len(fn.Generics) > 0 {
				reasons = append(reasons, "generic method")
			}

			for _, line := range docLines(ref.Member.Docs) {
				sig.WriteString("/// ")
				sig.WriteString(line)
				sig.WriteString("\n")
			}

			sig.WriteString(name)
			sig.WriteString("(")

			hasReceiver := false
			for i, p := range fn.Inputs {
				at, err := Classify(&p.Type, cfg)
				if err != nil {
					reasons = append(reasons, fmt.Sprintf("unsupported argument, not a simple type: %v", err))
					continue
				}

				wrapper, ok := WrapperFor(at, w.TypeName, cfg)
				if !ok {
					// still render a placeholder so the diagnostic
					// trail shows what was rejected
					fmt.Fprintf(&sig, "<invalid: %s>", at)
					reasons = append(reasons, fmt.Sprintf("unsupported argument %s, not a wrapped type or primitive", at))
					continue
				}
				sig.WriteString(RenderArg(at, wrapper))

				if p.Name == "self" {
					hasReceiver = true
					// the macro needs to recognize the receiver
					sig.WriteString(":")
				} else if i+1 != len(fn.Inputs) {
					sig.WriteString(",")
				}
			}
			sig.WriteString(")")

			if fn.Output != nil {
				at, err := Classify(fn.Output, cfg)
				if err != nil {
					reasons = append(reasons, fmt.Sprintf("unsupported return, not a simple type: %v", err))
				} else if at.IsRef() {
					// hard exclusion: never rendered, even with
					// diagnostics enabled
					stats.Excluded++
					continue
				} else {
					wrapper, ok := WrapperFor(at, w.TypeName, cfg)
					if ok {
						sig.WriteString(" -> ")
						sig.WriteString(RenderArg(at, wrapper))
					} else {
						fmt.Fprintf(&sig, "<invalid: %s>", at)
						reasons = append(reasons, fmt.Sprintf("unsupported return %s, not a wrapped type or primitive", at))
					}
				}
			}

			if len(reasons) > 0 {
				stats.Excluded++
				if diagnostics {
					out.WriteString("// Exclusion reason: ")
					out.WriteString(strings.Join(reasons, ","))
					out.WriteString("\n")
					for _, line := range strings.Split(strings.TrimRight(sig.String(), "\n"), "\n") {
						out.WriteString("// ")
						out.WriteString(line)
						out.WriteString("\n")
					}
					out.WriteString("\n")
				}
				continue
			}

			stats.Included++
			used[name] = true
			if !hasReceiver {
				w.HasGlobalMethods = true
			}
			out.WriteString(sig.String())
			out.WriteString(",\n")
		}
	}

	return stats
}

// docLines splits a doc comment into lines, dropping the trailing empty
// line an LF-terminated doc produces. An empty doc yields no lines.
func docLines(docs string) []string {
	if docs == "" {
		return nil
	}
	lines := strings.Split(docs, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
