package descriptor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/graph"
)

// Options controls one generation run.
type Options struct {
	// Diagnostics renders excluded methods as commented-out trails
	// instead of dropping them silently.
	Diagnostics bool
}

// TypeReport summarizes member selection for one emitted type.
type TypeReport struct {
	Name      string
	Methods   methodStats
	Fields    int
	BinOps    int
	UnaryOps  int
	HasGlobal bool
}

// MethodsIncluded returns the number of selected methods.
func (t TypeReport) MethodsIncluded() int { return t.Methods.Included }

// MethodsExcluded returns the number of excluded candidate methods.
func (t TypeReport) MethodsExcluded() int { return t.Methods.Excluded }

// Report summarizes a whole run, in emission order.
type Report struct {
	Types []TypeReport
}

// Result is the outcome of a successful generation run.
type Result struct {
	Output []byte
	Report *Report
}

// Generate runs the full pass: match every configured type against the
// union of graphs, collect members, select, and serialize. The emitted
// artifact is deterministic: block order follows configuration order and
// no phase depends on map iteration order.
func Generate(set *graph.Set, cfg *bindings.Config, opts Options) (*Result, error) {
	items, err := matchConfiguredTypes(set, cfg)
	if err != nil {
		return nil, err
	}

	r := newRun(cfg, opts.Diagnostics)
	report := r.emit(items)

	return &Result{
		Output: []byte(r.out.String()),
		Report: report,
	}, nil
}

// matchConfiguredTypes finds every configured type name in the graph
// union and builds its WrappedItem. Configured names that resolve to no
// item are batch-collected and reported as one aggregated fatal error.
// The returned items are re-sorted into configuration order through an
// explicit index lookup; the graphs' hash-based storage has no reliable
// iteration order.
func matchConfiguredTypes(set *graph.Set, cfg *bindings.Config) ([]*WrappedItem, error) {
	type match struct {
		doc  *graph.Document
		item *graph.Item
		dcIx int
	}

	var matches []match
	for di, doc := range set.Docs {
		for _, item := range doc.Index {
			if item.Kind != graph.KindRecord && item.Kind != graph.KindUnion {
				continue
			}
			if !cfg.IsWrapped(item.Name) {
				continue
			}
			matches = append(matches, match{doc: doc, item: item, dcIx: di})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ci, cj := cfg.TypeIndex(matches[i].item.Name), cfg.TypeIndex(matches[j].item.Name)
		if ci != cj {
			return ci < cj
		}
		if matches[i].dcIx != matches[j].dcIx {
			return matches[i].dcIx < matches[j].dcIx
		}
		return matches[i].item.ID < matches[j].item.ID
	})

	matched := make(map[string]bool, len(matches))
	items := make([]*WrappedItem, 0, len(matches))
	for _, m := range matches {
		tc, _ := cfg.Type(m.item.Name)
		w, err := Collect(m.doc, m.item, tc)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
		matched[m.item.Name] = true
	}

	var missing []string
	for i := range cfg.Types {
		if !matched[cfg.Types[i].Type] {
			missing = append(missing, cfg.Types[i].Type)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("configured types not found in the supplied type graphs: %s",
			strings.Join(missing, ", "))
	}

	return items, nil
}
